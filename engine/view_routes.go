package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ledongthuc/pdf"

	"github.com/zrs99/aipdf/viewer"
)

const (
	minZoom = 0.1
	maxZoom = 4.0
)

// OpenDocument stages a PDF and opens a viewer session for it. The document
// comes either from a direct upload (multipart field "file") or from the
// translation backend (form field "taskId" naming a finished translation).
func (serverHandler *ServerHandler) OpenDocument(c echo.Context) error {
	id := serverHandler.Sessions.NewID()
	dir, err := serverHandler.Sessions.StagingDir(id)
	if err != nil {
		Logger.Error("Failed to create staging directory", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to stage document",
		})
	}

	var path string
	if taskID := c.FormValue("taskId"); taskID != "" {
		path = filepath.Join(dir, "translated.pdf")
		if err := serverHandler.Backend.Download(c.Request().Context(), taskID, path); err != nil {
			Logger.Error("Failed to download translated document", "taskID", taskID, "error", err)
			os.RemoveAll(dir)
			return c.JSON(http.StatusBadGateway, map[string]interface{}{
				"error": "Failed to fetch translated document from backend",
			})
		}
	} else {
		path = filepath.Join(dir, "original.pdf")
		if err := saveUpload(c, path); err != nil {
			os.RemoveAll(dir)
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Cheap parse check before handing the file to the renderer
	pageCount, err := preflightPDF(path)
	if err != nil {
		Logger.Warn("Rejected document that is not a parseable PDF", "error", err)
		os.RemoveAll(dir)
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Not a valid PDF document",
		})
	}
	Logger.Debug("Preflight passed", "id", id, "pages", pageCount)

	doc, err := serverHandler.Sessions.Open(id, path)
	if err != nil {
		Logger.Error("Failed to open viewer document", "error", err)
		os.RemoveAll(dir)
		var loadErr *viewer.LoadError
		if errors.As(err, &loadErr) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"error": "Unable to load document",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to open document",
		})
	}

	return c.JSON(http.StatusOK, doc)
}

// DocumentInfo returns the page count and intrinsic page sizes of an open
// document, so the frontend can lay it out without re-uploading.
func (serverHandler *ServerHandler) DocumentInfo(c echo.Context) error {
	doc, ok := serverHandler.Sessions.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Document not open",
		})
	}
	return c.JSON(http.StatusOK, doc)
}

// PageImage renders one page of an open document as PNG
func (serverHandler *ServerHandler) PageImage(c echo.Context) error {
	doc, page, resp := serverHandler.lookupPage(c)
	if doc == nil {
		return resp
	}

	zoom := 1.0
	if zoomStr := c.QueryParam("zoom"); zoomStr != "" {
		parsed, err := strconv.ParseFloat(zoomStr, 64)
		if err != nil || parsed < minZoom || parsed > maxZoom {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": fmt.Sprintf("zoom must be a number between %v and %v", minZoom, maxZoom),
			})
		}
		zoom = parsed
	}

	img, err := doc.Session().RenderPage(c.Request().Context(), page, zoom)
	if err != nil {
		// The browser aborting the fetch is routine while scrolling fast
		if errors.Is(err, context.Canceled) {
			return nil
		}
		Logger.Error("Failed to render page", "id", doc.ID, "page", page, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to render page",
		})
	}

	return writePNG(c, img)
}

// PageThumbnail renders a small fixed-width preview of one page
func (serverHandler *ServerHandler) PageThumbnail(c echo.Context) error {
	doc, page, resp := serverHandler.lookupPage(c)
	if doc == nil {
		return resp
	}

	img, err := viewer.Thumbnail(c.Request().Context(), doc.Session(), page)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		Logger.Error("Failed to render thumbnail", "id", doc.ID, "page", page, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to render thumbnail",
		})
	}

	return writePNG(c, img)
}

// CloseDocument tears down a viewer session and its staged file
func (serverHandler *ServerHandler) CloseDocument(c echo.Context) error {
	id := c.Param("id")
	if err := serverHandler.Sessions.Close(id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Document not open",
		})
	}
	return c.JSON(http.StatusOK, "Document closed")
}

// lookupPage resolves the :id/:page route parameters. On failure it writes
// the error response and returns a nil document.
func (serverHandler *ServerHandler) lookupPage(c echo.Context) (*Document, int, error) {
	doc, ok := serverHandler.Sessions.Get(c.Param("id"))
	if !ok {
		return nil, 0, c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Document not open",
		})
	}

	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 || page > doc.PageCount {
		return nil, 0, c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid page number",
		})
	}

	return doc, page, nil
}

// saveUpload copies the uploaded multipart file into the staging area
func saveUpload(c echo.Context, path string) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fmt.Errorf("no document uploaded")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("unable to read uploaded document")
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to stage uploaded document")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("unable to stage uploaded document")
	}
	return nil
}

// preflightPDF verifies the staged file parses as a PDF and returns its page
// count without touching the renderer.
func preflightPDF(path string) (int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return reader.NumPage(), nil
}

func writePNG(c echo.Context, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		Logger.Error("Failed to encode page image", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to encode page image",
		})
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
