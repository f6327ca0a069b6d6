package engine

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zrs99/aipdf/client"
	"github.com/zrs99/aipdf/history"
)

// GetTranslations retrieves recent translations, newest first
func (serverHandler *ServerHandler) GetTranslations(c echo.Context) error {
	limit := 20
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	translations, err := serverHandler.History.List(c.Request().Context(), limit)
	if err != nil {
		Logger.Error("Failed to list translations", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve translations",
		})
	}

	if translations == nil {
		translations = []history.Translation{}
	}

	return c.JSON(http.StatusOK, translations)
}

// GetTranslation retrieves one translation by ID
func (serverHandler *ServerHandler) GetTranslation(c echo.Context) error {
	translation, err := serverHandler.History.Fetch(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Translation not found",
		})
	}
	return c.JSON(http.StatusOK, translation)
}

type createTranslationRequest struct {
	FileName   string `json:"fileName"`
	TargetLang string `json:"targetLang"`
	PageCount  int    `json:"pageCount"`
}

// CreateTranslation records a newly submitted translation
func (serverHandler *ServerHandler) CreateTranslation(c echo.Context) error {
	var req createTranslationRequest
	if err := c.Bind(&req); err != nil || req.FileName == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "fileName and targetLang are required",
		})
	}

	targetLang, err := client.ValidateTargetLang(req.TargetLang)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
	}

	translation, err := serverHandler.History.Create(c.Request().Context(), req.FileName, targetLang, req.PageCount)
	if err != nil {
		Logger.Error("Failed to record translation", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to record translation",
		})
	}

	return c.JSON(http.StatusOK, translation)
}

type updateTranslationRequest struct {
	TaskID   string `json:"taskId"`
	Progress *int   `json:"progress"`
	Status   string `json:"status"`
	Error    string `json:"error"`
}

// UpdateTranslation moves a recorded translation through its lifecycle as
// the frontend reports backend task ID, progress, completion or failure.
func (serverHandler *ServerHandler) UpdateTranslation(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	var req updateTranslationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid update request",
		})
	}

	if req.TaskID != "" {
		if err := serverHandler.History.SetTask(ctx, id, req.TaskID); err != nil {
			Logger.Error("Failed to set translation task", "id", id, "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error": "Failed to update translation",
			})
		}
	}

	if req.Progress != nil {
		if err := serverHandler.History.UpdateProgress(ctx, id, *req.Progress); err != nil {
			Logger.Error("Failed to update translation progress", "id", id, "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error": "Failed to update translation",
			})
		}
	}

	switch history.Status(req.Status) {
	case history.StatusCompleted:
		if err := serverHandler.History.Complete(ctx, id); err != nil {
			Logger.Error("Failed to complete translation", "id", id, "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error": "Failed to update translation",
			})
		}
	case history.StatusFailed:
		if err := serverHandler.History.Fail(ctx, id, req.Error); err != nil {
			Logger.Error("Failed to mark translation failed", "id", id, "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error": "Failed to update translation",
			})
		}
	}

	translation, err := serverHandler.History.Fetch(ctx, id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Translation not found",
		})
	}
	return c.JSON(http.StatusOK, translation)
}

// DeleteTranslation removes one translation from the history
func (serverHandler *ServerHandler) DeleteTranslation(c echo.Context) error {
	if err := serverHandler.History.Delete(c.Request().Context(), c.Param("id")); err != nil {
		Logger.Error("Failed to delete translation", "id", c.Param("id"), "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to delete translation",
		})
	}
	return c.JSON(http.StatusOK, "Translation deleted")
}
