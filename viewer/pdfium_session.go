//go:build !js

package viewer

import (
	"context"
	"image"
	"os"
	"sync"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// PDFiumSession implements Session using go-pdfium with WebAssembly (pure Go,
// no CGo). The document stays open for the whole session so page sizes and
// renders reuse one decode handle instead of reopening the file every time.
type PDFiumSession struct {
	mu       sync.Mutex
	pool     pdfium.Pool
	instance pdfium.Pdfium
	document references.FPDF_DOCUMENT
	pages    int
	closed   bool
}

// OpenPDFium opens a document with go-pdfium using WebAssembly
func OpenPDFium(path string) (*PDFiumSession, error) {
	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}

	// Single-threaded usage, keep the worker pool minimal
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		pool.Close()
		return nil, &LoadError{Source: path, Err: err}
	}

	doc, err := instance.OpenDocument(&requests.OpenDocument{
		File: &pdfBytes,
	})
	if err != nil {
		instance.Close()
		pool.Close()
		return nil, &LoadError{Source: path, Err: err}
	}

	pageCountResp, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
		instance.Close()
		pool.Close()
		return nil, &LoadError{Source: path, Err: err}
	}

	return &PDFiumSession{
		pool:     pool,
		instance: instance,
		document: doc.Document,
		pages:    pageCountResp.PageCount,
	}, nil
}

// PageCount returns the number of pages in the document
func (s *PDFiumSession) PageCount() int {
	return s.pages
}

// PageSize returns the intrinsic page size in points
func (s *PDFiumSession) PageSize(page int) (PageSize, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return PageSize{}, ErrSessionClosed
	}

	sizeResp, err := s.instance.GetPageSize(&requests.GetPageSize{
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: s.document,
				Index:    page - 1,
			},
		},
	})
	if err != nil {
		return PageSize{}, err
	}

	return PageSize{
		Width:  sizeResp.Width,
		Height: sizeResp.Height,
	}, nil
}

// RenderPage rasterizes one page at the given scale
func (s *PDFiumSession) RenderPage(ctx context.Context, page int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	pageRender, err := s.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: int(72*scale + 0.5),
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: s.document,
				Index:    page - 1,
			},
		},
	})
	if err != nil {
		return nil, &RenderError{Page: page, Err: err}
	}
	defer pageRender.Cleanup()

	return pageRender.Result.Image, nil
}

// Close releases the document, the PDFium instance and the worker pool;
// safe to call more than once
func (s *PDFiumSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: s.document})
	s.instance.Close()
	s.pool.Close()
	return nil
}
