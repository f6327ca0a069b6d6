//go:build !js

package viewer

import (
	"context"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// FitzSession implements Session using go-fitz (requires CGo and MuPDF)
type FitzSession struct {
	mu     sync.Mutex
	doc    *fitz.Document
	pages  int
	closed bool
}

// OpenFitz opens a document with go-fitz
func OpenFitz(path string) (*FitzSession, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}

	return &FitzSession{
		doc:   doc,
		pages: doc.NumPage(),
	}, nil
}

// PageCount returns the number of pages in the document
func (s *FitzSession) PageCount() int {
	return s.pages
}

// PageSize returns the intrinsic page size in points. go-fitz bounds are
// reported at 72 DPI so the rectangle maps directly to points.
func (s *FitzSession) PageSize(page int) (PageSize, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return PageSize{}, ErrSessionClosed
	}

	bound, err := s.doc.Bound(page - 1)
	if err != nil {
		return PageSize{}, err
	}

	return PageSize{
		Width:  float64(bound.Dx()),
		Height: float64(bound.Dy()),
	}, nil
}

// RenderPage rasterizes one page at the given scale
func (s *FitzSession) RenderPage(ctx context.Context, page int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	img, err := s.doc.ImageDPI(page-1, 72*scale)
	if err != nil {
		return nil, &RenderError{Page: page, Err: err}
	}
	return img, nil
}

// Close releases the MuPDF document handle; safe to call more than once
func (s *FitzSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.doc.Close()
}
