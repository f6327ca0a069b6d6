package viewer

import (
	"context"
	"image"
	"log/slog"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger = slog.Default()

// Session is an opened document. It owns the underlying decode handle and
// must be closed when the viewer is torn down or the document is replaced.
// Page numbers are 1-based throughout.
type Session interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// PageSize returns the intrinsic size of a page in points.
	PageSize(page int) (PageSize, error)

	// RenderPage rasterizes a page at the given scale (1.0 = 72 DPI).
	RenderPage(ctx context.Context, page int, scale float64) (image.Image, error)

	// Close releases the document handle. Idempotent.
	Close() error
}

// Renderer backends
const (
	BackendFitz   = "fitz"
	BackendPDFium = "pdfium"
)
