package viewer

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
)

// ThumbnailWidth is the pixel width of page previews in the viewer sidebar.
const ThumbnailWidth = 160

// Thumbnail renders a page and scales it down to a fixed-width preview,
// preserving the aspect ratio.
func Thumbnail(ctx context.Context, session Session, page int) (image.Image, error) {
	// Half scale is plenty of resolution for a downscaled preview
	img, err := session.RenderPage(ctx, page, 0.5)
	if err != nil {
		return nil, err
	}
	return imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos), nil
}
