package viewer

// PageSize is the intrinsic size of a page in points.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PageGeometry places one page in the vertical stack. Offsets accumulate
// scaled page heights in page order starting at zero.
type PageGeometry struct {
	Page   int     `json:"page"` // 1-based
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Offset float64 `json:"offset"`
}

// Layout is the vertical stacking of a document at one zoom level. It is a
// pure function of (zoom, sizes) and must be recomputed from scratch whenever
// either changes, since every offset below a resized page shifts.
type Layout struct {
	Zoom        float64
	Pages       []PageGeometry
	TotalExtent float64
}

// ComputeLayout stacks the given pages vertically at the given zoom.
func ComputeLayout(zoom float64, sizes []PageSize) Layout {
	layout := Layout{
		Zoom:  zoom,
		Pages: make([]PageGeometry, 0, len(sizes)),
	}

	offset := 0.0
	for i, size := range sizes {
		height := size.Height * zoom
		layout.Pages = append(layout.Pages, PageGeometry{
			Page:   i + 1,
			Width:  size.Width * zoom,
			Height: height,
			Offset: offset,
		})
		offset += height
	}
	layout.TotalExtent = offset

	return layout
}

// Geometry returns the placement of a page, or false if the page is not in
// the layout.
func (l Layout) Geometry(page int) (PageGeometry, bool) {
	if page < 1 || page > len(l.Pages) {
		return PageGeometry{}, false
	}
	return l.Pages[page-1], true
}
