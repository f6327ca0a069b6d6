package viewer

// VisiblePages returns the pages whose interval [offset, offset+height)
// intersects the viewport expanded by bufferFactor viewport-heights of
// lookbehind and lookahead. A bufferFactor of 0 means the exact viewport.
// An empty layout yields an empty set.
func (l Layout) VisiblePages(scroll, viewportHeight, bufferFactor float64) []int {
	if len(l.Pages) == 0 {
		return nil
	}

	buffer := bufferFactor * viewportHeight
	windowTop := scroll - buffer
	windowBottom := scroll + viewportHeight + buffer

	var visible []int
	for _, geom := range l.Pages {
		if geom.Offset >= windowBottom {
			break // pages are ordered by offset, nothing below can intersect
		}
		if geom.Offset+geom.Height > windowTop && geom.Height > 0 {
			visible = append(visible, geom.Page)
		}
	}
	return visible
}
