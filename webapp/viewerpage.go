package webapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/zrs99/aipdf/viewer"
)

// zoomLevels the viewer offers
var zoomLevels = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}

// imageSurface holds the rendered page image as a browser object URL
type imageSurface struct {
	mu  sync.Mutex
	url string
}

func (s *imageSurface) setURL(url string) {
	s.mu.Lock()
	old := s.url
	s.url = url
	s.mu.Unlock()
	if old != "" {
		app.Window().Get("URL").Call("revokeObjectURL", old)
	}
}

// URL returns the current object URL, or "" when the page is not rendered
func (s *imageSurface) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Release revokes the object URL
func (s *imageSurface) Release() {
	s.setURL("")
}

// pane is one side of the viewer: the original or the translated document
type pane struct {
	label    string
	docID    string
	view     PaneView
	sched    *viewer.Scheduler
	surfaces map[int]*imageSurface
	loaded   bool
	err      string
}

// releaseSurfaces cancels outstanding renders and drops every rendered page
func (p *pane) releaseSurfaces() {
	if p.sched != nil {
		p.sched.CancelAll()
	}
	for _, surface := range p.surfaces {
		surface.Release()
	}
	p.surfaces = make(map[int]*imageSurface)
}

// ViewerPage shows the original and translated documents side by side. Only
// pages near the scroll position are fetched; scrolling and zooming request
// more through the render scheduler.
type ViewerPage struct {
	app.Compo
	defaults       Defaults
	zoom           float64
	scroll         float64
	viewportHeight float64
	original       *pane
	translated     *pane
}

// OnMount is called when the component is mounted
func (v *ViewerPage) OnMount(ctx app.Context) {
	v.defaults = GetDefaults()
	v.zoom = v.defaults.Zoom
	v.viewportHeight = app.Window().Get("innerHeight").Float()

	query := app.Window().URL().Query()
	v.original = &pane{label: "Original", docID: query.Get("orig"), surfaces: make(map[int]*imageSurface)}
	v.translated = &pane{label: "Translated", docID: query.Get("trans"), surfaces: make(map[int]*imageSurface)}

	for _, p := range v.panes() {
		if p.docID == "" {
			p.err = "No document selected. Start from the Translate page."
			continue
		}
		v.loadDocument(ctx, p)
	}
}

// OnDismount is called when the component is unmounted
func (v *ViewerPage) OnDismount() {
	for _, p := range v.panes() {
		p.releaseSurfaces()
		if p.docID != "" {
			// Fire and forget; the server also reaps idle sessions
			app.Window().Call("fetch", BuildAPIURL("/api/view/"+p.docID), map[string]interface{}{
				"method": "DELETE",
			})
		}
	}
}

func (v *ViewerPage) panes() []*pane {
	return []*pane{v.original, v.translated}
}

// OnResize is called when the browser window is resized. The taller or
// shorter viewport changes the visible window, so both panes recompute it
// and request any pages that just came into view.
func (v *ViewerPage) OnResize(ctx app.Context) {
	if v.original == nil {
		return
	}
	v.viewportHeight = app.Window().Get("innerHeight").Float()
	if el := app.Window().GetElementByID("original-pane-scroll"); el.Truthy() {
		v.viewportHeight = el.Get("clientHeight").Float()
		v.scroll = el.Get("scrollTop").Float()
	}
	for _, p := range v.panes() {
		v.requestVisible(p)
	}
}

// loadDocument fetches the page count and intrinsic sizes of an open document
func (v *ViewerPage) loadDocument(ctx app.Context, p *pane) {
	fetchText(ctx, BuildAPIURL("/api/view/"+p.docID), nil,
		func(ctx app.Context, status int, body string) {
			var doc OpenedDocument
			if status < 200 || status >= 300 || json.Unmarshal([]byte(body), &doc) != nil {
				p.err = "Document is not open. It may have expired."
				return
			}
			p.view = NewPaneView(doc, v.zoom)
			p.sched = viewer.NewScheduler(v.renderInto(ctx, p))
			p.loaded = true
			v.requestVisible(p)
		},
		func(ctx app.Context) {
			p.err = "Network error"
		})
}

// renderInto builds the scheduler render function for one pane: fetch the
// page image, turn it into an object URL and publish it on the UI goroutine.
func (v *ViewerPage) renderInto(ctx app.Context, p *pane) viewer.RenderFunc {
	return func(renderCtx context.Context, page int, geom viewer.PageGeometry, surface viewer.Surface) error {
		target, ok := surface.(*imageSurface)
		if !ok {
			return errors.New("surface is not an image surface")
		}

		done := make(chan renderResult, 1)

		res := app.Window().Call("fetch", p.view.PageImageURL(page))
		res.Call("then", app.FuncOf(func(this app.Value, args []app.Value) any {
			if len(args) == 0 {
				return nil
			}
			response := args[0]
			if status := response.Get("status").Int(); status < 200 || status >= 300 {
				done <- renderResult{err: fmt.Errorf("page render request failed with status %d", status)}
				return nil
			}
			response.Call("blob").Call("then", app.FuncOf(func(this app.Value, args []app.Value) any {
				if len(args) == 0 {
					return nil
				}
				url := app.Window().Get("URL").Call("createObjectURL", args[0]).String()
				done <- renderResult{url: url}
				return nil
			}))
			return nil
		})).Call("catch", app.FuncOf(func(this app.Value, args []app.Value) any {
			done <- renderResult{err: errors.New("network error while fetching page")}
			return nil
		}))

		return awaitRenderResult(renderCtx, done,
			func(url string) {
				target.setURL(url)
				ctx.Dispatch(func(ctx app.Context) {})
			},
			func(url string) {
				app.Window().Get("URL").Call("revokeObjectURL", url)
			})
	}
}

// renderResult is the outcome of one page image fetch
type renderResult struct {
	url string
	err error
}

// awaitRenderResult waits for the page fetch or for cancellation. The fetch
// callbacks cannot be stopped, so a fetch that finishes after cancellation
// still parks its object URL in the buffered channel; revoke it so cancelled
// renders do not leak blobs.
func awaitRenderResult(ctx context.Context, done <-chan renderResult, publish, revoke func(url string)) error {
	select {
	case <-ctx.Done():
		go func() {
			if r := <-done; r.url != "" {
				revoke(r.url)
			}
		}()
		return ctx.Err()
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		publish(r.url)
		return nil
	}
}

// requestVisible asks the scheduler for every unrendered page in the window
func (v *ViewerPage) requestVisible(p *pane) {
	if !p.loaded || p.sched == nil {
		return
	}
	for _, page := range p.view.Visible(v.scroll, v.viewportHeight, v.defaults.BufferFactor) {
		surface, ok := p.surfaces[page]
		if !ok {
			surface = &imageSurface{}
			p.surfaces[page] = surface
		}
		if surface.URL() != "" {
			continue
		}
		geom, ok := p.view.Layout.Geometry(page)
		if !ok {
			continue
		}
		p.sched.Request(page, surface, geom)
	}
}

// Render renders the viewer page
func (v *ViewerPage) Render() app.UI {
	return app.Div().
		Class("viewer-page").
		Body(
			app.Div().Class("viewer-toolbar").Body(
				app.H2().Text("Side-by-Side Viewer"),
				v.renderZoomSelect(),
			),
			app.Div().Class("viewer-panes").Body(
				v.renderPane(v.original, "original-pane"),
				v.renderPane(v.translated, "translated-pane"),
			),
		)
}

// renderZoomSelect renders the zoom dropdown
func (v *ViewerPage) renderZoomSelect() app.UI {
	return app.Select().
		ID("zoom-select").
		OnChange(v.onZoomChange).
		Body(
			app.Range(zoomLevels).Slice(func(i int) app.UI {
				level := zoomLevels[i]
				return app.Option().
					Value(fmt.Sprintf("%g", level)).
					Selected(level == v.zoom).
					Body(app.Text(fmt.Sprintf("%d%%", int(level*100))))
			}),
		)
}

// renderPane renders one document pane
func (v *ViewerPage) renderPane(p *pane, id string) app.UI {
	var content app.UI

	switch {
	case p.err != "":
		content = app.Div().Class("error").Body(app.Text(p.err))
	case !p.loaded:
		content = app.Div().Class("loading").Body(app.Text("Loading..."))
	default:
		content = app.Div().
			Class("pane-canvas").
			Style("position", "relative").
			Style("height", fmt.Sprintf("%.0fpx", p.view.Layout.TotalExtent)).
			Body(
				app.Range(p.view.Layout.Pages).Slice(func(i int) app.UI {
					return v.renderPage(p, p.view.Layout.Pages[i])
				}),
			)
	}

	return app.Div().
		Class("viewer-pane").
		ID(id).
		Body(
			app.H3().Class("pane-label").Text(p.label),
			app.Div().
				Class("pane-scroll").
				ID(id+"-scroll").
				OnScroll(v.onScroll(id)).
				Body(content),
		)
}

// renderPage places one page in the pane, as an image once rendered and as a
// placeholder before that.
func (v *ViewerPage) renderPage(p *pane, geom viewer.PageGeometry) app.UI {
	style := func(el app.HTMLDiv) app.HTMLDiv {
		return el.
			Style("position", "absolute").
			Style("top", fmt.Sprintf("%.0fpx", geom.Offset)).
			Style("width", fmt.Sprintf("%.0fpx", geom.Width)).
			Style("height", fmt.Sprintf("%.0fpx", geom.Height))
	}

	if surface, ok := p.surfaces[geom.Page]; ok && surface.URL() != "" {
		return style(app.Div().Class("page")).Body(
			app.Img().
				Src(surface.URL()).
				Alt(fmt.Sprintf("Page %d", geom.Page)).
				Style("width", "100%").
				Style("height", "100%"),
		)
	}

	return style(app.Div().Class("page page-placeholder")).Body(
		app.Text(fmt.Sprintf("Page %d", geom.Page)),
	)
}

// onScroll recomputes the visible window and mirrors the position to the
// other pane so the two documents stay aligned.
func (v *ViewerPage) onScroll(sourceID string) func(ctx app.Context, e app.Event) {
	return func(ctx app.Context, e app.Event) {
		v.scroll = ctx.JSSrc().Get("scrollTop").Float()
		v.viewportHeight = ctx.JSSrc().Get("clientHeight").Float()

		for _, p := range v.panes() {
			v.requestVisible(p)
		}

		// Keep the other pane in lockstep
		other := "translated-pane-scroll"
		if sourceID == "translated-pane" {
			other = "original-pane-scroll"
		}
		if el := app.Window().GetElementByID(other); el.Truthy() {
			if el.Get("scrollTop").Float() != v.scroll {
				el.Set("scrollTop", v.scroll)
			}
		}
	}
}

// onZoomChange relayouts both panes at the new zoom. In-flight renders are
// cancelled wholesale; each pane gets a fresh scheduler for the new layout.
func (v *ViewerPage) onZoomChange(ctx app.Context, e app.Event) {
	var zoom float64
	if _, err := fmt.Sscanf(ctx.JSSrc().Get("value").String(), "%g", &zoom); err != nil || zoom <= 0 {
		return
	}
	v.zoom = zoom

	for _, p := range v.panes() {
		if !p.loaded {
			continue
		}
		p.releaseSurfaces()
		p.view = p.view.WithZoom(zoom)
		p.sched = viewer.NewScheduler(v.renderInto(ctx, p))
		v.requestVisible(p)
	}
}
