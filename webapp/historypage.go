package webapp

import (
	"encoding/json"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// HistoryPage lists past translations
type HistoryPage struct {
	app.Compo
	translations []Translation
	loading      bool
	error        string
}

// OnMount is called when the component is mounted
func (h *HistoryPage) OnMount(ctx app.Context) {
	h.loading = true
	h.loadHistory(ctx)
}

// loadHistory fetches the translation history from the API
func (h *HistoryPage) loadHistory(ctx app.Context) {
	fetchText(ctx, BuildAPIURL("/api/history"), nil,
		func(ctx app.Context, status int, body string) {
			h.loading = false
			if status < 200 || status >= 300 {
				h.error = "Failed to load history"
				return
			}
			var translations []Translation
			if err := json.Unmarshal([]byte(body), &translations); err != nil {
				h.error = "Failed to parse history"
				return
			}
			h.translations = translations
			h.error = ""
		},
		func(ctx app.Context) {
			h.loading = false
			h.error = "Network error"
		})
}

// Render renders the history page
func (h *HistoryPage) Render() app.UI {
	var content app.UI

	if h.loading {
		content = app.Div().Class("loading").Body(app.Text("Loading..."))
	} else if h.error != "" {
		content = app.Div().Class("error").Body(app.Text("Error: " + h.error))
	} else if len(h.translations) == 0 {
		content = app.Div().Class("no-results").Body(
			app.Text("No translations yet. Upload a document on the Translate page."),
		)
	} else {
		content = app.Div().Class("history-list").Body(
			app.Range(h.translations).Slice(func(i int) app.UI {
				return h.renderEntry(&h.translations[i])
			}),
		)
	}

	return app.Div().
		Class("history-page").
		Body(
			app.H2().Text("Translation History"),
			content,
		)
}

// renderEntry renders one history card
func (h *HistoryPage) renderEntry(entry *Translation) app.UI {
	return app.Div().
		Class("history-card history-" + entry.Status).
		Body(
			app.Div().Class("history-info").Body(
				app.H3().Text(entry.FileName),
				app.P().Class("history-meta").Text(
					"Target: "+entry.TargetLang+" | Submitted: "+entry.CreatedAt,
				),
				app.Span().Class("history-status-badge history-status-"+entry.Status).
					Body(app.Text(entry.Status)),
			),
			h.renderEntryActions(entry),
		)
}

// renderEntryActions renders the per-entry buttons
func (h *HistoryPage) renderEntryActions(entry *Translation) app.UI {
	actions := []app.UI{}

	if entry.Status == "completed" && entry.TaskID != "" {
		actions = append(actions, app.A().
			Href(BuildAPIURL("/api/download/"+entry.TaskID)).
			Class("btn-secondary").
			Body(app.Text("Download")))
	}
	if entry.Error != "" {
		actions = append(actions, app.Span().Class("history-error").Body(
			app.Text(entry.Error),
		))
	}

	actions = append(actions, app.Button().
		Class("btn-danger").
		OnClick(h.onDeleteClick(entry.ULID)).
		Body(app.Text("Delete")))

	return app.Div().Class("history-actions").Body(actions...)
}

// onDeleteClick removes one history entry
func (h *HistoryPage) onDeleteClick(id string) func(ctx app.Context, e app.Event) {
	return func(ctx app.Context, e app.Event) {
		fetchText(ctx, BuildAPIURL("/api/history/"+id), map[string]interface{}{
			"method": "DELETE",
		}, func(ctx app.Context, status int, body string) {
			if status >= 200 && status < 300 {
				h.loadHistory(ctx)
			}
		}, nil)
	}
}
