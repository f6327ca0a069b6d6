package webapp

import (
	"encoding/json"
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// HomePage is the translation flow: pick a PDF, pick a target language,
// submit it and follow the backend's progress until the result is viewable.
type HomePage struct {
	app.Compo
	state     TranslateState
	languages []Language
	feed      ProgressFeed
	opening   bool
}

// OnMount is called when the component is mounted
func (h *HomePage) OnMount(ctx app.Context) {
	h.state = NewTranslateState(GetDefaults().TargetLang)
	h.loadLanguages(ctx)
}

// OnDismount is called when the component is unmounted
func (h *HomePage) OnDismount() {
	if h.feed != nil {
		h.feed.Close()
	}
}

// apply advances the translation snapshot
func (h *HomePage) apply(e TranslateEvent) {
	h.state = h.state.Apply(e)
}

// loadLanguages fetches the selectable target languages from the API
func (h *HomePage) loadLanguages(ctx app.Context) {
	fetchText(ctx, BuildAPIURL("/api/languages"), nil, func(ctx app.Context, status int, body string) {
		if status < 200 || status >= 300 {
			return
		}
		var langs []Language
		if err := json.Unmarshal([]byte(body), &langs); err == nil {
			h.languages = langs
		}
	}, nil)
}

// Render renders the home page
func (h *HomePage) Render() app.UI {
	return app.Div().
		Class("home-page").
		Body(
			app.H2().Text("Translate a PDF"),
			app.P().Text("Upload a PDF document and pick a target language. The layout of the document is preserved in the translation."),

			app.Div().Class("translate-form").Body(
				app.Input().
					Type("file").
					ID("pdf-file").
					Accept(".pdf,application/pdf").
					Disabled(h.state.Phase == PhaseUploading || h.state.Phase == PhaseTranslating).
					OnChange(h.onFileChange),
				h.renderLanguageSelect(),
				app.Button().
					Class("btn-primary").
					Disabled(h.state.FileName == "" || h.state.Phase != PhaseIdle).
					OnClick(h.onTranslateClick).
					Body(app.Text("Translate")),
			),

			h.renderStatus(),
		)
}

// renderLanguageSelect renders the target language dropdown
func (h *HomePage) renderLanguageSelect() app.UI {
	return app.Select().
		ID("target-lang").
		Disabled(h.state.Phase == PhaseUploading || h.state.Phase == PhaseTranslating).
		OnChange(h.onLangChange).
		Body(
			app.Range(h.languages).Slice(func(i int) app.UI {
				lang := h.languages[i]
				return app.Option().
					Value(lang.Code).
					Selected(lang.Code == h.state.TargetLang).
					Body(app.Text(lang.Name))
			}),
		)
}

// renderStatus renders the part of the page that depends on the flow phase
func (h *HomePage) renderStatus() app.UI {
	switch h.state.Phase {
	case PhaseUploading:
		return app.Div().Class("loading").Body(
			app.Text("Uploading " + h.state.FileName + "..."),
		)

	case PhaseTranslating:
		return app.Div().Class("translate-progress").Body(
			app.P().Text(fmt.Sprintf("Translating %s: %d%%", h.state.FileName, h.state.Progress)),
			app.Div().Class("progress-bar").Body(
				app.Div().
					Class("progress-bar-fill").
					Style("width", fmt.Sprintf("%d%%", h.state.Progress)),
			),
		)

	case PhaseCompleted:
		viewText := "Open side-by-side viewer"
		if h.opening {
			viewText = "Opening..."
		}
		return app.Div().Class("success").Body(
			app.P().Text("Translation of "+h.state.FileName+" finished."),
			app.Button().
				Class("btn-primary").
				Disabled(h.opening).
				OnClick(h.onViewClick).
				Body(app.Text(viewText)),
			app.A().
				Href(BuildAPIURL("/api/download/"+h.state.TaskID)).
				Class("btn-secondary").
				Body(app.Text("Download translated PDF")),
		)

	case PhaseFailed:
		return app.Div().Class("error").Body(
			app.P().Text("Translation failed: "+h.state.Err),
			app.Button().
				Class("btn-secondary").
				OnClick(h.onResetClick).
				Body(app.Text("Start over")),
		)
	}

	return app.Div()
}

// onFileChange records the chosen file name
func (h *HomePage) onFileChange(ctx app.Context, e app.Event) {
	files := ctx.JSSrc().Get("files")
	if !files.Truthy() || files.Get("length").Int() == 0 {
		return
	}
	h.apply(TranslateEvent{Kind: EventFileChosen, FileName: files.Index(0).Get("name").String()})
}

// onLangChange records the chosen target language
func (h *HomePage) onLangChange(ctx app.Context, e app.Event) {
	h.apply(TranslateEvent{Kind: EventLangChosen, Lang: ctx.JSSrc().Get("value").String()})
}

// onResetClick returns the form to its idle state
func (h *HomePage) onResetClick(ctx app.Context, e app.Event) {
	if h.feed != nil {
		h.feed.Close()
		h.feed = nil
	}
	h.apply(TranslateEvent{Kind: EventReset})
}

// onTranslateClick uploads the document to the translation backend
func (h *HomePage) onTranslateClick(ctx app.Context, e app.Event) {
	files := app.Window().GetElementByID("pdf-file").Get("files")
	if !files.Truthy() || files.Get("length").Int() == 0 {
		return
	}
	h.apply(TranslateEvent{Kind: EventSubmitted})

	form := app.Window().Get("FormData").New()
	form.Call("append", "file", files.Index(0))
	form.Call("append", "target_lang", h.state.TargetLang)

	fetchForm(ctx, BuildAPIURL("/api/translate"), form,
		func(ctx app.Context, status int, body string) {
			if status < 200 || status >= 300 {
				h.apply(TranslateEvent{Kind: EventFailed, Err: "backend rejected the upload: " + body})
				return
			}
			var resp struct {
				TaskID string `json:"taskId"`
				Error  string `json:"error"`
			}
			if err := json.Unmarshal([]byte(body), &resp); err != nil || resp.TaskID == "" {
				h.apply(TranslateEvent{Kind: EventFailed, Err: "backend did not return a task ID"})
				return
			}
			h.apply(TranslateEvent{Kind: EventAccepted, TaskID: resp.TaskID})
			h.recordHistory(ctx, resp.TaskID)
			h.watchProgress(ctx, resp.TaskID)
		},
		func(ctx app.Context) {
			h.apply(TranslateEvent{Kind: EventFailed, Err: "network error: could not reach the server"})
		})
}

// recordHistory stores the submitted translation in the history
func (h *HomePage) recordHistory(ctx app.Context, taskID string) {
	create, err := json.Marshal(map[string]interface{}{
		"fileName":   h.state.FileName,
		"targetLang": h.state.TargetLang,
	})
	if err != nil {
		return
	}

	fetchJSONBody(ctx, "POST", BuildAPIURL("/api/history"), string(create),
		func(ctx app.Context, status int, body string) {
			if status < 200 || status >= 300 {
				return
			}
			var entry Translation
			if err := json.Unmarshal([]byte(body), &entry); err != nil {
				return
			}
			h.apply(TranslateEvent{Kind: EventHistoryRecorded, HistoryID: entry.ULID})
			h.patchHistory(ctx, fmt.Sprintf(`{"taskId": %q, "status": "running"}`, taskID))
		}, nil)
}

// patchHistory updates the stored history entry, if one was created
func (h *HomePage) patchHistory(ctx app.Context, body string) {
	if h.state.HistoryID == "" {
		return
	}
	fetchJSONBody(ctx, "PATCH", BuildAPIURL("/api/history/"+h.state.HistoryID), body,
		func(ctx app.Context, status int, body string) {}, nil)
}

// watchProgress follows the websocket progress feed until it closes
func (h *HomePage) watchProgress(ctx app.Context, taskID string) {
	feed := newProgressFeed(taskID)
	h.feed = feed

	ctx.Async(func() {
		last := 0
		for progress := range feed.Events() {
			p := progress
			last = p
			ctx.Dispatch(func(ctx app.Context) {
				h.apply(TranslateEvent{Kind: EventProgress, Progress: p})
				h.patchHistory(ctx, fmt.Sprintf(`{"progress": %d}`, p))
			})
		}

		ctx.Dispatch(func(ctx app.Context) {
			if last >= 100 {
				h.apply(TranslateEvent{Kind: EventCompleted})
				h.patchHistory(ctx, `{"status": "completed"}`)
			} else if h.state.Phase == PhaseTranslating {
				h.apply(TranslateEvent{Kind: EventFailed, Err: "progress channel closed before completion"})
				h.patchHistory(ctx, `{"status": "failed", "error": "progress channel closed before completion"}`)
			}
		})
	})
}

// onViewClick stages both documents for viewing and opens the viewer
func (h *HomePage) onViewClick(ctx app.Context, e app.Event) {
	files := app.Window().GetElementByID("pdf-file").Get("files")
	if !files.Truthy() || files.Get("length").Int() == 0 {
		return
	}
	h.opening = true

	// Stage the original first, then the translated result by task ID
	originalForm := app.Window().Get("FormData").New()
	originalForm.Call("append", "file", files.Index(0))

	fetchForm(ctx, BuildAPIURL("/api/view/open"), originalForm,
		func(ctx app.Context, status int, body string) {
			var original OpenedDocument
			if status < 200 || status >= 300 || json.Unmarshal([]byte(body), &original) != nil {
				h.opening = false
				h.apply(TranslateEvent{Kind: EventFailed, Err: "could not open the original document"})
				return
			}

			translatedForm := app.Window().Get("FormData").New()
			translatedForm.Call("append", "taskId", h.state.TaskID)

			fetchForm(ctx, BuildAPIURL("/api/view/open"), translatedForm,
				func(ctx app.Context, status int, body string) {
					var translated OpenedDocument
					if status < 200 || status >= 300 || json.Unmarshal([]byte(body), &translated) != nil {
						h.opening = false
						h.apply(TranslateEvent{Kind: EventFailed, Err: "could not open the translated document"})
						return
					}
					ctx.Navigate("/viewer?orig=" + original.ID + "&trans=" + translated.ID)
				},
				func(ctx app.Context) {
					h.opening = false
					h.apply(TranslateEvent{Kind: EventFailed, Err: "network error: could not reach the server"})
				})
		},
		func(ctx app.Context) {
			h.opening = false
			h.apply(TranslateEvent{Kind: EventFailed, Err: "network error: could not reach the server"})
		})
}
