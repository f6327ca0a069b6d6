package webapp

import (
	"fmt"

	"github.com/zrs99/aipdf/viewer"
)

// TranslatePhase is where the translation flow currently stands
type TranslatePhase string

const (
	PhaseIdle        TranslatePhase = "idle"
	PhaseUploading   TranslatePhase = "uploading"
	PhaseTranslating TranslatePhase = "translating"
	PhaseCompleted   TranslatePhase = "completed"
	PhaseFailed      TranslatePhase = "failed"
)

// TranslateState is an immutable snapshot of the translation flow. The UI
// renders a snapshot and every input or backend event produces the next one
// through Apply, which keeps the flow testable without a browser.
type TranslateState struct {
	Phase      TranslatePhase
	FileName   string
	TargetLang string
	TaskID     string
	HistoryID  string
	Progress   int
	Err        string
}

// NewTranslateState is the idle starting snapshot
func NewTranslateState(defaultLang string) TranslateState {
	return TranslateState{Phase: PhaseIdle, TargetLang: defaultLang}
}

// Event kinds accepted by Apply
const (
	EventFileChosen      = "fileChosen"
	EventLangChosen      = "langChosen"
	EventSubmitted       = "submitted"
	EventAccepted        = "accepted"
	EventHistoryRecorded = "historyRecorded"
	EventProgress        = "progress"
	EventCompleted       = "completed"
	EventFailed          = "failed"
	EventReset           = "reset"
)

// TranslateEvent is one input or backend occurrence
type TranslateEvent struct {
	Kind      string
	FileName  string
	Lang      string
	TaskID    string
	HistoryID string
	Progress  int
	Err       string
}

// Apply returns the snapshot after the event. Events that make no sense in
// the current phase leave the snapshot unchanged.
func (s TranslateState) Apply(e TranslateEvent) TranslateState {
	switch e.Kind {
	case EventFileChosen:
		if s.Phase == PhaseIdle || s.Phase == PhaseCompleted || s.Phase == PhaseFailed {
			s.Phase = PhaseIdle
			s.FileName = e.FileName
			s.TaskID = ""
			s.Progress = 0
			s.Err = ""
		}
	case EventLangChosen:
		if s.Phase == PhaseIdle {
			s.TargetLang = e.Lang
		}
	case EventSubmitted:
		if s.Phase == PhaseIdle && s.FileName != "" {
			s.Phase = PhaseUploading
			s.Progress = 0
			s.Err = ""
		}
	case EventAccepted:
		if s.Phase == PhaseUploading {
			s.Phase = PhaseTranslating
			s.TaskID = e.TaskID
			s.HistoryID = e.HistoryID
		}
	case EventHistoryRecorded:
		// The history entry is created after acceptance, and the feed may
		// already have finished the flow by the time the server answers
		if s.HistoryID == "" && s.Phase != PhaseIdle {
			s.HistoryID = e.HistoryID
		}
	case EventProgress:
		if s.Phase == PhaseTranslating && e.Progress >= s.Progress {
			s.Progress = e.Progress
		}
	case EventCompleted:
		if s.Phase == PhaseTranslating {
			s.Phase = PhaseCompleted
			s.Progress = 100
		}
	case EventFailed:
		if s.Phase == PhaseUploading || s.Phase == PhaseTranslating {
			s.Phase = PhaseFailed
			s.Err = e.Err
		}
	case EventReset:
		return NewTranslateState(s.TargetLang)
	}
	return s
}

// PaneView is the layout state of one document pane in the viewer. Intrinsic
// page sizes are cached in the opened document, so zoom and resize never go
// back to the server for anything but page images.
type PaneView struct {
	Doc    OpenedDocument
	Layout viewer.Layout
}

// NewPaneView lays the document out at the given zoom
func NewPaneView(doc OpenedDocument, zoom float64) PaneView {
	return PaneView{Doc: doc, Layout: viewer.ComputeLayout(zoom, doc.Sizes)}
}

// WithZoom relayouts the pane from the cached sizes
func (p PaneView) WithZoom(zoom float64) PaneView {
	return NewPaneView(p.Doc, zoom)
}

// Visible returns the pages inside the buffered viewport window
func (p PaneView) Visible(scroll, viewportHeight, bufferFactor float64) []int {
	return p.Layout.VisiblePages(scroll, viewportHeight, bufferFactor)
}

// PageImageURL is the render endpoint for one page at the pane's zoom
func (p PaneView) PageImageURL(page int) string {
	return BuildAPIURL(fmt.Sprintf("/api/view/%s/page/%d?zoom=%g", p.Doc.ID, page, p.Layout.Zoom))
}
