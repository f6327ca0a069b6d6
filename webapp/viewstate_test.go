package webapp

import (
	"testing"

	"github.com/zrs99/aipdf/viewer"
)

func TestTranslateFlowHappyPath(t *testing.T) {
	state := NewTranslateState("zh")
	if state.Phase != PhaseIdle {
		t.Fatalf("Expected idle start, got %s", state.Phase)
	}

	state = state.Apply(TranslateEvent{Kind: EventFileChosen, FileName: "paper.pdf"})
	state = state.Apply(TranslateEvent{Kind: EventLangChosen, Lang: "ja"})
	state = state.Apply(TranslateEvent{Kind: EventSubmitted})
	if state.Phase != PhaseUploading {
		t.Fatalf("Expected uploading after submit, got %s", state.Phase)
	}

	state = state.Apply(TranslateEvent{Kind: EventAccepted, TaskID: "task-1"})
	if state.Phase != PhaseTranslating || state.TaskID != "task-1" {
		t.Fatalf("Expected translating with task-1, got %s %q", state.Phase, state.TaskID)
	}

	state = state.Apply(TranslateEvent{Kind: EventProgress, Progress: 40})
	state = state.Apply(TranslateEvent{Kind: EventProgress, Progress: 80})
	if state.Progress != 80 {
		t.Errorf("Expected progress 80, got %d", state.Progress)
	}

	state = state.Apply(TranslateEvent{Kind: EventCompleted})
	if state.Phase != PhaseCompleted || state.Progress != 100 {
		t.Errorf("Expected completed at 100, got %s %d", state.Phase, state.Progress)
	}
	if state.TargetLang != "ja" {
		t.Errorf("Expected target language ja, got %q", state.TargetLang)
	}
}

func TestTranslateProgressNeverRegresses(t *testing.T) {
	state := NewTranslateState("zh")
	state = state.Apply(TranslateEvent{Kind: EventFileChosen, FileName: "paper.pdf"})
	state = state.Apply(TranslateEvent{Kind: EventSubmitted})
	state = state.Apply(TranslateEvent{Kind: EventAccepted, TaskID: "task-1"})

	state = state.Apply(TranslateEvent{Kind: EventProgress, Progress: 60})
	state = state.Apply(TranslateEvent{Kind: EventProgress, Progress: 30})
	if state.Progress != 60 {
		t.Errorf("Expected progress to stay at 60, got %d", state.Progress)
	}
}

func TestTranslateEventsOutOfPhaseAreIgnored(t *testing.T) {
	state := NewTranslateState("zh")

	// Cannot submit without a file
	next := state.Apply(TranslateEvent{Kind: EventSubmitted})
	if next.Phase != PhaseIdle {
		t.Errorf("Expected submit without a file to be ignored, got %s", next.Phase)
	}

	// Progress before acceptance is meaningless
	next = state.Apply(TranslateEvent{Kind: EventProgress, Progress: 50})
	if next.Progress != 0 {
		t.Errorf("Expected idle progress to stay 0, got %d", next.Progress)
	}

	// Completion out of nowhere is ignored
	next = state.Apply(TranslateEvent{Kind: EventCompleted})
	if next.Phase != PhaseIdle {
		t.Errorf("Expected completion in idle to be ignored, got %s", next.Phase)
	}
}

func TestTranslateFailureAndReset(t *testing.T) {
	state := NewTranslateState("zh")
	state = state.Apply(TranslateEvent{Kind: EventFileChosen, FileName: "paper.pdf"})
	state = state.Apply(TranslateEvent{Kind: EventLangChosen, Lang: "fr"})
	state = state.Apply(TranslateEvent{Kind: EventSubmitted})
	state = state.Apply(TranslateEvent{Kind: EventFailed, Err: "backend unavailable"})

	if state.Phase != PhaseFailed || state.Err != "backend unavailable" {
		t.Fatalf("Expected failed state, got %s %q", state.Phase, state.Err)
	}

	state = state.Apply(TranslateEvent{Kind: EventReset})
	if state.Phase != PhaseIdle || state.FileName != "" || state.Err != "" {
		t.Errorf("Expected clean idle state after reset, got %+v", state)
	}
	if state.TargetLang != "fr" {
		t.Errorf("Expected reset to keep the chosen language, got %q", state.TargetLang)
	}
}

func TestTranslateNewFileClearsPreviousResult(t *testing.T) {
	state := NewTranslateState("zh")
	state = state.Apply(TranslateEvent{Kind: EventFileChosen, FileName: "first.pdf"})
	state = state.Apply(TranslateEvent{Kind: EventSubmitted})
	state = state.Apply(TranslateEvent{Kind: EventAccepted, TaskID: "task-1"})
	state = state.Apply(TranslateEvent{Kind: EventCompleted})

	state = state.Apply(TranslateEvent{Kind: EventFileChosen, FileName: "second.pdf"})
	if state.Phase != PhaseIdle || state.TaskID != "" || state.Progress != 0 {
		t.Errorf("Expected a fresh idle state for the new file, got %+v", state)
	}
	if state.FileName != "second.pdf" {
		t.Errorf("Expected the new file name, got %q", state.FileName)
	}
}

func TestHistoryRecordedAfterAcceptance(t *testing.T) {
	state := NewTranslateState("zh")
	state = state.Apply(TranslateEvent{Kind: EventFileChosen, FileName: "paper.pdf"})
	state = state.Apply(TranslateEvent{Kind: EventSubmitted})
	state = state.Apply(TranslateEvent{Kind: EventAccepted, TaskID: "task-1"})

	state = state.Apply(TranslateEvent{Kind: EventHistoryRecorded, HistoryID: "hist-1"})
	if state.HistoryID != "hist-1" {
		t.Fatalf("Expected history ID hist-1, got %q", state.HistoryID)
	}

	// A second create response must not replace the tracked entry
	state = state.Apply(TranslateEvent{Kind: EventHistoryRecorded, HistoryID: "hist-2"})
	if state.HistoryID != "hist-1" {
		t.Errorf("Expected history ID to stay hist-1, got %q", state.HistoryID)
	}

	// The feed can outrun the create response; the ID still lands
	fast := NewTranslateState("zh")
	fast = fast.Apply(TranslateEvent{Kind: EventFileChosen, FileName: "paper.pdf"})
	fast = fast.Apply(TranslateEvent{Kind: EventSubmitted})
	fast = fast.Apply(TranslateEvent{Kind: EventAccepted, TaskID: "task-2"})
	fast = fast.Apply(TranslateEvent{Kind: EventCompleted})
	fast = fast.Apply(TranslateEvent{Kind: EventHistoryRecorded, HistoryID: "hist-3"})
	if fast.HistoryID != "hist-3" {
		t.Errorf("Expected history ID after completion, got %q", fast.HistoryID)
	}

	// Idle has no submitted translation to track
	idle := NewTranslateState("zh").Apply(TranslateEvent{Kind: EventHistoryRecorded, HistoryID: "hist-4"})
	if idle.HistoryID != "" {
		t.Errorf("Expected idle state to ignore the event, got %q", idle.HistoryID)
	}
}

func TestVisibleSetGrowsWithViewport(t *testing.T) {
	sizes := make([]viewer.PageSize, 5)
	for i := range sizes {
		sizes[i] = viewer.PageSize{Width: 612, Height: 792}
	}
	view := NewPaneView(OpenedDocument{ID: "doc1", PageCount: 5, Sizes: sizes}, 1.0)

	small := view.Visible(0, 400, 0)
	if len(small) != 1 {
		t.Fatalf("Expected one page in a 400px viewport, got %v", small)
	}

	// Same scroll position, taller viewport after a window resize
	large := view.Visible(0, 1600, 0)
	if len(large) != 3 {
		t.Fatalf("Expected three pages in a 1600px viewport, got %v", large)
	}
	for i, page := range small {
		if large[i] != page {
			t.Errorf("Expected the grown window to contain the small one, got %v vs %v", large, small)
		}
	}
}

func TestPaneViewZoomKeepsIntrinsicSizes(t *testing.T) {
	doc := OpenedDocument{
		ID:        "doc1",
		PageCount: 2,
		Sizes: []viewer.PageSize{
			{Width: 612, Height: 792},
			{Width: 612, Height: 792},
		},
	}

	view := NewPaneView(doc, 1.0)
	if view.Layout.TotalExtent != 1584 {
		t.Fatalf("Expected extent 1584 at zoom 1, got %g", view.Layout.TotalExtent)
	}

	zoomed := view.WithZoom(2.0)
	if zoomed.Layout.TotalExtent != 3168 {
		t.Errorf("Expected extent 3168 at zoom 2, got %g", zoomed.Layout.TotalExtent)
	}
	if len(zoomed.Doc.Sizes) != 2 {
		t.Errorf("Expected cached sizes to survive the relayout")
	}

	// The original snapshot is untouched
	if view.Layout.TotalExtent != 1584 {
		t.Errorf("Expected the zoom to produce a new snapshot, original changed to %g", view.Layout.TotalExtent)
	}
}

func TestPaneViewPageImageURL(t *testing.T) {
	doc := OpenedDocument{ID: "doc1", PageCount: 1, Sizes: []viewer.PageSize{{Width: 612, Height: 792}}}
	view := NewPaneView(doc, 1.5)

	got := view.PageImageURL(3)
	want := "/api/view/doc1/page/3?zoom=1.5"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
