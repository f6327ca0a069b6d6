package viewer

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testSurface struct{}

func (s *testSurface) Release() {}

// blockingRender returns a RenderFunc that reports each started page on
// started and waits for an outcome on release (or cancellation).
func blockingRender(started chan int, release chan error) RenderFunc {
	return func(ctx context.Context, page int, geom PageGeometry, surface Surface) error {
		started <- page
		select {
		case err := <-release:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestRequestIsIdempotentPerPage(t *testing.T) {
	started := make(chan int, 4)
	release := make(chan error)
	scheduler := NewScheduler(blockingRender(started, release))
	geom := PageGeometry{Page: 1, Width: 612, Height: 792, Offset: 0}

	if !scheduler.Request(1, &testSurface{}, geom) {
		t.Fatal("First request should start a render")
	}
	<-started

	if scheduler.Request(1, &testSurface{}, geom) {
		t.Error("Second request for a rendering page should be a no-op")
	}
	if count := scheduler.ActiveCount(); count != 1 {
		t.Errorf("Expected exactly 1 active task, got %d", count)
	}

	release <- nil
	waitFor(t, "task removal", func() bool { return scheduler.ActiveCount() == 0 })

	// The page can be rendered again once the first task resolved
	if !scheduler.Request(1, &testSurface{}, geom) {
		t.Error("Request after completion should start a fresh render")
	}
	<-started
	release <- nil
	waitFor(t, "second task removal", func() bool { return scheduler.ActiveCount() == 0 })
}

func TestFailedRenderIsRemovedAndIsolated(t *testing.T) {
	started := make(chan int, 4)
	release := make(chan error)
	scheduler := NewScheduler(blockingRender(started, release))

	scheduler.Request(1, &testSurface{}, PageGeometry{Page: 1, Height: 792})
	scheduler.Request(2, &testSurface{}, PageGeometry{Page: 2, Height: 792, Offset: 792})
	<-started
	<-started

	// Fail one page; the other must stay in flight
	release <- &RenderError{Page: 1, Err: errors.New("decode error")}
	waitFor(t, "failed task removal", func() bool { return scheduler.ActiveCount() == 1 })

	if scheduler.Active(1) {
		t.Error("Failed task should have been removed from the active set")
	}
	if !scheduler.Active(2) {
		t.Error("Unrelated page should still be rendering")
	}

	release <- nil
	waitFor(t, "remaining task removal", func() bool { return scheduler.ActiveCount() == 0 })
}

func TestCancelAllEmptiesAndRetires(t *testing.T) {
	started := make(chan int, 4)
	release := make(chan error)
	scheduler := NewScheduler(blockingRender(started, release))

	scheduler.Request(1, &testSurface{}, PageGeometry{Page: 1, Height: 792})
	scheduler.Request(2, &testSurface{}, PageGeometry{Page: 2, Height: 792, Offset: 792})
	<-started
	<-started

	scheduler.CancelAll()

	if count := scheduler.ActiveCount(); count != 0 {
		t.Errorf("Expected empty active set after CancelAll, got %d tasks", count)
	}
	if scheduler.Request(3, &testSurface{}, PageGeometry{Page: 3, Height: 792}) {
		t.Error("Request after CancelAll should be rejected")
	}

	// Give the cancelled renders time to observe ctx.Done and finish; their
	// completions must not resurrect anything.
	time.Sleep(50 * time.Millisecond)
	if count := scheduler.ActiveCount(); count != 0 {
		t.Errorf("Stale completion mutated the active set: %d tasks", count)
	}

	// Calling again with nothing active must be safe
	scheduler.CancelAll()
}

func TestCancelAllOnIdleScheduler(t *testing.T) {
	scheduler := NewScheduler(func(ctx context.Context, page int, geom PageGeometry, surface Surface) error {
		return nil
	})

	scheduler.CancelAll()

	if count := scheduler.ActiveCount(); count != 0 {
		t.Errorf("Expected empty active set, got %d", count)
	}
}

func TestFinishChecksTaskIdentity(t *testing.T) {
	started := make(chan int, 1)
	release := make(chan error)
	scheduler := NewScheduler(blockingRender(started, release))

	scheduler.Request(1, &testSurface{}, PageGeometry{Page: 1, Height: 792})
	<-started

	// A completion carrying a different generation for the same page number
	// must not remove the live task.
	scheduler.finish(&renderTask{page: 1, gen: ^uint64(0)}, nil)

	if !scheduler.Active(1) {
		t.Error("Stale completion with mismatched generation removed the live task")
	}

	release <- nil
	waitFor(t, "task removal", func() bool { return scheduler.ActiveCount() == 0 })
}

func TestRenderCompletionAfterScrollOut(t *testing.T) {
	// A render may complete after its page left the buffered window; the
	// completion is simply dropped from the active set, never re-requested.
	started := make(chan int, 1)
	release := make(chan error)
	scheduler := NewScheduler(blockingRender(started, release))

	layout := ComputeLayout(1.0, uniformSizes(5, 612, 1000))
	geom, _ := layout.Geometry(1)
	scheduler.Request(1, &testSurface{}, geom)
	<-started

	// The user scrolled far away; page 1 is no longer visible
	visible := layout.VisiblePages(4500, 800, 0)
	for _, page := range visible {
		if page == 1 {
			t.Fatal("Page 1 should have scrolled out of the window")
		}
	}

	release <- nil
	waitFor(t, "out-of-window completion", func() bool { return scheduler.ActiveCount() == 0 })
}
