package viewer

import (
	"context"
	"errors"
	"sync"
)

// Surface is a drawable target for one page. Surfaces are created when a
// page first becomes visible, reused across re-renders of the same page, and
// released when the session is torn down.
type Surface interface {
	Release()
}

// RenderFunc draws one page into a surface at the given geometry. It returns
// context.Canceled (possibly wrapped) when the render was superseded, which
// is not treated as a failure.
type RenderFunc func(ctx context.Context, page int, geom PageGeometry, surface Surface) error

// renderTask is one in-flight render. The generation distinguishes it from a
// later task that reused the same page number, so a stale completion cannot
// remove its successor from the active set.
type renderTask struct {
	page   int
	gen    uint64
	cancel context.CancelFunc
}

// Scheduler guarantees at most one outstanding render per page. Requests for
// a page that is already rendering are no-ops; CancelAll tears everything
// down and permanently retires the scheduler.
type Scheduler struct {
	render RenderFunc

	mu     sync.Mutex
	active map[int]*renderTask
	gen    uint64
	closed bool
}

// NewScheduler creates a scheduler that draws pages with the given RenderFunc.
func NewScheduler(render RenderFunc) *Scheduler {
	return &Scheduler{
		render: render,
		active: make(map[int]*renderTask),
	}
}

// Request issues a render for page unless one is already in flight or the
// scheduler has been cancelled. It reports whether a new render was started;
// callers must not assume a fresh render happened when it returns false.
func (s *Scheduler) Request(page int, surface Surface, geom PageGeometry) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if _, ok := s.active[page]; ok {
		s.mu.Unlock()
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.gen++
	task := &renderTask{page: page, gen: s.gen, cancel: cancel}
	s.active[page] = task
	s.mu.Unlock()

	go func() {
		err := s.render(ctx, page, geom, surface)
		cancel()
		s.finish(task, err)
	}()

	return true
}

// finish removes a completed task from the active set. The generation check
// makes removal identity-based: a completion arriving after CancelAll, or
// after the page was re-requested, must not touch the newer task.
func (s *Scheduler) finish(task *renderTask, err error) {
	s.mu.Lock()
	if !s.closed {
		if current, ok := s.active[task.page]; ok && current.gen == task.gen {
			delete(s.active, task.page)
		}
	}
	s.mu.Unlock()

	switch {
	case err == nil:
		Logger.Debug("Page rendered", "page", task.page)
	case errors.Is(err, context.Canceled):
		// Superseded renders are routine when the user scrolls quickly;
		// not an error.
		Logger.Debug("Page render cancelled", "page", task.page)
	default:
		Logger.Warn("Page render failed", "page", task.page, "error", err)
	}
}

// Active reports whether a render for page is currently in flight.
func (s *Scheduler) Active(page int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[page]
	return ok
}

// ActiveCount returns the number of in-flight renders.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// CancelAll cancels every in-flight render and clears the active set. After
// it returns no completion callback can mutate the set and no further
// requests are accepted. Safe to call with no tasks active, and safe to call
// more than once.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	tasks := make([]*renderTask, 0, len(s.active))
	for _, task := range s.active {
		tasks = append(tasks, task)
	}
	s.active = make(map[int]*renderTask)
	s.mu.Unlock()

	for _, task := range tasks {
		task.cancel()
	}
}
