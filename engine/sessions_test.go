package engine

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zrs99/aipdf/viewer"
)

// fakeSession is a stand-in viewer session that renders solid rectangles
type fakeSession struct {
	pages     int
	closed    bool
	renderErr error
}

func (f *fakeSession) PageCount() int { return f.pages }

func (f *fakeSession) PageSize(page int) (viewer.PageSize, error) {
	if page < 1 || page > f.pages {
		return viewer.PageSize{}, errors.New("no such page")
	}
	return viewer.PageSize{Width: 612, Height: 792}, nil
}

func (f *fakeSession) RenderPage(ctx context.Context, page int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	return image.NewRGBA(image.Rect(0, 0, int(612*scale), int(792*scale))), nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func newTestRegistry(t *testing.T, session *fakeSession) *SessionRegistry {
	t.Helper()
	registry := NewSessionRegistry(t.TempDir(), viewer.BackendFitz)
	registry.open = func(path string) (viewer.Session, error) {
		if _, err := os.Stat(path); err != nil {
			return nil, &viewer.LoadError{Source: path, Err: err}
		}
		return session, nil
	}
	return registry
}

func stageFile(t *testing.T, registry *SessionRegistry, id string) string {
	t.Helper()
	dir, err := registry.StagingDir(id)
	if err != nil {
		t.Fatalf("StagingDir failed: %v", err)
	}
	path := filepath.Join(dir, "original.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("Failed to stage file: %v", err)
	}
	return path
}

func TestRegistryOpenCollectsPageSizes(t *testing.T) {
	session := &fakeSession{pages: 3}
	registry := newTestRegistry(t, session)

	id := registry.NewID()
	path := stageFile(t, registry, id)

	doc, err := registry.Open(id, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if doc.PageCount != 3 {
		t.Errorf("Expected 3 pages, got %d", doc.PageCount)
	}
	if len(doc.Sizes) != 3 {
		t.Fatalf("Expected 3 page sizes, got %d", len(doc.Sizes))
	}
	if doc.Sizes[0].Width != 612 || doc.Sizes[0].Height != 792 {
		t.Errorf("Unexpected page size: %+v", doc.Sizes[0])
	}

	got, ok := registry.Get(id)
	if !ok || got.ID != id {
		t.Error("Expected to find the opened document in the registry")
	}
}

func TestRegistryOpenFailureSurfacesLoadError(t *testing.T) {
	registry := newTestRegistry(t, &fakeSession{pages: 1})

	_, err := registry.Open(registry.NewID(), filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Fatal("Expected load error for missing file")
	}

	var loadErr *viewer.LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("Expected *viewer.LoadError, got %v", err)
	}
}

func TestRegistryCloseReleasesSessionAndStaging(t *testing.T) {
	session := &fakeSession{pages: 1}
	registry := newTestRegistry(t, session)

	id := registry.NewID()
	path := stageFile(t, registry, id)
	if _, err := registry.Open(id, path); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := registry.Close(id); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if !session.closed {
		t.Error("Expected the viewer session to be closed")
	}
	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Error("Expected the staging directory to be removed")
	}
	if _, ok := registry.Get(id); ok {
		t.Error("Closed document should not be in the registry")
	}

	// Closing twice reports the document as gone
	if err := registry.Close(id); err == nil {
		t.Error("Expected error closing an already closed document")
	}
}

func TestRegistryCloseIdle(t *testing.T) {
	fresh := &fakeSession{pages: 1}
	stale := &fakeSession{pages: 1}
	registry := newTestRegistry(t, fresh)

	freshID := registry.NewID()
	if _, err := registry.Open(freshID, stageFile(t, registry, freshID)); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	registry.open = func(path string) (viewer.Session, error) { return stale, nil }
	staleID := registry.NewID()
	staleDoc, err := registry.Open(staleID, stageFile(t, registry, staleID))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	staleDoc.lastAccess = time.Now().Add(-2 * time.Hour)

	closed := registry.CloseIdle(time.Hour)

	if closed != 1 {
		t.Errorf("Expected 1 idle session closed, got %d", closed)
	}
	if !stale.closed {
		t.Error("Stale session should have been closed")
	}
	if fresh.closed {
		t.Error("Fresh session should still be open")
	}
	if registry.Count() != 1 {
		t.Errorf("Expected 1 remaining document, got %d", registry.Count())
	}
}

func TestRegistryCloseAll(t *testing.T) {
	first := &fakeSession{pages: 1}
	registry := newTestRegistry(t, first)

	firstID := registry.NewID()
	if _, err := registry.Open(firstID, stageFile(t, registry, firstID)); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	second := &fakeSession{pages: 1}
	registry.open = func(path string) (viewer.Session, error) { return second, nil }
	secondID := registry.NewID()
	if _, err := registry.Open(secondID, stageFile(t, registry, secondID)); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	registry.CloseAll()

	if !first.closed || !second.closed {
		t.Error("Expected every session to be closed")
	}
	if registry.Count() != 0 {
		t.Errorf("Expected empty registry, got %d documents", registry.Count())
	}
}
