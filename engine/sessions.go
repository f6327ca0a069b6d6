package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/zrs99/aipdf/viewer"
)

// Document is one staged PDF with an open viewer session. Intrinsic page
// sizes are read once at open time and reused for every relayout, so a
// resize never reloads the document.
type Document struct {
	ID        string            `json:"id"`
	PageCount int               `json:"pageCount"`
	Sizes     []viewer.PageSize `json:"sizes"`

	path       string
	session    viewer.Session
	lastAccess time.Time
}

// openFunc opens a viewer session for a staged file; swappable in tests
type openFunc func(path string) (viewer.Session, error)

// SessionRegistry owns every open viewer session, keyed by document ID
type SessionRegistry struct {
	stagingPath string
	open        openFunc

	mu   sync.Mutex
	docs map[string]*Document
}

// NewSessionRegistry creates a registry staging documents under stagingPath
// and rendering them with the given backend.
func NewSessionRegistry(stagingPath, rendererBackend string) *SessionRegistry {
	return &SessionRegistry{
		stagingPath: stagingPath,
		open: func(path string) (viewer.Session, error) {
			return viewer.Open(path, rendererBackend)
		},
		docs: make(map[string]*Document),
	}
}

// StagingDir returns the directory where a new document should be staged,
// creating it first. Each document gets its own folder so cleanup can remove
// everything at once.
func (r *SessionRegistry) StagingDir(id string) (string, error) {
	dir := filepath.Join(r.stagingPath, id)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return dir, nil
}

// NewID allocates a document ID
func (r *SessionRegistry) NewID() string {
	return ulid.Make().String()
}

// Open opens a staged file as a viewer document
func (r *SessionRegistry) Open(id, path string) (*Document, error) {
	session, err := r.open(path)
	if err != nil {
		return nil, err
	}

	pageCount := session.PageCount()
	sizes := make([]viewer.PageSize, 0, pageCount)
	for page := 1; page <= pageCount; page++ {
		size, err := session.PageSize(page)
		if err != nil {
			session.Close()
			return nil, fmt.Errorf("failed to read size of page %d: %w", page, err)
		}
		sizes = append(sizes, size)
	}

	doc := &Document{
		ID:         id,
		PageCount:  pageCount,
		Sizes:      sizes,
		path:       path,
		session:    session,
		lastAccess: time.Now(),
	}

	r.mu.Lock()
	r.docs[id] = doc
	r.mu.Unlock()

	Logger.Info("Opened viewer document", "id", id, "pages", pageCount)
	return doc, nil
}

// Get returns an open document and refreshes its idle timer
func (r *SessionRegistry) Get(id string) (*Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if ok {
		doc.lastAccess = time.Now()
	}
	return doc, ok
}

// Session returns the viewer session of an open document
func (d *Document) Session() viewer.Session {
	return d.session
}

// Close tears one document down: the decode handle goes away and the staged
// file is removed.
func (r *SessionRegistry) Close(id string) error {
	r.mu.Lock()
	doc, ok := r.docs[id]
	delete(r.docs, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("no open document %s", id)
	}
	return r.closeDoc(doc)
}

// CloseIdle closes every document that has not been touched within ttl and
// returns how many were closed.
func (r *SessionRegistry) CloseIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	var idle []*Document
	for id, doc := range r.docs {
		if doc.lastAccess.Before(cutoff) {
			idle = append(idle, doc)
			delete(r.docs, id)
		}
	}
	r.mu.Unlock()

	for _, doc := range idle {
		if err := r.closeDoc(doc); err != nil {
			Logger.Error("Failed to close idle document", "id", doc.ID, "error", err)
		}
	}
	return len(idle)
}

// CloseAll closes every open document; used at shutdown
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	docs := make([]*Document, 0, len(r.docs))
	for _, doc := range r.docs {
		docs = append(docs, doc)
	}
	r.docs = make(map[string]*Document)
	r.mu.Unlock()

	for _, doc := range docs {
		if err := r.closeDoc(doc); err != nil {
			Logger.Error("Failed to close document", "id", doc.ID, "error", err)
		}
	}
}

// Count returns the number of open documents
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

func (r *SessionRegistry) closeDoc(doc *Document) error {
	err := doc.session.Close()

	// Remove the document's staging folder along with the session
	dir := filepath.Dir(doc.path)
	if dir != "" && dir != "." && dir != r.stagingPath {
		if removeErr := os.RemoveAll(dir); removeErr != nil {
			Logger.Error("Failed to remove staging directory", "dir", dir, "error", removeErr)
		}
	}

	Logger.Debug("Closed viewer document", "id", doc.ID)
	return err
}
