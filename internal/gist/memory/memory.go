// Package memory implements gist.DocumentStore with an in-process map. It
// backs dev mode and the sync engine tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/makeeyaf/xcodesync/internal/gist"
)

type document struct {
	description string
	updatedAt   time.Time
	files       map[string]string
}

// Store is a mutex-guarded in-memory document store.
type Store struct {
	tag string

	mu   sync.RWMutex
	docs map[string]*document
}

// New returns an empty Store. tag is the fixed description prefix
// identifying this app's document, matching the live client.
func New(tag string) *Store {
	return &Store{tag: tag, docs: make(map[string]*document)}
}

// Create stores a new document and returns its generated identifier.
func (s *Store) Create(ctx context.Context, files map[string]string, description string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	doc := &document{
		description: description,
		updatedAt:   time.Now(),
		files:       make(map[string]string, len(files)),
	}
	for name, content := range files {
		doc.files[name] = content
	}
	s.docs[id] = doc
	return id, nil
}

// Read returns a copy of the document's current state.
func (s *Store) Read(ctx context.Context, id string) (*gist.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, gist.ErrNotFound
	}
	snap := &gist.Snapshot{
		ID:        id,
		UpdatedAt: doc.updatedAt,
		Files:     make(map[string]string, len(doc.files)),
	}
	for name, content := range doc.files {
		snap.Files[name] = content
	}
	return snap, nil
}

// Update applies the batched patch to the document.
func (s *Store) Update(ctx context.Context, id string, changes map[string]gist.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return gist.ErrNotFound
	}
	for name, change := range changes {
		if change.Delete {
			delete(doc.files, name)
			continue
		}
		doc.files[name] = change.Content
	}
	doc.updatedAt = time.Now()
	return nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return gist.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// FindOwned returns the first document whose description exactly matches
// the app tag plus username. Usernames are not modeled here; the
// description carries the ownership information, same as the live API
// filter.
func (s *Store) FindOwned(ctx context.Context, username string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := s.tag + username
	for id, doc := range s.docs {
		if doc.description == want {
			return id, nil
		}
	}
	return "", gist.ErrNotFound
}
