// Package gist defines the remote multi-file document store the sync engine
// reconciles against. A document holds named text files under one
// description and one update timestamp.
package gist

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no document matches a lookup.
var ErrNotFound = errors.New("document not found")

// Snapshot is the full state of one remote document.
type Snapshot struct {
	ID        string
	UpdatedAt time.Time
	Files     map[string]string
}

// Change is one entry of a batched patch. Delete acts as a tombstone: the
// filename is removed from the document and Content is ignored.
type Change struct {
	Content string
	Delete  bool
}

// Tombstone returns a Change that deletes its filename.
func Tombstone() Change {
	return Change{Delete: true}
}

// Upsert returns a Change that creates or overwrites its filename.
func Upsert(content string) Change {
	return Change{Content: content}
}

// DocumentStore is the interface to one provider's document-store API.
// Implementations exist for the GitHub Gist API and for an in-memory store
// used in dev mode and tests.
type DocumentStore interface {
	// Create creates a new document with exactly these files and returns
	// its identifier.
	Create(ctx context.Context, files map[string]string, description string) (string, error)

	// Read fetches the full file map and update timestamp of a document.
	Read(ctx context.Context, id string) (*Snapshot, error)

	// Update applies one batched patch in a single request. The remote
	// service does not guarantee atomicity across entries; on error the
	// caller must treat the whole batch as failed.
	Update(ctx context.Context, id string, changes map[string]Change) error

	// Delete removes the entire document.
	Delete(ctx context.Context, id string) error

	// FindOwned returns the identifier of the document owned by username
	// whose description exactly equals the app's tag plus the username.
	// It returns ErrNotFound when no such document exists.
	FindOwned(ctx context.Context, username string) (string, error)
}
