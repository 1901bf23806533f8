// Package sync reconciles the local file set against the remote document.
// Upload mirrors local state to the remote (tombstoning remote-only files);
// Download destructively replaces local state when the remote is non-empty.
// There is no merge: upload wins over remote edits and download wins over
// local edits, in both cases by full overwrite.
//
// Nothing guards a concurrently invoked Upload and Download, or two
// overlapping Uploads, against each other. This is a known hazard accepted
// by design; callers wanting exclusion must serialize externally.
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/makeeyaf/xcodesync/internal/gist"
	"github.com/makeeyaf/xcodesync/internal/model"
)

// LocalStore is the subset of the local file store the engine uses.
type LocalStore interface {
	ListAll() []model.FileRecord
	WriteAll(records []model.FileRecord)
	ClearAll()
}

// Engine computes and applies the remote or local operations for one sync
// direction.
type Engine struct {
	local LocalStore
	docs  gist.DocumentStore
	tag   string
	log   *logrus.Entry
}

// New creates an Engine. tag is the fixed description prefix identifying
// the owned remote document.
func New(local LocalStore, docs gist.DocumentStore, tag string, log *logrus.Logger) *Engine {
	return &Engine{
		local: local,
		docs:  docs,
		tag:   tag,
		log:   log.WithField("component", "sync"),
	}
}

// Upload mirrors the local file set to the remote document. With no logged
// in identity it is a no-op. When no owned document exists one is created
// from the local set. Otherwise every local file is upserted unconditionally
// and every remote-only filename is tombstoned, as a single batched update.
// An empty remote snapshot aborts the upload without changes.
func (e *Engine) Upload(ctx context.Context, identity model.Identity) error {
	if !identity.LoggedIn() {
		return nil
	}

	local := e.local.ListAll()

	docID, err := e.docs.FindOwned(ctx, identity.Username)
	if errors.Is(err, gist.ErrNotFound) {
		files := make(map[string]string, len(local))
		for _, rec := range local {
			files[rec.Name] = rec.Content
		}
		id, err := e.docs.Create(ctx, files, e.tag+identity.Username)
		if err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		e.log.WithFields(logrus.Fields{"document": id, "files": len(files)}).Info("created remote document")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find owned document: %w", err)
	}

	snap, err := e.docs.Read(ctx, docID)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	if len(snap.Files) == 0 {
		// Non-actionable: nothing known about the remote shape, leave it be.
		e.log.WithField("document", docID).Warn("remote document is empty, skipping upload")
		return nil
	}

	changes := buildChanges(local, snap.Files)
	if err := e.docs.Update(ctx, docID, changes); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	e.log.WithFields(logrus.Fields{"document": docID, "changes": len(changes)}).Info("uploaded local files")
	return nil
}

// buildChanges computes the patch that mirrors the local set onto the
// remote file map: a tombstone for every remote filename absent locally
// (comparison is by filename only) and an unconditional upsert for every
// local record, even when the content is byte-identical remotely.
func buildChanges(local []model.FileRecord, remote map[string]string) map[string]gist.Change {
	changes := make(map[string]gist.Change, len(local)+len(remote))

	localNames := make(map[string]struct{}, len(local))
	for _, rec := range local {
		localNames[rec.Name] = struct{}{}
	}
	for name := range remote {
		if _, ok := localNames[name]; !ok {
			changes[name] = gist.Tombstone()
		}
	}
	for _, rec := range local {
		changes[rec.Name] = gist.Upsert(rec.Content)
	}
	return changes
}

// Download replaces the entire local state with the remote document's
// files. With no logged in identity or no owned document it is a no-op. An
// empty remote leaves local files untouched; a non-empty remote clears all
// local categories first, then writes every remote file with the document's
// update timestamp.
func (e *Engine) Download(ctx context.Context, identity model.Identity) error {
	if !identity.LoggedIn() {
		return nil
	}

	docID, err := e.docs.FindOwned(ctx, identity.Username)
	if errors.Is(err, gist.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find owned document: %w", err)
	}

	snap, err := e.docs.Read(ctx, docID)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	if len(snap.Files) == 0 {
		return nil
	}

	records := make([]model.FileRecord, 0, len(snap.Files))
	for name, content := range snap.Files {
		records = append(records, model.FileRecord{
			Name:       name,
			Content:    content,
			ModifiedAt: snap.UpdatedAt,
		})
	}

	e.local.ClearAll()
	e.local.WriteAll(records)
	e.log.WithFields(logrus.Fields{"document": docID, "files": len(records)}).Info("downloaded remote files")
	return nil
}
