// Package localstore reads and writes the local Xcode customization files
// inside the configured categories. Filenames that match no category are
// ignored everywhere, never reported as errors.
package localstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/makeeyaf/xcodesync/internal/config"
	"github.com/makeeyaf/xcodesync/internal/model"
)

// Store enumerates, writes, and deletes files in a fixed set of categories.
type Store struct {
	categories []config.CategorySpec
	log        *logrus.Entry
}

// New creates a Store over the given categories.
func New(categories []config.CategorySpec, log *logrus.Logger) *Store {
	return &Store{
		categories: categories,
		log:        log.WithField("component", "localstore"),
	}
}

// categoryFor resolves the bare filename against the configured categories.
// The second return is false when the name matches none of them.
func (s *Store) categoryFor(name string) (config.CategorySpec, bool) {
	for _, c := range s.categories {
		if c.Matches(name) {
			return c, true
		}
	}
	return config.CategorySpec{}, false
}

// ListAll returns every matching file across all categories. Unreadable
// directories or files are logged and skipped. If a file's modification
// time is unavailable the current time is used instead.
func (s *Store) ListAll() []model.FileRecord {
	var records []model.FileRecord
	for _, cat := range s.categories {
		entries, err := os.ReadDir(cat.Dir)
		if err != nil {
			s.log.WithError(err).WithField("dir", cat.Dir).Debug("skipping unreadable category directory")
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !cat.Matches(entry.Name()) {
				continue
			}
			rec, err := s.readFile(cat.Dir, entry.Name())
			if err != nil {
				s.log.WithError(err).WithField("file", entry.Name()).Warn("skipping unreadable file")
				continue
			}
			records = append(records, rec)
		}
	}
	return records
}

func (s *Store) readFile(dir, name string) (model.FileRecord, error) {
	path := filepath.Join(dir, name)
	content, err := os.ReadFile(path)
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("read %s: %w", path, err)
	}
	modifiedAt := time.Now()
	if info, err := os.Stat(path); err == nil {
		modifiedAt = info.ModTime()
	}
	return model.FileRecord{Name: name, Content: string(content), ModifiedAt: modifiedAt}, nil
}

// WriteAll writes each record into its category's directory, overwriting
// existing files atomically. Records matching no category are skipped.
func (s *Store) WriteAll(records []model.FileRecord) {
	for _, rec := range records {
		cat, ok := s.categoryFor(rec.Name)
		if !ok {
			s.log.WithField("file", rec.Name).Debug("skipping file outside configured categories")
			continue
		}
		if err := s.writeAtomic(cat.Dir, rec); err != nil {
			s.log.WithError(err).WithField("file", rec.Name).Warn("write failed")
		}
	}
}

// writeAtomic writes to a temp file in the target directory and renames it
// over the destination, so a failed write never leaves a truncated file.
func (s *Store) writeAtomic(dir string, rec model.FileRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+rec.Name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(rec.Content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	dst := filepath.Join(dir, rec.Name)
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", dst, err)
	}
	if !rec.ModifiedAt.IsZero() {
		// Best effort: mirror the record's timestamp onto the file.
		os.Chtimes(dst, rec.ModifiedAt, rec.ModifiedAt)
	}
	return nil
}

// ClearAll deletes every currently listed local file. Individual delete
// failures are logged and do not abort the remaining deletions.
func (s *Store) ClearAll() {
	for _, rec := range s.ListAll() {
		cat, ok := s.categoryFor(rec.Name)
		if !ok {
			continue
		}
		path := filepath.Join(cat.Dir, rec.Name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.WithError(err).WithField("file", path).Warn("delete failed")
		}
	}
}
