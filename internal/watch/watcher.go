// Package watch triggers uploads automatically: on filesystem changes
// inside the configured category directories, and on a fixed interval as a
// catch-all, the way the original menu-bar app periodically synced.
package watch

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// debounceDelay coalesces bursts of filesystem events (Xcode rewrites
// theme files in several steps) into one upload. Tests shorten it.
var debounceDelay = 2 * time.Second

// UploadFunc performs one upload pass.
type UploadFunc func(ctx context.Context) error

// Watcher runs the auto-upload loop.
type Watcher struct {
	paths    []string
	interval time.Duration
	upload   UploadFunc
	log      *logrus.Entry
}

// New creates a Watcher over the given directories. interval is the
// periodic upload interval; upload is invoked serially, never concurrently
// with itself.
func New(paths []string, interval time.Duration, upload UploadFunc, log *logrus.Logger) *Watcher {
	return &Watcher{
		paths:    paths,
		interval: interval,
		upload:   upload,
		log:      log.WithField("component", "watch"),
	}
}

// Run blocks until ctx is done, uploading on file changes (debounced) and
// on every interval tick. Upload failures are logged and the loop
// continues; they never stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, path := range w.paths {
		if err := fw.Add(path); err != nil {
			w.log.WithError(err).WithField("path", path).Warn("cannot watch path")
		}
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.WithField("event", ev.String()).Debug("file change detected")
			debounce.Reset(debounceDelay)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")

		case <-debounce.C:
			w.runUpload(ctx)

		case <-ticker.C:
			w.runUpload(ctx)
		}
	}
}

func (w *Watcher) runUpload(ctx context.Context) {
	if err := w.upload(ctx); err != nil {
		w.log.WithError(err).Error("upload failed")
	}
}
