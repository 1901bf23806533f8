package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestRun_IntervalTriggersUpload(t *testing.T) {
	var uploads atomic.Int64
	w := New([]string{t.TempDir()}, 50*time.Millisecond, func(ctx context.Context) error {
		uploads.Add(1)
		return nil
	}, quietLog())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, 2*time.Second, func() bool { return uploads.Load() >= 2 })
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
}

func TestRun_FileChangeTriggersUpload(t *testing.T) {
	old := debounceDelay
	debounceDelay = 50 * time.Millisecond
	defer func() { debounceDelay = old }()

	dir := t.TempDir()
	var uploads atomic.Int64
	w := New([]string{dir}, time.Hour, func(ctx context.Context) error {
		uploads.Add(1)
		return nil
	}, quietLog())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "Dusk.xccolortheme"), []byte("theme"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return uploads.Load() >= 1 })
}

func TestRun_UploadFailureDoesNotStopLoop(t *testing.T) {
	var uploads atomic.Int64
	w := New([]string{t.TempDir()}, 30*time.Millisecond, func(ctx context.Context) error {
		uploads.Add(1)
		return errors.New("transport failure")
	}, quietLog())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitFor(t, 2*time.Second, func() bool { return uploads.Load() >= 2 })
}

func TestRun_MissingWatchPathIsTolerated(t *testing.T) {
	var uploads atomic.Int64
	w := New([]string{filepath.Join(t.TempDir(), "absent")}, 30*time.Millisecond, func(ctx context.Context) error {
		uploads.Add(1)
		return nil
	}, quietLog())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// The interval path still works even when no directory can be watched.
	waitFor(t, 2*time.Second, func() bool { return uploads.Load() >= 1 })
}
