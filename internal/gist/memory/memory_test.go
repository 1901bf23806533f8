package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/makeeyaf/xcodesync/internal/gist"
)

const testTag = "XcodeSync for "

func TestCreateReadUpdateDelete(t *testing.T) {
	s := New(testTag)
	ctx := context.Background()

	id, err := s.Create(ctx, map[string]string{"a.xccolortheme": "x"}, testTag+"alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	snap, err := s.Read(ctx, id)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if snap.Files["a.xccolortheme"] != "x" {
		t.Errorf("files = %v", snap.Files)
	}
	if snap.UpdatedAt.IsZero() {
		t.Error("snapshot must carry an update timestamp")
	}

	err = s.Update(ctx, id, map[string]gist.Change{
		"a.xccolortheme":   gist.Tombstone(),
		"b.idekeybindings": gist.Upsert("y"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	snap, err = s.Read(ctx, id)
	if err != nil {
		t.Fatalf("Read after update: %v", err)
	}
	if _, ok := snap.Files["a.xccolortheme"]; ok {
		t.Error("tombstoned file must be removed")
	}
	if snap.Files["b.idekeybindings"] != "y" {
		t.Errorf("files = %v", snap.Files)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read(ctx, id); !errors.Is(err, gist.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFindOwned_ExactDescriptionMatch(t *testing.T) {
	s := New(testTag)
	ctx := context.Background()

	if _, err := s.Create(ctx, nil, "other"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	want, err := s.Create(ctx, nil, testTag+"alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.FindOwned(ctx, "alice")
	if err != nil {
		t.Fatalf("FindOwned: %v", err)
	}
	if got != want {
		t.Errorf("id = %q, want %q", got, want)
	}

	if _, err := s.FindOwned(ctx, "bob"); !errors.Is(err, gist.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestRead_ReturnsCopy(t *testing.T) {
	s := New(testTag)
	ctx := context.Background()

	id, err := s.Create(ctx, map[string]string{"a.xccolortheme": "x"}, testTag+"alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	snap, _ := s.Read(ctx, id)
	snap.Files["a.xccolortheme"] = "mutated"

	again, _ := s.Read(ctx, id)
	if again.Files["a.xccolortheme"] != "x" {
		t.Error("Read must return a copy, not the backing map")
	}
}
