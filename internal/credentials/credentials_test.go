package credentials

import (
	"errors"
	"testing"
)

func TestMemory_SaveLoadDelete(t *testing.T) {
	m := NewMemory()

	if _, err := m.Load(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	if err := m.Save("tok-123"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "tok-123" {
		t.Errorf("Load = %q, want tok-123", got)
	}

	if err := m.Save("tok-456"); err != nil {
		t.Fatalf("Save replace: %v", err)
	}
	if got, _ := m.Load(); got != "tok-456" {
		t.Errorf("Load after replace = %q, want tok-456", got)
	}

	if err := m.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Load(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing token is not an error.
	if err := m.Delete(); err != nil {
		t.Errorf("Delete on empty store: %v", err)
	}
}

func TestMemory_EmptyTokenRejected(t *testing.T) {
	m := NewMemory()
	err := m.Save("")
	if err == nil {
		t.Fatal("expected error on empty token")
	}
	var credErr *Error
	if !errors.As(err, &credErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if credErr.Op != "save" {
		t.Errorf("op = %q, want save", credErr.Op)
	}
}

func TestError_TagsOperation(t *testing.T) {
	cause := errors.New("backend unavailable")
	for _, op := range []string{"save", "load", "delete"} {
		err := &Error{Op: op, Err: cause}
		if err.Op != op {
			t.Errorf("op = %q, want %q", err.Op, op)
		}
		if !errors.Is(err, cause) {
			t.Errorf("%s error must unwrap to its cause", op)
		}
	}
}

func TestMemory_ForcedFailures(t *testing.T) {
	for _, op := range []string{"save", "load", "delete"} {
		m := NewMemory()
		m.FailOp = op

		var err error
		switch op {
		case "save":
			err = m.Save("tok")
		case "load":
			_, err = m.Load()
		case "delete":
			err = m.Delete()
		}

		var credErr *Error
		if !errors.As(err, &credErr) {
			t.Fatalf("%s: expected *Error, got %v", op, err)
		}
		if credErr.Op != op {
			t.Errorf("op = %q, want %q", credErr.Op, op)
		}
	}
}
