package credentials

import (
	"errors"
	"sync"
)

// Memory is an in-process Store for dev mode and tests.
type Memory struct {
	mu    sync.Mutex
	token string
	set   bool

	// FailOp, when non-empty, makes the named operation fail. Tests use it
	// to exercise the error-tagging path.
	FailOp string
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{}
}

// Save stores the token in memory.
func (m *Memory) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailOp == "save" {
		return &Error{Op: "save", Err: errors.New("forced failure")}
	}
	if token == "" {
		return &Error{Op: "save", Err: errors.New("empty token")}
	}
	m.token = token
	m.set = true
	return nil
}

// Load returns the stored token, or ErrNotFound.
func (m *Memory) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailOp == "load" {
		return "", &Error{Op: "load", Err: errors.New("forced failure")}
	}
	if !m.set {
		return "", ErrNotFound
	}
	return m.token, nil
}

// Delete clears the stored token.
func (m *Memory) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailOp == "delete" {
		return &Error{Op: "delete", Err: errors.New("forced failure")}
	}
	m.token = ""
	m.set = false
	return nil
}
