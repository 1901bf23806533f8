// Package auth drives the login sequence: request authorization, await the
// redirect callback exactly once, exchange the code for a token, validate
// the token, and persist the resulting identity.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/makeeyaf/xcodesync/internal/credentials"
	"github.com/makeeyaf/xcodesync/internal/model"
)

// State is the flow's position in the login sequence. Any failure or nonce
// mismatch returns the flow to StateIdle.
type State int

const (
	StateIdle State = iota
	StateRequested
	StateAwaitingCallback
	StateExchanging
	StateValidating
	StateAuthenticated
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequested:
		return "requested"
	case StateAwaitingCallback:
		return "awaiting-callback"
	case StateExchanging:
		return "exchanging"
	case StateValidating:
		return "validating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

var (
	// ErrStateMismatch is returned when a callback carries a state value
	// that does not equal the outstanding nonce. Stale callbacks from a
	// superseded login attempt fail this way, since starting a new attempt
	// overwrites the nonce.
	ErrStateMismatch = errors.New("authorization state mismatch")

	// ErrInvalidCallback is returned when the callback is missing its code
	// or state parameter, or when the attempt was superseded before a
	// callback arrived.
	ErrInvalidCallback = errors.New("invalid authorization callback")
)

// Callback carries the query parameters of one authorization redirect.
type Callback struct {
	Code  string
	State string
}

// Flow is the authorization state machine. At most one login attempt can
// succeed at a time: starting a new attempt replaces the outstanding nonce
// and callback listener, so only the most recent attempt's callback is
// accepted.
type Flow struct {
	oauth   *oauth2.Config
	userURL string
	creds   credentials.Store
	openURL func(url string) error
	log     *logrus.Entry

	mu       sync.Mutex
	state    State
	nonce    string
	callback chan Callback
}

// New creates a Flow. openURL launches the external browser with the
// authorization URL; tests inject a stub.
func New(oauth *oauth2.Config, userURL string, creds credentials.Store, openURL func(string) error, log *logrus.Logger) *Flow {
	return &Flow{
		oauth:   oauth,
		userURL: userURL,
		creds:   creds,
		openURL: openURL,
		log:     log.WithField("component", "auth"),
	}
}

// State returns the flow's current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Login runs one complete login attempt and returns the authenticated
// identity. It blocks until the redirect callback arrives (delivered via
// HandleCallback) or ctx is done. On any failure the flow returns to idle
// and the error is returned; no credential is persisted except on the
// fully successful path.
func (f *Flow) Login(ctx context.Context) (model.Identity, error) {
	ch, nonce := f.begin()

	url := f.oauth.AuthCodeURL(nonce)
	if err := f.openURL(url); err != nil {
		f.resetIf(nonce)
		return model.Identity{}, fmt.Errorf("open authorization url: %w", err)
	}
	f.setState(StateAwaitingCallback)

	var cb Callback
	select {
	case <-ctx.Done():
		f.resetIf(nonce)
		return model.Identity{}, ctx.Err()
	case cb = <-ch:
	}

	if cb.Code == "" || cb.State == "" {
		f.resetIf(nonce)
		return model.Identity{}, ErrInvalidCallback
	}
	if cb.State != nonce {
		f.log.WithFields(logrus.Fields{"want": nonce, "got": cb.State}).Warn("rejecting callback with mismatched state")
		f.resetIf(nonce)
		return model.Identity{}, ErrStateMismatch
	}

	f.setState(StateExchanging)
	// The token request carries a freshly generated state field of its own.
	token, err := f.oauth.Exchange(ctx, cb.Code, oauth2.SetAuthURLParam("state", newNonce()))
	if err != nil {
		f.resetIf(nonce)
		return model.Identity{}, fmt.Errorf("exchange code: %w", err)
	}

	f.setState(StateValidating)
	username, err := f.fetchUsername(ctx, token.AccessToken)
	if err != nil {
		// Token discarded, never persisted.
		f.resetIf(nonce)
		return model.Identity{}, fmt.Errorf("validate token: %w", err)
	}

	if err := f.creds.Save(token.AccessToken); err != nil {
		f.resetIf(nonce)
		return model.Identity{}, err
	}

	f.setState(StateAuthenticated)
	return model.Identity{Username: username, AccessToken: token.AccessToken}, nil
}

// begin issues a fresh nonce and callback channel, invalidating any attempt
// already awaiting a callback.
func (f *Flow) begin() (chan Callback, string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.callback != nil {
		// Wake the superseded attempt; it sees an empty callback and fails.
		close(f.callback)
	}
	f.nonce = newNonce()
	f.callback = make(chan Callback, 1)
	f.state = StateRequested
	return f.callback, f.nonce
}

// HandleCallback delivers one redirect callback to the outstanding login
// attempt. It reports whether an attempt was listening; a callback with no
// listener is dropped.
func (f *Flow) HandleCallback(cb Callback) bool {
	f.mu.Lock()
	ch := f.callback
	f.callback = nil
	f.mu.Unlock()

	if ch == nil {
		f.log.Debug("dropping callback with no outstanding login attempt")
		return false
	}
	ch <- cb
	return true
}

// Logout deletes the persisted credential and returns the logged-out
// identity. Remote data is not touched.
func (f *Flow) Logout() (model.Identity, error) {
	f.reset()
	if err := f.creds.Delete(); err != nil {
		return model.Identity{}, err
	}
	return model.Identity{}, nil
}

// Restore re-validates a previously stored token at startup. A stored token
// is never assumed valid: if validation fails or the endpoint is
// unreachable, the credential is deleted and the logged-out identity is
// returned without error. Credential-store failures do propagate.
func (f *Flow) Restore(ctx context.Context) (model.Identity, error) {
	token, err := f.creds.Load()
	if errors.Is(err, credentials.ErrNotFound) {
		return model.Identity{}, nil
	}
	if err != nil {
		return model.Identity{}, err
	}

	username, err := f.fetchUsername(ctx, token)
	if err != nil {
		f.log.WithError(err).Info("stored token is no longer valid")
		if err := f.creds.Delete(); err != nil {
			return model.Identity{}, err
		}
		return model.Identity{}, nil
	}

	f.setState(StateAuthenticated)
	return model.Identity{Username: username, AccessToken: token}, nil
}

// fetchUsername resolves the authenticated identity for a token.
func (f *Flow) fetchUsername(ctx context.Context, token string) (string, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.userURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity endpoint returned %s", resp.Status)
	}

	var user struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decode identity: %w", err)
	}
	if user.Name == "" {
		return "", errors.New("identity response has no name")
	}
	return user.Name, nil
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// reset unconditionally returns the flow to idle.
func (f *Flow) reset() {
	f.mu.Lock()
	f.state = StateIdle
	f.nonce = ""
	f.callback = nil
	f.mu.Unlock()
}

// resetIf returns the flow to idle only when the attempt identified by
// nonce is still the current one. A superseded attempt failing late must
// not tear down the listener of the attempt that replaced it.
func (f *Flow) resetIf(nonce string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nonce != nonce {
		return
	}
	f.state = StateIdle
	f.nonce = ""
	f.callback = nil
}

func newNonce() string {
	return uuid.NewString()
}
