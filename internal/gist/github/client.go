// Package github implements gist.DocumentStore against the GitHub Gist
// REST API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/makeeyaf/xcodesync/internal/gist"
)

// Client talks to the Gist endpoints of one GitHub instance on behalf of a
// single authenticated user.
type Client struct {
	baseURL string
	tag     string
	http    *http.Client
}

// New creates a Client authenticated with the given access token. baseURL
// is the API root (https://api.github.com in production) and tag is the
// fixed description prefix identifying this app's document.
func New(ctx context.Context, baseURL, tag, token string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		baseURL: baseURL,
		tag:     tag,
		http:    oauth2.NewClient(ctx, src),
	}
}

type filePayload struct {
	Content string `json:"content"`
}

type createRequest struct {
	Files       map[string]filePayload `json:"files"`
	Description string                 `json:"description"`
}

type createResponse struct {
	ID        string `json:"id"`
	UpdatedAt string `json:"updated_at"`
}

type readFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type readResponse struct {
	UpdatedAt string              `json:"updated_at"`
	Files     map[string]readFile `json:"files"`
}

type listedGist struct {
	ID          string `json:"id"`
	UpdatedAt   string `json:"updated_at"`
	Description string `json:"description"`
}

// Create creates a new gist containing exactly the given files.
func (c *Client) Create(ctx context.Context, files map[string]string, description string) (string, error) {
	req := createRequest{Files: make(map[string]filePayload, len(files)), Description: description}
	for name, content := range files {
		req.Files[name] = filePayload{Content: content}
	}

	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/gists", req, &resp); err != nil {
		return "", fmt.Errorf("create gist: %w", err)
	}
	return resp.ID, nil
}

// Read fetches the full file map and update timestamp of a gist.
func (c *Client) Read(ctx context.Context, id string) (*gist.Snapshot, error) {
	var resp readResponse
	if err := c.do(ctx, http.MethodGet, "/gists/"+id, nil, &resp); err != nil {
		return nil, fmt.Errorf("read gist %s: %w", id, err)
	}

	snap := &gist.Snapshot{
		ID:        id,
		UpdatedAt: parseTime(resp.UpdatedAt),
		Files:     make(map[string]string, len(resp.Files)),
	}
	for _, f := range resp.Files {
		snap.Files[f.Filename] = f.Content
	}
	return snap, nil
}

// Update applies one batched patch. Tombstone entries are sent as JSON null
// per the Gist API, which deletes the filename from the document.
func (c *Client) Update(ctx context.Context, id string, changes map[string]gist.Change) error {
	files := make(map[string]*filePayload, len(changes))
	for name, change := range changes {
		if change.Delete {
			files[name] = nil
			continue
		}
		files[name] = &filePayload{Content: change.Content}
	}

	body := struct {
		Files map[string]*filePayload `json:"files"`
	}{Files: files}

	if err := c.do(ctx, http.MethodPatch, "/gists/"+id, body, nil); err != nil {
		return fmt.Errorf("update gist %s: %w", id, err)
	}
	return nil
}

// Delete removes the entire gist.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/gists/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete gist %s: %w", id, err)
	}
	return nil
}

// FindOwned lists the user's gists and returns the one whose description
// exactly equals the app tag plus the username. If multiple match, the
// first listed wins.
func (c *Client) FindOwned(ctx context.Context, username string) (string, error) {
	var gists []listedGist
	if err := c.do(ctx, http.MethodGet, "/users/"+username+"/gists", nil, &gists); err != nil {
		return "", fmt.Errorf("list gists for %s: %w", username, err)
	}

	want := c.tag + username
	for _, g := range gists {
		if g.Description == want {
			return g.ID, nil
		}
	}
	return "", gist.ErrNotFound
}

// do issues one API request, encoding body as JSON when non-nil and
// decoding the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return gist.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseTime parses the API's RFC 3339 timestamps, falling back to the
// current time when the field is missing or malformed.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now()
	}
	return t
}
