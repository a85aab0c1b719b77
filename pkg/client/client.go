// Package client is a Go client for the notefeed REST API. It decodes the
// uniform response envelope and surfaces failed envelopes as *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"notefeed/internal/notes"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: http.DefaultClient,
	}
}

// APIError is a failed envelope: the HTTP status plus the server's message.
type APIError struct {
	StatusCode int
	Message    string
	RetryAfter int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// CreateNote posts a new note and returns the created record.
func (c *Client) CreateNote(ctx context.Context, content, author string) (*notes.Note, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/notes", notes.CreateNoteInput{
		Content: content,
		Author:  author,
	})
	if err != nil {
		return nil, err
	}
	return decodeNote(env)
}

// GetNote retrieves a single note by id.
func (c *Client) GetNote(ctx context.Context, id string) (*notes.Note, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeNote(env)
}

// ListNotes retrieves one page of notes plus pagination metadata. Zero
// page/limit mean the server defaults; author "" means no filter.
func (c *Client) ListNotes(ctx context.Context, page, limit int, author string) ([]*notes.Note, *notes.PageInfo, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if author != "" {
		q.Set("author", author)
	}

	path := "/api/notes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, nil, err
	}

	var items []*notes.Note
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, nil, fmt.Errorf("decode notes: %w", err)
	}
	return items, env.Pagination, nil
}

// TopLiked retrieves the most liked notes.
func (c *Client) TopLiked(ctx context.Context, limit int) ([]*notes.Note, error) {
	path := "/api/notes/top-liked"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var items []*notes.Note
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return items, nil
}

// LikeNote adds one like and returns the updated note.
func (c *Client) LikeNote(ctx context.Context, id string) (*notes.Note, error) {
	env, err := c.do(ctx, http.MethodPatch, "/api/notes/"+url.PathEscape(id)+"/like", nil)
	if err != nil {
		return nil, err
	}
	return decodeNote(env)
}

// UnlikeNote removes one like and returns the updated note.
func (c *Client) UnlikeNote(ctx context.Context, id string) (*notes.Note, error) {
	env, err := c.do(ctx, http.MethodPatch, "/api/notes/"+url.PathEscape(id)+"/unlike", nil)
	if err != nil {
		return nil, err
	}
	return decodeNote(env)
}

// DeleteNote removes a note and returns the deleted snapshot.
func (c *Client) DeleteNote(ctx context.Context, id string) (*notes.Note, error) {
	env, err := c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeNote(env)
}

// envelope mirrors notes.Envelope with Data left raw so each operation can
// decode its own payload shape.
type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *notes.PageInfo `json:"pagination"`
	RetryAfter int             `json:"retryAfter"`
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var payload *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(b)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Message,
			RetryAfter: env.RetryAfter,
		}
	}
	return &env, nil
}

func decodeNote(env *envelope) (*notes.Note, error) {
	var note notes.Note
	if err := json.Unmarshal(env.Data, &note); err != nil {
		return nil, fmt.Errorf("decode note: %w", err)
	}
	return &note, nil
}
