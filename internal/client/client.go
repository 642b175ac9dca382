// Package client talks to a running galaxyd over HTTP and the live preview
// WebSocket.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/paintgalaxy/server/internal/database"
	"github.com/paintgalaxy/server/internal/galaxy"
	"github.com/paintgalaxy/server/internal/scenario"
)

// Client calls the galaxyd HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// GenerateResult is the server's reply to a generation request.
type GenerateResult struct {
	scenario.Result
	StartingStars int `json:"starting_stars"`
}

// Generate asks the server to render m. A nil seed lets the server pick.
func (c *Client) Generate(ctx context.Context, m *galaxy.Map, seed *int64, save bool) (*GenerateResult, error) {
	body, err := json.Marshal(struct {
		Map  *galaxy.Map `json:"map"`
		Seed *int64      `json:"seed,omitempty"`
		Save bool        `json:"save"`
	}{m, seed, save})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var res GenerateResult
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// List returns archived scenario summaries, newest first.
func (c *Client) List(ctx context.Context, limit int) ([]*database.Scenario, error) {
	u := c.baseURL + "/api/scenarios"
	if limit > 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var list []*database.Scenario
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// History returns every archived generation of the map with fingerprint,
// newest first.
func (c *Client) History(ctx context.Context, fingerprint string) ([]*database.Scenario, error) {
	u := c.baseURL + "/api/scenarios?fingerprint=" + url.QueryEscape(fingerprint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var list []*database.Scenario
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Verify asks the server to regenerate an archived scenario and compare it
// with the stored text.
func (c *Client) Verify(ctx context.Context, id string) (*scenario.Verification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/scenarios/"+url.PathEscape(id)+"/verify", nil)
	if err != nil {
		return nil, err
	}
	var v scenario.Verification
	if err := c.do(req, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Delete removes an archived scenario using the server's admin token.
func (c *Client) Delete(ctx context.Context, id, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/scenarios/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req, nil)
}

// Scenario returns the text of an archived scenario.
func (c *Client) Scenario(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/scenarios/"+url.PathEscape(id), nil)
	if err != nil {
		return "", err
	}
	var text string
	if err := c.do(req, &text); err != nil {
		return "", err
	}
	return text, nil
}

// do sends req and decodes a JSON reply into out, or copies a text reply
// when out is a *string. A nil out discards the body.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &body) != nil || body.Error == "" {
			body.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: body.Error}
	}

	if out == nil {
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = string(data)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ErrPreviewClosed is returned by Preview after Close.
var ErrPreviewClosed = errors.New("preview session closed")

// PreviewSession is an open live preview socket. Replies are collected in
// the background in arrival order.
type PreviewSession struct {
	conn     *websocket.Conn
	messages []string
	readErr  error
	mu       sync.Mutex
	arrived  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// OpenPreview connects to the live preview socket. A nil seed gives every
// map a fresh seed.
func (c *Client) OpenPreview(ctx context.Context, seed *int64) (*PreviewSession, error) {
	u, err := url.Parse(c.baseURL + "/ws")
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if seed != nil {
		u.RawQuery = "seed=" + strconv.FormatInt(*seed, 10)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, &APIError{Status: resp.StatusCode, Message: err.Error()}
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	s := &PreviewSession{
		conn:    conn,
		arrived: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go s.readMessages()
	return s, nil
}

func (s *PreviewSession) readMessages() {
	for {
		_, msg, err := s.conn.ReadMessage()
		s.mu.Lock()
		if err != nil {
			s.readErr = err
		} else {
			s.messages = append(s.messages, string(msg))
		}
		s.mu.Unlock()

		select {
		case s.arrived <- struct{}{}:
		default:
		}
		if err != nil {
			return
		}
	}
}

// Send pushes a map to the server.
func (s *PreviewSession) Send(m *galaxy.Map) error {
	select {
	case <-s.done:
		return ErrPreviewClosed
	default:
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode map: %w", err)
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Next waits up to timeout for the next unread reply.
func (s *PreviewSession) Next(timeout time.Duration) (string, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		s.mu.Lock()
		if len(s.messages) > 0 {
			msg := s.messages[0]
			s.messages = s.messages[1:]
			s.mu.Unlock()
			return msg, nil
		}
		readErr := s.readErr
		s.mu.Unlock()
		if readErr != nil {
			return "", readErr
		}

		select {
		case <-s.arrived:
		case <-s.done:
			return "", ErrPreviewClosed
		case <-deadline.C:
			return "", fmt.Errorf("no preview within %s", timeout)
		}
	}
}

// Preview sends m and waits for its scenario text. Replies starting with
// "# error:" are returned as errors.
func (s *PreviewSession) Preview(m *galaxy.Map, timeout time.Duration) (string, error) {
	if err := s.Send(m); err != nil {
		return "", err
	}
	text, err := s.Next(timeout)
	if err != nil {
		return "", err
	}
	if msg, ok := strings.CutPrefix(text, "# error: "); ok {
		return "", errors.New(msg)
	}
	return text, nil
}

// Close closes the session.
func (s *PreviewSession) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = s.conn.Close()
	})
	return err
}
