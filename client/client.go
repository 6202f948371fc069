// Package client is a Go client for the IRIS API. It keeps the signed-in
// Session, maps error responses onto the server's error taxonomy and
// provides the polling and review-queue helpers used by front ends.
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
	"strings"
	"sync"
	"time"
)

// Session is the signed-in user. It is cleared on Logout.
type Session struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Token    string `json:"-"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.RWMutex
	session *Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for baseURL, e.g. "http://localhost:8080/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the current session, if any.
func (c *Client) Session() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Logout forgets the session; the bearer token is simply dropped.
func (c *Client) Logout() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

type loginResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    Session `json:"user"`
}

// Login exchanges credentials for a token and stores the Session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/login", bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "login", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &TransportError{Op: "login", Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.StatusCode >= 500 {
		return nil, &TransportError{Op: "login", Status: resp.StatusCode, Err: errors.New(out.Message)}
	}
	if out.Status != "success" {
		code := "UNAUTHORIZED"
		if resp.StatusCode == http.StatusBadRequest {
			code = "VALIDATION"
		}
		return nil, &APIError{Status: resp.StatusCode, Code: code, Message: out.Message}
	}

	s := out.User
	s.Token = out.Token
	c.mu.Lock()
	c.session = &s
	c.mu.Unlock()
	return &s, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// do sends a request and decodes the "data" field of a success envelope
// into out (which may be nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := method + " " + path
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if s, ok := c.Session(); ok {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeFailure(op, resp)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !env.Success {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

// decodeFailure turns an error response into an APIError, or into a
// TransportError when the body is not a JSON error envelope or the server
// failed with 5xx.
func (c *Client) decodeFailure(op string, resp *http.Response) error {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Code == "" {
		if err == nil {
			err = errors.New("missing error code")
		}
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode error response: %w", err)}
	}
	if resp.StatusCode >= 500 {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(env.Error)}
	}
	return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
}
