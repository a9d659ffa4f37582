// Package api is the request/response glue to the backend. Sign-up and
// sign-in are the only operations the onboarding flow needs; everything is a
// JSON POST with a success/data/error envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pillbox/internal/session"
)

// Response is the backend envelope. Data is left raw for the caller to
// decode against the endpoint's payload type.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Poster issues a request to the backend. The concrete Client implements it;
// tests substitute fakes.
type Poster interface {
	Post(ctx context.Context, path string, body any) (*Response, error)
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient creates a Client for the given base URL. timeout bounds each
// request; zero means 15 seconds. log may be nil.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Post sends body as JSON to path and decodes the response envelope. A
// non-2xx status with a decodable envelope is returned as an unsuccessful
// Response, not an error; transport failures are errors.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response (%d): %w", resp.StatusCode, err)
	}

	var envelope Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response (%d): %s", resp.StatusCode, string(raw))
	}

	if !envelope.Success {
		c.log.Debug("request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", envelope.Error))
	}
	return &envelope, nil
}

// authPayload is the session shape both auth endpoints return.
type authPayload struct {
	User  session.User `json:"user"`
	Token string       `json:"token"`
}

// SignUp registers an account and returns the new session.
func SignUp(ctx context.Context, p Poster, name, email, password string) (*session.Session, error) {
	return authCall(ctx, p, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// SignIn authenticates an existing account and returns the session.
func SignIn(ctx context.Context, p Poster, email, password string) (*session.Session, error) {
	return authCall(ctx, p, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func authCall(ctx context.Context, p Poster, path string, body map[string]string) (*session.Session, error) {
	resp, err := p.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		if resp.Error != "" {
			return nil, fmt.Errorf("%s", resp.Error)
		}
		return nil, fmt.Errorf("authentication rejected")
	}

	var payload authPayload
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode auth payload: %w", err)
	}

	sess := &session.Session{User: payload.User, Token: payload.Token}
	if !sess.Valid() {
		return nil, fmt.Errorf("auth payload missing user or token")
	}
	return sess, nil
}
