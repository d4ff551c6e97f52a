package sessionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/typetrace/internal/keystroke"
	xlog "github.com/Zuo-Peng/typetrace/internal/log"
)

const (
	DefaultTimeout = 10 * time.Second
	maxErrorBody   = 4096
)

// Client talks JSON over HTTP to the typing session service.
type Client struct {
	base  string
	token string
	http  *http.Client
	log   zerolog.Logger
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: DefaultTimeout},
		log:  xlog.WithComponent("sessionapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str(xlog.FieldBaseURL, c.base).Logger()
	return c
}

// BaseURL returns the service root without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

// StartResponse is the service's reply to a session start.
type StartResponse struct {
	SessionID int64  `json:"session_id"`
	StartedAt string `json:"started_at"`
	Prompt    string `json:"prompt"`
}

// Start opens a session for the given prompt and returns its id.
func (c *Client) Start(ctx context.Context, prompt string) (int64, error) {
	var out StartResponse
	body := map[string]string{"prompt": prompt}
	if err := c.do(ctx, "start", http.MethodPost, "/typing/sessions/start", body, &out); err != nil {
		return 0, err
	}
	if out.SessionID <= 0 {
		return 0, &APIError{Sentinel: ErrBadResponse, Operation: "start", Body: "missing session_id"}
	}
	return out.SessionID, nil
}

// UploadKeystrokes sends the full keystroke buffer in one batch.
func (c *Client) UploadKeystrokes(ctx context.Context, id int64, events []keystroke.Event) error {
	if events == nil {
		events = []keystroke.Event{}
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, "upload_keystrokes", http.MethodPost, sessionPath(id, "keystrokes"), events, &out); err != nil {
		return err
	}
	c.log.Debug().Int64(xlog.FieldSessionID, id).Int(xlog.FieldKeystrokes, out.Count).Msg("keystrokes stored")
	return nil
}

// UploadInput sends the final typed text.
func (c *Client) UploadInput(ctx context.Context, id int64, text string) error {
	body := map[string]string{"user_input": text}
	return c.do(ctx, "upload_input", http.MethodPost, sessionPath(id, "input"), body, nil)
}

// End marks the session ended.
func (c *Client) End(ctx context.Context, id int64) error {
	return c.do(ctx, "end", http.MethodPost, sessionPath(id, "end"), nil, nil)
}

// Summary fetches the scored result of an ended session.
func (c *Client) Summary(ctx context.Context, id int64) (*Summary, error) {
	var out Summary
	if err := c.do(ctx, "summary", http.MethodGet, sessionPath(id, "summary"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks that the service answers on /health.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/health", nil, nil)
}

func sessionPath(id int64, action string) string {
	return "/typing/sessions/" + strconv.FormatInt(id, 10) + "/" + action
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	logger := c.log.With().
		Str(xlog.FieldOperation, op).
		Str(xlog.FieldRequestID, reqID).
		Str(xlog.FieldPath, path).
		Logger()

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("request failed")
		return classifyTransport(op, err)
	}
	defer res.Body.Close()

	logger.Debug().Int(xlog.FieldStatus, res.StatusCode).Dur("duration", time.Since(start)).Msg("request done")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &APIError{
			Sentinel:  sentinelForStatus(res.StatusCode),
			Operation: op,
			Status:    res.StatusCode,
			Body:      errorDetail(raw, res.Status),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &APIError{Sentinel: ErrBadResponse, Operation: op, Status: res.StatusCode, Err: err}
	}
	return nil
}

func classifyTransport(op string, err error) error {
	sentinel := ErrUnavailable
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		sentinel = ErrTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		sentinel = ErrTimeout
	}
	return &APIError{Sentinel: sentinel, Operation: op, Err: err}
}

// errorDetail prefers the service's "detail" or "message" field and falls
// back to the raw body, then the status line.
func errorDetail(raw []byte, status string) string {
	var payload struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		switch d := payload.Detail.(type) {
		case string:
			if d != "" {
				return d
			}
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				return string(b)
			}
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return status
}
