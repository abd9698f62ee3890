// Package api implements the authenticated REST client for the currex
// backend. Credential attachment and single-shot recovery from token expiry
// are handled here; callers only ever see typed results or a classified
// error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sejin-coding/currex-go/internal/session"
	apperrors "github.com/sejin-coding/currex-go/pkg/errors"
	"github.com/sejin-coding/currex-go/pkg/httpclient"
	"github.com/sejin-coding/currex-go/pkg/logger"
	"github.com/sejin-coding/currex-go/pkg/validator"
)

// Config holds client configuration.
type Config struct {
	// BaseURL is the backend origin, e.g. "https://currex.kro.kr".
	BaseURL string
	// Timeout bounds each individual HTTP attempt.
	Timeout time.Duration
}

// Client issues requests against the backend with automatic bearer-token
// attachment. The cookie jar transports the server-managed refresh cookie on
// every call, mirroring the browser's credential-inclusion mode.
type Client struct {
	http    *httpclient.Client
	baseURL string
	session *session.Session
	logger  *slog.Logger

	// refreshMu serializes the refresh flow: the token store has a single
	// writer even when many requests hit a 401 at once.
	refreshMu sync.Mutex
}

// New creates a backend client bound to the given session.
func New(cfg Config, sess *session.Session, log *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		http: httpclient.New(httpclient.Config{
			Timeout: timeout,
			// Transport retries stay off here: the 401 path below is the
			// only replay this client performs on its own.
			MaxRetries:      0,
			MaxConnsPerHost: 10,
			Jar:             jar,
		}),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		session: sess,
		logger:  log,
	}, nil
}

// Session exposes the bound session, mainly for the chat layer and the CLI.
func (c *Client) Session() *session.Session {
	return c.session
}

// getJSON issues an authenticated GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, "", nil, out)
}

// sendJSON issues an authenticated request with a JSON body.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}
	return c.do(ctx, method, path, "application/json", body, out)
}

// do performs one authenticated exchange. On a 401 for a request that has
// not been replayed yet it refreshes the session exactly once and replays
// with the new token; a second 401 ends the session. The retry budget lives
// in this wrapper, not in mutable request state.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	if userID := c.session.UserID(); userID != "" {
		ctx = logger.WithUserID(ctx, userID)
	}

	staleToken := c.session.Token()
	resp, err := c.attempt(ctx, method, path, contentType, body, staleToken)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)

		token, err := c.refresh(ctx, staleToken)
		if err != nil {
			return err
		}

		resp, err = c.attempt(ctx, method, path, contentType, body, token)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			c.session.Expire()
			return apperrors.SessionExpired("request rejected after token refresh")
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp)
	}

	return decode(resp, out)
}

// attempt sends a single request, attaching the bearer token when present.
func (c *Client) attempt(ctx context.Context, method, path, contentType string, body []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", correlationID)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Network(err)
	}
	return resp, nil
}

// validateInput runs struct validation, translating failures into the
// client's validation error class. Rejected input never reaches the network.
func validateInput(in any) error {
	if err := validator.Validate(in); err != nil {
		if verr, ok := err.(*validator.ValidationError); ok {
			return apperrors.Validation(verr.Error(), verr.Fields())
		}
		return err
	}
	return nil
}

func decode(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
