package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/sejin-coding/currex-go/pkg/errors"
	"github.com/sejin-coding/currex-go/pkg/logger"
)

// refreshResponse is the body of a successful refresh call.
type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// refresh exchanges the cookie-backed refresh credential for a new access
// token and installs it in the session. No bearer header is sent; the cookie
// jar carries the refresh cookie. Concurrent 401s serialize here: whichever
// caller wins refreshes once, and the losers find the session token already
// rotated past the one their request failed with and reuse it. Any refresh
// failure is terminal: the session is destroyed and the expiry hook fires.
func (c *Client) refresh(ctx context.Context, staleToken string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if current := c.session.Token(); current != "" && current != staleToken {
		return current, nil
	}

	token, err := c.requestToken(ctx)
	if err != nil {
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "token refresh failed", slog.String("error", err.Error()))
		c.session.Expire()
		return "", apperrors.SessionExpired(err.Error())
	}

	c.session.SetToken(token)
	logger.WithContext(ctx, c.logger).DebugContext(ctx, "access token refreshed")
	return token, nil
}

func (c *Client) requestToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/refresh", http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create refresh request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("refresh request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var body refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("refresh response missing access token")
	}
	return body.AccessToken, nil
}
