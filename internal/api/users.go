package api

import (
	"context"
	"net/http"

	"github.com/sejin-coding/currex-go/internal/domain"
	apperrors "github.com/sejin-coding/currex-go/pkg/errors"
)

// MyPage fetches the authenticated user's profile.
func (c *Client) MyPage(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := c.getJSON(ctx, "/api/user/mypage", &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// ChangeAddress updates the user's registered neighborhood.
func (c *Client) ChangeAddress(ctx context.Context, address string) error {
	if address == "" {
		return apperrors.Validation("address is required", map[string]string{"address": "is required"})
	}
	payload := map[string]string{"address": address}
	return c.sendJSON(ctx, http.MethodPut, "/api/user/changeAddress", payload, nil)
}

// Logout ends the session on the backend and destroys local state. The
// local session is cleared even when the backend call fails: a half
// logged-out client must not keep acting authenticated.
func (c *Client) Logout(ctx context.Context) error {
	err := c.sendJSON(ctx, http.MethodPost, "/api/auth/logout", struct{}{}, nil)
	c.session.Clear()
	return err
}
