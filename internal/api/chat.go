package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sejin-coding/currex-go/internal/domain"
)

// Messages fetches the stored history for a chat room, oldest first.
func (c *Client) Messages(ctx context.Context, chatRoomID string) ([]domain.Message, error) {
	var msgs []domain.Message
	path := "/api/chat/getMessage?chatRoomId=" + url.QueryEscape(chatRoomID)
	if err := c.getJSON(ctx, path, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// OpponentInfo fetches the counterpart's public profile for a chat room.
func (c *Client) OpponentInfo(ctx context.Context, chatRoomID string) (domain.Opponent, error) {
	var opp domain.Opponent
	path := "/api/chat/opponentInfo?chatRoomId=" + url.QueryEscape(chatRoomID)
	if err := c.getJSON(ctx, path, &opp); err != nil {
		return domain.Opponent{}, err
	}
	return opp, nil
}

// SelectSell opens (or returns) the chat room for a listing the buyer picked.
func (c *Client) SelectSell(ctx context.Context, sellID string) (domain.ChatRoom, error) {
	var room domain.ChatRoom
	payload := map[string]string{"sellId": sellID}
	if err := c.sendJSON(ctx, http.MethodPost, "/api/chat/sellSelect", payload, &room); err != nil {
		return domain.ChatRoom{}, err
	}
	return room, nil
}
