package api

import (
	"context"
	"net/http"
	"sort"

	"github.com/sejin-coding/currex-go/internal/domain"
)

// BuyRequest describes what a buyer is looking for.
type BuyRequest struct {
	Currency     string  `json:"currency" validate:"required,len=3"`
	MinAmount    float64 `json:"minAmount" validate:"gte=0"`
	MaxAmount    float64 `json:"maxAmount" validate:"required,gtefield=MinAmount"`
	UserLocation string  `json:"userLocation" validate:"required"`
	Latitude     float64 `json:"latitude" validate:"latitude"`
	Longitude    float64 `json:"longitude" validate:"longitude"`
}

// matchResponse is the seller-matching payload shape.
type matchResponse struct {
	Sellers []domain.SellerMatch `json:"sellersWithDistance"`
}

// RequestBuy registers the buyer's demand so sellers can be matched later.
func (c *Client) RequestBuy(ctx context.Context, in BuyRequest) error {
	if err := validateInput(in); err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodPost, "/api/trade/buy", in, nil)
}

// MatchSellers asks the backend for sellers matching the buyer's demand.
// The user's own listings are filtered out and results come back ordered by
// distance, nearest first.
func (c *Client) MatchSellers(ctx context.Context, in BuyRequest) ([]domain.SellerMatch, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var resp matchResponse
	if err := c.sendJSON(ctx, http.MethodPatch, "/api/trade/SellerMatch", in, &resp); err != nil {
		return nil, err
	}

	self := c.session.UserID()
	matches := resp.Sellers[:0]
	for _, m := range resp.Sellers {
		if m.SellerID == self {
			continue
		}
		matches = append(matches, m)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches, nil
}

// TradeList fetches the user's chat rooms, one per active negotiation.
func (c *Client) TradeList(ctx context.Context) ([]domain.ChatRoom, error) {
	var rooms []domain.ChatRoom
	if err := c.getJSON(ctx, "/api/trade/list", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}
