package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sejin-coding/currex-go/internal/domain"
)

// Image is an attachment uploaded with a listing or donation registration.
type Image struct {
	Name string
	Data []byte
}

// RegisterSellInput is the form for posting a new sell listing.
type RegisterSellInput struct {
	Currency  string  `validate:"required,len=3"`
	Amount    float64 `validate:"required,gt=0"`
	KRWAmount float64 `validate:"gte=0"`
	Content   string  `validate:"max=2000"`
	Location  string  `validate:"required"`
	Images    []Image `validate:"max=10"`
}

// SellList fetches all open sell listings.
func (c *Client) SellList(ctx context.Context) ([]domain.Listing, error) {
	var listings []domain.Listing
	if err := c.getJSON(ctx, "/api/sell/sellList", &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// SellDescription fetches the authoritative record for one listing.
func (c *Client) SellDescription(ctx context.Context, sellID string) (domain.Listing, error) {
	var listing domain.Listing
	if err := c.getJSON(ctx, "/api/sell/sellDescription/"+sellID, &listing); err != nil {
		return domain.Listing{}, err
	}
	return listing, nil
}

// MySells fetches the authenticated user's own listings.
func (c *Client) MySells(ctx context.Context) ([]domain.Listing, error) {
	var listings []domain.Listing
	if err := c.getJSON(ctx, "/api/sell/mySells", &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// RegisterSell posts a new listing with its images.
func (c *Client) RegisterSell(ctx context.Context, in RegisterSellInput) (domain.Listing, error) {
	if err := validateInput(in); err != nil {
		return domain.Listing{}, err
	}

	fields := map[string]string{
		"currency":       in.Currency,
		"amount":         formatAmount(in.Amount),
		"KRWAmount":      formatAmount(in.KRWAmount),
		"content":        in.Content,
		"sellerLocation": in.Location,
	}

	contentType, body, err := encodeMultipart(fields, in.Images)
	if err != nil {
		return domain.Listing{}, err
	}

	var listing domain.Listing
	if err := c.do(ctx, http.MethodPost, "/api/sell/productRegi", contentType, body, &listing); err != nil {
		return domain.Listing{}, err
	}
	return listing, nil
}

// DeleteSell removes one of the user's own listings.
func (c *Client) DeleteSell(ctx context.Context, sellID string) error {
	return c.do(ctx, http.MethodDelete, "/api/sell/deleteSell/"+sellID, "", nil, nil)
}

// UpdateSellStatus changes the trade status of a listing. Owner and
// transition checks live in the trade package; this is the raw call.
func (c *Client) UpdateSellStatus(ctx context.Context, sellID string, status domain.ListingStatus) error {
	payload := map[string]string{"status": status.String()}
	return c.sendJSON(ctx, http.MethodPatch, "/api/sell/"+sellID+"/status", payload, nil)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%g", v)
}
