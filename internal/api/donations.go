package api

import (
	"context"
	"net/http"

	"github.com/sejin-coding/currex-go/internal/domain"
)

// RegisterDonationInput is the form for donating surplus currency.
type RegisterDonationInput struct {
	Name     string  `validate:"required,max=100"`
	Currency string  `validate:"required,len=3"`
	Amount   float64 `validate:"required,gt=0"`
	Images   []Image `validate:"max=10"`
}

// RegisterDonation submits a donation with its receipt images.
func (c *Client) RegisterDonation(ctx context.Context, in RegisterDonationInput) (domain.Donation, error) {
	if err := validateInput(in); err != nil {
		return domain.Donation{}, err
	}

	fields := map[string]string{
		"name":     in.Name,
		"currency": in.Currency,
		"amount":   formatAmount(in.Amount),
	}

	contentType, body, err := encodeMultipart(fields, in.Images)
	if err != nil {
		return domain.Donation{}, err
	}

	var donation domain.Donation
	if err := c.do(ctx, http.MethodPost, "/api/donation/dRegi", contentType, body, &donation); err != nil {
		return domain.Donation{}, err
	}
	return donation, nil
}

// DonationRank fetches the donor leaderboard.
func (c *Client) DonationRank(ctx context.Context) ([]domain.DonationRankEntry, error) {
	var entries []domain.DonationRankEntry
	if err := c.getJSON(ctx, "/api/donation/rank", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DonationTotal fetches the accumulated donation total in KRW.
func (c *Client) DonationTotal(ctx context.Context) (float64, error) {
	var resp struct {
		Total float64 `json:"total"`
	}
	if err := c.getJSON(ctx, "/api/donation/total", &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// DonationProcess fetches donations currently being processed.
func (c *Client) DonationProcess(ctx context.Context) ([]domain.Donation, error) {
	var donations []domain.Donation
	if err := c.getJSON(ctx, "/api/donation/donationProcess", &donations); err != nil {
		return nil, err
	}
	return donations, nil
}

// DonationHistory fetches the user's past donations.
func (c *Client) DonationHistory(ctx context.Context) ([]domain.Donation, error) {
	var donations []domain.Donation
	if err := c.getJSON(ctx, "/api/history/donations", &donations); err != nil {
		return nil, err
	}
	return donations, nil
}

// ExchangeHistory fetches the user's completed trades.
func (c *Client) ExchangeHistory(ctx context.Context) ([]domain.ExchangeRecord, error) {
	var records []domain.ExchangeRecord
	if err := c.getJSON(ctx, "/api/history/exchange", &records); err != nil {
		return nil, err
	}
	return records, nil
}
