package domain

import "time"

// User is the authenticated user's profile.
type User struct {
	UserID       string `json:"userId"`
	Nickname     string `json:"nickname"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profile_img,omitempty"`
	Address      string `json:"address,omitempty"`
}

// Donation is a surplus-currency donation record.
type Donation struct {
	DonationID string    `json:"donationId,omitempty"`
	Name       string    `json:"name"`
	Currency   string    `json:"currency"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// DonationRankEntry is one row of the donor leaderboard.
type DonationRankEntry struct {
	Name   string  `json:"name"`
	Amount float64 `json:"totalAmount"`
}

// ExchangeRecord is one row of the user's past-trade history.
type ExchangeRecord struct {
	SellID      string        `json:"sellId"`
	Currency    string        `json:"currency"`
	Amount      float64       `json:"amount"`
	Status      ListingStatus `json:"status"`
	TradedAt    time.Time     `json:"tradedAt,omitempty"`
	Counterpart string        `json:"counterpart,omitempty"`
}
