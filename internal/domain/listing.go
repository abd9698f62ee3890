package domain

import "time"

// Listing is a foreign-currency sell offer.
type Listing struct {
	SellID    string        `json:"sellId"`
	SellerID  string        `json:"sellerId"`
	Currency  string        `json:"currency"`
	Amount    float64       `json:"amount"`
	KRWAmount float64       `json:"KRWAmount,omitempty"`
	Content   string        `json:"content,omitempty"`
	Location  string        `json:"location,omitempty"`
	Images    []string      `json:"images,omitempty"`
	Status    ListingStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt,omitempty"`
}

// OwnedBy reports whether the given user created this listing.
func (l Listing) OwnedBy(userID string) bool {
	return userID != "" && l.SellerID == userID
}

// SellerMatch is a listing annotated with the distance to the buyer,
// as returned by the seller-matching endpoint.
type SellerMatch struct {
	Listing
	Distance float64 `json:"distance"`
}
