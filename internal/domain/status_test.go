package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListingStatus(t *testing.T) {
	s, err := ParseListingStatus("판매중")
	require.NoError(t, err)
	assert.Equal(t, StatusListed, s)

	_, err = ParseListingStatus("예약중")
	assert.Error(t, err)
}

func TestListingStatus_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		name string
		from ListingStatus
		to   ListingStatus
		want bool
	}{
		{"listed to negotiating", StatusListed, StatusNegotiating, true},
		{"listed to completed", StatusListed, StatusCompleted, true},
		{"negotiating to completed", StatusNegotiating, StatusCompleted, true},
		{"negotiating back to listed", StatusNegotiating, StatusListed, false},
		{"completed back to listed", StatusCompleted, StatusListed, false},
		{"completed back to negotiating", StatusCompleted, StatusNegotiating, false},
		{"no self transition", StatusNegotiating, StatusNegotiating, false},
		{"unknown target", StatusListed, ListingStatus("예약중"), false},
		{"unknown source", ListingStatus(""), StatusListed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestListingStatus_Terminal(t *testing.T) {
	assert.False(t, StatusListed.Terminal())
	assert.False(t, StatusNegotiating.Terminal())
	assert.True(t, StatusCompleted.Terminal())
}

func TestListingStatus_English(t *testing.T) {
	assert.Equal(t, "listed", StatusListed.English())
	assert.Equal(t, "negotiating", StatusNegotiating.English())
	assert.Equal(t, "completed", StatusCompleted.English())
	assert.Equal(t, "unknown", ListingStatus("x").English())
}

func TestListing_OwnedBy(t *testing.T) {
	l := Listing{SellID: "s1", SellerID: "u1"}
	assert.True(t, l.OwnedBy("u1"))
	assert.False(t, l.OwnedBy("u2"))
	assert.False(t, l.OwnedBy(""))
}

func TestMessage_Mine(t *testing.T) {
	m := Message{SenderID: "u1"}
	assert.True(t, m.Mine("u1"))
	assert.False(t, m.Mine("u2"))
	assert.False(t, m.Mine(""))
}
