package domain

import "fmt"

// ListingStatus is the trade status of a sell listing. The backend stores the
// Korean display values, so those are the wire values.
type ListingStatus string

const (
	// StatusListed marks a listing that is open for sale.
	StatusListed ListingStatus = "판매중"
	// StatusNegotiating marks a listing under negotiation with a buyer.
	StatusNegotiating ListingStatus = "거래중"
	// StatusCompleted marks a finished trade. Terminal.
	StatusCompleted ListingStatus = "거래완료"
)

// statusRank orders statuses along the listed → negotiating → completed
// sequence. Transitions only ever move forward.
var statusRank = map[ListingStatus]int{
	StatusListed:      0,
	StatusNegotiating: 1,
	StatusCompleted:   2,
}

// ParseListingStatus validates a raw status value from the backend.
func ParseListingStatus(raw string) (ListingStatus, error) {
	s := ListingStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown listing status %q", raw)
	}
	return s, nil
}

// Valid reports whether the status is one of the three known values.
func (s ListingStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transition is permitted.
func (s ListingStatus) Terminal() bool {
	return s == StatusCompleted
}

// CanAdvanceTo reports whether a transition from s to next is allowed.
// Transitions are monotonic: only strictly forward moves are valid, and a
// completed listing never changes again.
func (s ListingStatus) CanAdvanceTo(next ListingStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// English returns the English name used in logs and errors.
func (s ListingStatus) English() string {
	switch s {
	case StatusListed:
		return "listed"
	case StatusNegotiating:
		return "negotiating"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

func (s ListingStatus) String() string {
	return string(s)
}
