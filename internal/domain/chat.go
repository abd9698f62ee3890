package domain

import "time"

// ChatRoom scopes the realtime conversation between the two participants of
// a trade negotiation. It references its sell listing by id only.
type ChatRoom struct {
	ChatRoomID string        `json:"chatRoomId"`
	SellID     string        `json:"sellId"`
	BuyerID    string        `json:"buyerId,omitempty"`
	SellerID   string        `json:"sellerId,omitempty"`
	Status     ListingStatus `json:"status,omitempty"`
}

// Message is a single chat message. Messages are append-only: created on
// send, immutable afterwards, never deleted by the client. The id is
// assigned by the backend; live frames may omit it.
type Message struct {
	ID         string    `json:"_id,omitempty"`
	ChatRoomID string    `json:"chatRoomId"`
	SenderID   string    `json:"senderId"`
	Body       string    `json:"message"`
	IsPlace    bool      `json:"isPlace,omitempty"`
	SentAt     time.Time `json:"createdAt,omitempty"`
}

// Mine reports whether the message was sent by the given user.
func (m Message) Mine(userID string) bool {
	return userID != "" && m.SenderID == userID
}

// Opponent is the counterpart's public profile shown in a chat view.
type Opponent struct {
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profile_img,omitempty"`
}
