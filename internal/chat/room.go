package chat

import (
	"context"
	"sync"

	"github.com/sejin-coding/currex-go/internal/domain"
)

// HistorySource fetches the stored transcript of a room. Satisfied by the
// REST API client.
type HistorySource interface {
	Messages(ctx context.Context, chatRoomID string) ([]domain.Message, error)
}

// Room is a live subscription to one chat room. Messages arriving before a
// handler is registered are buffered so the usual open sequence, join then
// fetch history then render, loses nothing.
type Room struct {
	id   string
	conn *Conn

	// deliverMu serializes handler invocation. Close acquires it after
	// marking the room closed, so an in-flight delivery finishes before
	// Close returns and nothing runs afterwards.
	deliverMu sync.Mutex

	mu      sync.Mutex
	closed  bool
	handler func(domain.Message)
	buffer  []domain.Message
	seen    map[string]struct{}
}

func newRoom(c *Conn, chatRoomID string) *Room {
	return &Room{
		id:   chatRoomID,
		conn: c,
		seen: make(map[string]struct{}),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// OnMessage registers the handler for live messages. Only one handler is
// active at a time; registering replaces the previous one. Call History
// before OnMessage when rendering a transcript, otherwise frames buffered
// between Join and OnMessage stay buffered until History drains them.
func (r *Room) OnMessage(h func(domain.Message)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = h
}

// Send emits a chat message to the room. The send is fire-and-forget: the
// message appears locally only once the server rebroadcasts it, so sender
// and recipient render the identical server-ordered transcript.
func (r *Room) Send(ctx context.Context, senderID, body string) error {
	return r.conn.send(ctx, domain.Message{
		ChatRoomID: r.id,
		SenderID:   senderID,
		Body:       body,
	})
}

// SendLocation emits a meeting-place message. The body carries the map link
// and the place flag tells the peer's client to render it as a location card.
func (r *Room) SendLocation(ctx context.Context, senderID, mapURL string) error {
	return r.conn.send(ctx, domain.Message{
		ChatRoomID: r.id,
		SenderID:   senderID,
		Body:       mapURL,
		IsPlace:    true,
	})
}

// History fetches the stored transcript and merges in any live messages that
// arrived since Join, deduplicated by message id. The returned slice is the
// complete transcript up to now; subsequent messages flow through OnMessage.
// A fetch that completes after Close is discarded.
func (r *Room) History(ctx context.Context, src HistorySource) ([]domain.Message, error) {
	msgs, err := src.Messages(ctx, r.id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, context.Canceled
	}

	for _, m := range msgs {
		if m.ID != "" {
			r.seen[m.ID] = struct{}{}
		}
	}
	for _, m := range r.buffer {
		if m.ID != "" {
			if _, dup := r.seen[m.ID]; dup {
				continue
			}
			r.seen[m.ID] = struct{}{}
		}
		msgs = append(msgs, m)
	}
	r.buffer = nil

	return msgs, nil
}

// Close ends the subscription. Once Close returns, the handler never runs
// again; a delivery already in the handler is allowed to finish first. Do
// not call Close from inside the handler.
func (r *Room) Close() {
	r.conn.leave(r.id)
	r.markClosed()

	// Barrier: wait out a delivery that was already past the closed check.
	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()
}

func (r *Room) markClosed() {
	r.mu.Lock()
	r.closed = true
	r.handler = nil
	r.buffer = nil
	r.mu.Unlock()
}

// deliver routes one live message into the handler, or the buffer when no
// handler is registered yet. Duplicates of already-seen ids are dropped.
func (r *Room) deliver(msg domain.Message) {
	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if msg.ID != "" {
		if _, dup := r.seen[msg.ID]; dup {
			r.mu.Unlock()
			return
		}
		r.seen[msg.ID] = struct{}{}
	}
	h := r.handler
	if h == nil {
		r.buffer = append(r.buffer, msg)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	h(msg)
}
