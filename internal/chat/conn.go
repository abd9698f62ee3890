// Package chat maintains the client's realtime connection to the chat
// server. One websocket connection is shared by the whole process; each open
// chat view holds a per-room subscription handle obtained from Join.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/sejin-coding/currex-go/internal/domain"
)

const (
	eventJoinRoom       = "joinRoom"
	eventSendMessage    = "sendMessage"
	eventReceiveMessage = "receiveMessage"

	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// envelope is the chat server's frame format. Every data payload carries a
// chatRoomId so frames can be routed to the right room.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinPayload struct {
	ChatRoomID string `json:"chatRoomId"`
}

// Conn is the shared realtime connection. It dials lazily on the first Join,
// reconnects with exponential backoff when the link drops, and re-joins all
// active rooms after a reconnect.
type Conn struct {
	url    string
	header http.Header
	logger *slog.Logger

	// limiter caps outbound sends across all rooms.
	limiter *rate.Limiter

	mu    sync.Mutex
	ws    *websocket.Conn
	rooms map[string]*Room

	ctx    context.Context
	cancel context.CancelFunc
}

// NewConn creates a realtime connection manager for the given chat server
// URL. An http(s) URL is converted to its ws(s) equivalent.
func NewConn(serverURL string, logger *slog.Logger) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		url:     toWebsocketURL(serverURL),
		header:  http.Header{},
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		rooms:   make(map[string]*Room),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Join subscribes to a chat room and returns its handle. Joining a room that
// is already subscribed returns the existing handle; exactly one active
// subscription exists per room.
func (c *Conn) Join(ctx context.Context, chatRoomID string) (*Room, error) {
	if chatRoomID == "" {
		return nil, fmt.Errorf("chat room id is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if room, ok := c.rooms[chatRoomID]; ok {
		return room, nil
	}

	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}

	room := newRoom(c, chatRoomID)
	if err := c.writeEventLocked(eventJoinRoom, joinPayload{ChatRoomID: chatRoomID}); err != nil {
		return nil, fmt.Errorf("join room %s: %w", chatRoomID, err)
	}
	c.rooms[chatRoomID] = room

	c.logger.Debug("joined chat room", slog.String("chat_room_id", chatRoomID))
	return room, nil
}

// Close tears down the connection and every room subscription.
func (c *Conn) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	for id, room := range c.rooms {
		room.markClosed()
		delete(c.rooms, id)
	}

	if c.ws == nil {
		return nil
	}
	_ = c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	err := c.ws.Close()
	c.ws = nil
	return err
}

// leave drops a room's subscription. Called from Room.Close.
func (c *Conn) leave(chatRoomID string) {
	c.mu.Lock()
	delete(c.rooms, chatRoomID)
	c.mu.Unlock()
}

// connectLocked dials the chat server if not yet connected. Callers hold c.mu.
func (c *Conn) connectLocked(ctx context.Context) error {
	if c.ws != nil {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	ws, _, err := dialer.DialContext(ctx, c.url, c.header)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.ws = ws
	go c.readLoop(ws)
	go c.keepalive(ws)
	return nil
}

func (c *Conn) writeEventLocked(event string, data any) error {
	if c.ws == nil {
		return fmt.Errorf("not connected")
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event, err)
	}
	return c.ws.WriteJSON(envelope{Event: event, Data: payload})
}

// send emits a fire-and-forget message frame. Delivery confirmation comes
// only as the server's rebroadcast; no local echo is ever produced.
func (c *Conn) send(ctx context.Context, msg domain.Message) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeEventLocked(eventSendMessage, msg)
}

// readLoop pumps inbound frames from one physical connection until it fails,
// then hands off to the reconnect path.
func (c *Conn) readLoop(ws *websocket.Conn) {
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			c.handleDisconnect(ws, err)
			return
		}

		var env envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			c.logger.Warn("dropping malformed chat frame", slog.String("error", err.Error()))
			continue
		}
		c.dispatch(env)
	}
}

// dispatch routes an inbound event to the room it belongs to. Frames for
// rooms without an active subscription are dropped: this is what prevents
// cross-room delivery and post-close leakage.
func (c *Conn) dispatch(env envelope) {
	if env.Event != eventReceiveMessage {
		return
	}

	var msg domain.Message
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		c.logger.Warn("dropping malformed chat message", slog.String("error", err.Error()))
		return
	}

	c.mu.Lock()
	room := c.rooms[msg.ChatRoomID]
	c.mu.Unlock()

	if room == nil {
		return
	}
	room.deliver(msg)
}

// keepalive pings the server so half-dead connections are detected.
func (c *Conn) keepalive(ws *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// handleDisconnect redials with exponential backoff and re-joins all active
// rooms. Gives up only when the connection was closed deliberately.
func (c *Conn) handleDisconnect(failed *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.ws != failed {
		// A newer connection already replaced this one.
		c.mu.Unlock()
		return
	}
	c.ws = nil
	c.mu.Unlock()

	if c.ctx.Err() != nil {
		return
	}

	c.logger.Warn("chat connection lost, reconnecting", slog.String("error", cause.Error()))

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second

	_, err := backoff.Retry(c.ctx, func() (struct{}, error) {
		return struct{}{}, c.redial()
	}, backoff.WithBackOff(b))
	if err != nil {
		c.logger.Error("chat reconnect abandoned", slog.String("error", err.Error()))
	}
}

// redial re-establishes the connection and re-emits joinRoom for every room
// that still has an active subscription.
func (c *Conn) redial() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(c.ctx); err != nil {
		return err
	}

	for id := range c.rooms {
		if err := c.writeEventLocked(eventJoinRoom, joinPayload{ChatRoomID: id}); err != nil {
			return fmt.Errorf("rejoin room %s: %w", id, err)
		}
	}

	c.logger.Info("chat connection restored", slog.Int("rooms", len(c.rooms)))
	return nil
}

func toWebsocketURL(serverURL string) string {
	switch {
	case strings.HasPrefix(serverURL, "https://"):
		return "wss://" + strings.TrimPrefix(serverURL, "https://")
	case strings.HasPrefix(serverURL, "http://"):
		return "ws://" + strings.TrimPrefix(serverURL, "http://")
	default:
		return serverURL
	}
}
