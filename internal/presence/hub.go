package presence

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"quickchat/internal/shared/logger"

	"go.uber.org/zap"
)

// Event names sent over the presence channel.
const (
	EventOnlineUsers = "getOnlineUsers"
	EventNewMessage  = "newMessage"
)

const sendBufferSize = 16

// textMessage mirrors websocket.TextMessage without binding the hub to a
// websocket package; the conn interface keeps the hub testable.
const textMessage = 1

// Event is the JSON frame pushed to connected clients.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Conn is the slice of the websocket connection the hub needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one live presence connection for a user.
type Client struct {
	userID string
	conn   Conn
	send   chan []byte
	once   sync.Once
}

// UserID returns the user this connection belongs to.
func (c *Client) UserID() string { return c.userID }

// close stops the write pump and closes the underlying connection.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// writePump drains the send channel onto the connection. One writer per
// connection; the channel close terminates it.
func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(textMessage, msg); err != nil {
			return
		}
	}
}

// Store optionally mirrors the online set into an external store for
// visibility outside this process. The hub itself stays the source of
// truth for broadcasts.
type Store interface {
	Add(ctx context.Context, userID string) error
	Remove(ctx context.Context, userID string) error
}

// Hub maintains the presence set: exactly one connection entry per online
// user id. Membership changes broadcast the full online-id slice to every
// connected client, serialized under the hub lock so all clients observe
// changes in the same order.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client
	store   Store
	log     logger.Logger
}

// NewHub creates a presence hub. store may be nil.
func NewHub(store Store, log logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		store:   store,
		log:     log.WithComponent("presence"),
	}
}

// Register records a connection for the user and broadcasts the new
// membership. A second connection for an already-online user replaces the
// first; the stale socket is closed.
func (h *Hub) Register(ctx context.Context, userID string, conn Conn) *Client {
	client := &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
	go client.writePump()

	h.mu.Lock()
	if prev, ok := h.clients[userID]; ok {
		prev.close()
	}
	h.clients[userID] = client
	h.broadcastOnlineLocked()
	h.mu.Unlock()

	if h.store != nil {
		if err := h.store.Add(ctx, userID); err != nil {
			h.log.Warn("failed to mirror presence", zap.String("userID", userID), zap.Error(err))
		}
	}

	h.log.Info("user connected", zap.String("userID", userID))
	return client
}

// Unregister removes the connection and broadcasts the new membership.
// A stale client (already replaced by a reconnect) is closed without
// touching the current entry.
func (h *Hub) Unregister(ctx context.Context, client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.userID]
	if !ok || current != client {
		h.mu.Unlock()
		client.close()
		return
	}
	delete(h.clients, client.userID)
	client.close()
	h.broadcastOnlineLocked()
	h.mu.Unlock()

	if h.store != nil {
		if err := h.store.Remove(ctx, client.userID); err != nil {
			h.log.Warn("failed to clear mirrored presence", zap.String("userID", client.userID), zap.Error(err))
		}
	}

	h.log.Info("user disconnected", zap.String("userID", client.userID))
}

// Close tears down every live connection. Used on server shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, client := range h.clients {
		client.close()
		delete(h.clients, userID)
	}
}

// OnlineUserIDs returns the sorted set of currently online user ids.
func (h *Hub) OnlineUserIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.onlineLocked()
}

// IsOnline reports whether the user has a live connection entry.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.clients[userID]
	return ok
}

// SendToUser pushes an event to one user's connection. Returns false when
// the user is offline or their send buffer is full.
func (h *Hub) SendToUser(userID string, event string, data interface{}) bool {
	payload, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		h.log.Error("failed to marshal event", zap.String("event", event), zap.Error(err))
		return false
	}

	// Send under the lock: a client still present in the map cannot have
	// its send channel closed concurrently.
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[userID]
	if !ok {
		return false
	}

	select {
	case client.send <- payload:
		return true
	default:
		h.log.Warn("dropping event, send buffer full", zap.String("userID", userID), zap.String("event", event))
		return false
	}
}

// onlineLocked returns the sorted online ids. Caller holds h.mu.
func (h *Hub) onlineLocked() []string {
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// broadcastOnlineLocked pushes the full online set to every client.
// Caller holds h.mu, which serializes broadcast order.
func (h *Hub) broadcastOnlineLocked() {
	payload, err := json.Marshal(Event{Event: EventOnlineUsers, Data: h.onlineLocked()})
	if err != nil {
		h.log.Error("failed to marshal online set", zap.Error(err))
		return
	}

	for id, client := range h.clients {
		select {
		case client.send <- payload:
		default:
			h.log.Warn("dropping presence broadcast, send buffer full", zap.String("userID", id))
		}
	}
}
