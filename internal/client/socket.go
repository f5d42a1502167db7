package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/fasthttp/websocket"

	"quickchat/internal/shared/logger"
)

// ConnState is the lifecycle state of the presence socket.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// socketEvent is the wire frame exchanged over the presence channel.
type socketEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type socketConn interface {
	ReadMessage() (int, []byte, error)
	Close() error
}

type dialFunc func(rawURL string) (socketConn, error)

func defaultDial(rawURL string) (socketConn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(rawURL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// SocketClient maintains the presence websocket. Connect is idempotent:
// calls while connecting or connected are no-ops. The online-user set is
// replaced wholesale on every getOnlineUsers event.
type SocketClient struct {
	baseURL string
	dial    dialFunc
	log     logger.Logger

	mu     sync.Mutex
	state  ConnState
	conn   socketConn
	online []string

	// OnOnlineUsers, when set, fires after each online-set replacement.
	OnOnlineUsers func(userIDs []string)
}

// NewSocketClient creates a presence client for the backend base URL
// (http:// or https://; the scheme is rewritten to ws:// or wss://).
func NewSocketClient(baseURL string, log logger.Logger) *SocketClient {
	if log == nil {
		log = logger.NewLogger()
	}
	return &SocketClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		dial:    defaultDial,
		log:     log.WithComponent("presence_client"),
	}
}

// Connect opens the socket identified by userID and starts the read loop.
// It is a no-op unless the client is disconnected.
func (s *SocketClient) Connect(userID string) error {
	if userID == "" {
		return fmt.Errorf("presence connect: empty user id")
	}

	s.mu.Lock()
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return nil
	}
	s.state = StateConnecting
	s.mu.Unlock()

	wsURL := s.socketURL(userID)
	conn, err := s.dial(wsURL)
	if err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		return fmt.Errorf("presence connect: %w", err)
	}

	s.mu.Lock()
	s.state = StateConnected
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop(conn)
	return nil
}

// Disconnect closes the socket and clears the online set. Safe to call
// in any state.
func (s *SocketClient) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.state = StateDisconnected
	s.online = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// State returns the current connection state.
func (s *SocketClient) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnlineUsers returns a copy of the last received online-user set.
func (s *SocketClient) OnlineUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.online))
	copy(out, s.online)
	return out
}

func (s *SocketClient) socketURL(userID string) string {
	ws := s.baseURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return ws + "/api/presence/socket?userId=" + url.QueryEscape(userID)
}

func (s *SocketClient) readLoop(conn socketConn) {
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
			s.state = StateDisconnected
			s.online = nil
		}
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var evt socketEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			s.log.Warnf("presence: dropping malformed frame: %v", err)
			continue
		}

		switch evt.Event {
		case "getOnlineUsers":
			var ids []string
			if err := json.Unmarshal(evt.Data, &ids); err != nil {
				s.log.Warnf("presence: bad online user list: %v", err)
				continue
			}
			s.mu.Lock()
			s.online = ids
			cb := s.OnOnlineUsers
			s.mu.Unlock()
			if cb != nil {
				cb(ids)
			}
		case "newMessage":
			// Delivery handled by higher layers polling the conversation.
		default:
			s.log.Debugf("presence: ignoring event %q", evt.Event)
		}
	}
}
