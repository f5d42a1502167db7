package client

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"quickchat/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedConn feeds frames to the read loop until closed.
type scriptedConn struct {
	frames chan []byte

	mu     sync.Mutex
	closed bool
}

func newScriptedConn() *scriptedConn {
	return &scriptedConn{frames: make(chan []byte, 16)}
}

func (c *scriptedConn) push(event string, data interface{}) {
	raw, _ := json.Marshal(map[string]interface{}{"event": event, "data": data})
	c.frames <- raw
}

func (c *scriptedConn) ReadMessage() (int, []byte, error) {
	raw, ok := <-c.frames
	if !ok {
		return 0, nil, io.EOF
	}
	return 1, raw, nil
}

func (c *scriptedConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.frames)
	}
	return nil
}

func newTestSocket(conn *scriptedConn) (*SocketClient, *[]string) {
	sc := NewSocketClient("http://localhost:5000", logger.NewLogger())

	var dialed []string
	sc.dial = func(rawURL string) (socketConn, error) {
		dialed = append(dialed, rawURL)
		return conn, nil
	}
	return sc, &dialed
}

func TestConnect_BuildsSocketURL(t *testing.T) {
	conn := newScriptedConn()
	sc, dialed := newTestSocket(conn)

	require.NoError(t, sc.Connect("user-1"))
	defer sc.Disconnect()

	require.Len(t, *dialed, 1)
	assert.Equal(t, "ws://localhost:5000/api/presence/socket?userId=user-1", (*dialed)[0])
	assert.Equal(t, StateConnected, sc.State())
}

func TestConnect_Idempotent(t *testing.T) {
	conn := newScriptedConn()
	sc, dialed := newTestSocket(conn)

	require.NoError(t, sc.Connect("user-1"))
	require.NoError(t, sc.Connect("user-1"))
	defer sc.Disconnect()

	// The second call is a no-op while connected.
	assert.Len(t, *dialed, 1)
}

func TestConnect_DialFailure(t *testing.T) {
	sc := NewSocketClient("http://localhost:5000", logger.NewLogger())
	sc.dial = func(rawURL string) (socketConn, error) {
		return nil, errors.New("connection refused")
	}

	err := sc.Connect("user-1")
	assert.Error(t, err)
	assert.Equal(t, StateDisconnected, sc.State())

	// A failed dial leaves the client reconnectable.
	conn := newScriptedConn()
	sc.dial = func(rawURL string) (socketConn, error) { return conn, nil }
	require.NoError(t, sc.Connect("user-1"))
	assert.Equal(t, StateConnected, sc.State())
	sc.Disconnect()
}

func TestOnlineUsersReplacedWholesale(t *testing.T) {
	conn := newScriptedConn()
	sc, _ := newTestSocket(conn)

	var mu sync.Mutex
	var callbacks [][]string
	sc.OnOnlineUsers = func(ids []string) {
		mu.Lock()
		callbacks = append(callbacks, ids)
		mu.Unlock()
	}

	require.NoError(t, sc.Connect("user-1"))
	defer sc.Disconnect()

	conn.push("getOnlineUsers", []string{"alice", "bob"})
	require.Eventually(t, func() bool {
		return len(sc.OnlineUsers()) == 2
	}, time.Second, 10*time.Millisecond)

	conn.push("getOnlineUsers", []string{"alice"})
	require.Eventually(t, func() bool {
		return len(sc.OnlineUsers()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"alice"}, sc.OnlineUsers())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, callbacks, 2)
	assert.Equal(t, []string{"alice", "bob"}, callbacks[0])
}

func TestMalformedFramesIgnored(t *testing.T) {
	conn := newScriptedConn()
	sc, _ := newTestSocket(conn)

	require.NoError(t, sc.Connect("user-1"))
	defer sc.Disconnect()

	conn.frames <- []byte("{not json")
	conn.push("getOnlineUsers", []string{"alice"})

	require.Eventually(t, func() bool {
		return len(sc.OnlineUsers()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestServerCloseResetsState(t *testing.T) {
	conn := newScriptedConn()
	sc, _ := newTestSocket(conn)

	require.NoError(t, sc.Connect("user-1"))
	conn.push("getOnlineUsers", []string{"alice"})
	require.Eventually(t, func() bool {
		return len(sc.OnlineUsers()) == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return sc.State() == StateDisconnected
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, sc.OnlineUsers())
}
