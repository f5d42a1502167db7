package presence

import (
	"context"

	"quickchat/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WSHandler exposes the presence channel over a websocket endpoint. The
// client supplies its user id as the userId query parameter; the server
// broadcasts the full online set on every membership change.
type WSHandler struct {
	hub *Hub
	log logger.Logger
}

// NewWSHandler creates a new presence websocket handler.
func NewWSHandler(hub *Hub, log logger.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		log: log.WithComponent("presence_ws"),
	}
}

// RegisterRoutes registers the websocket endpoint.
func (h *WSHandler) RegisterRoutes(router fiber.Router) {
	router.Use("/socket", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/socket", websocket.New(h.handleConnection))
}

// handleConnection runs for the lifetime of one presence connection.
func (h *WSHandler) handleConnection(conn *websocket.Conn) {
	userID := conn.Query("userId")
	if userID == "" {
		h.log.Warn("rejecting connection without userId metadata")
		_ = conn.WriteJSON(Event{Event: "error", Data: "userId query parameter required"})
		_ = conn.Close()
		return
	}

	ctx := context.Background()
	client := h.hub.Register(ctx, userID, conn)
	defer h.hub.Unregister(ctx, client)

	// Keep reading to detect disconnection. The presence channel carries
	// no client-to-server traffic.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Error("websocket error", zap.String("userID", userID), zap.Error(err))
			}
			return
		}
	}
}
