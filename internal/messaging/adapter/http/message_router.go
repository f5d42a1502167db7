package http

import (
	"errors"

	authhttp "quickchat/internal/auth/adapter/http"
	"quickchat/internal/messaging/domain/model"
	"quickchat/internal/messaging/usecase"
	"quickchat/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform response shape for messaging endpoints, mirroring
// the auth envelope convention.
type Envelope struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message,omitempty"`
	Users      []usecase.SidebarUser `json:"users,omitempty"`
	Messages   []*model.Message      `json:"messages,omitempty"`
	NewMessage *model.Message        `json:"newMessage,omitempty"`
}

// MessageHTTPHandler handles HTTP requests for direct messages
type MessageHTTPHandler struct {
	usecase usecase.MessagingUsecaseInterface
	log     logger.Logger
}

// NewMessageHTTPHandler creates a new messaging HTTP handler
func NewMessageHTTPHandler(uc usecase.MessagingUsecaseInterface, log logger.Logger) *MessageHTTPHandler {
	return &MessageHTTPHandler{
		usecase: uc,
		log:     log.WithComponent("message_http"),
	}
}

// SetupRoutes registers messaging routes; every endpoint requires auth.
func (h *MessageHTTPHandler) SetupRoutes(router fiber.Router, middleware *authhttp.AuthMiddleware) {
	protected := router.Group("/", middleware.Protect())
	protected.Get("/users", h.UsersForSidebar)
	protected.Get("/:id", h.Conversation)
	protected.Put("/mark/:id", h.MarkSeen)
	protected.Post("/send/:id", h.SendMessage)
}

// UsersForSidebar lists other users with unseen-message counts.
func (h *MessageHTTPHandler) UsersForSidebar(c *fiber.Ctx) error {
	user, ok := authhttp.UserFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(Envelope{Success: false, Message: "No token provided"})
	}

	users, err := h.usecase.UsersForSidebar(c.Context(), user.ID)
	if err != nil {
		return c.JSON(h.failureEnvelope(c, err))
	}

	return c.JSON(Envelope{Success: true, Users: users})
}

// Conversation returns the exchange with the user in the path and marks
// their messages as seen.
func (h *MessageHTTPHandler) Conversation(c *fiber.Ctx) error {
	user, ok := authhttp.UserFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(Envelope{Success: false, Message: "No token provided"})
	}

	otherID := c.Params("id")
	messages, err := h.usecase.Conversation(c.Context(), user.ID, otherID)
	if err != nil {
		return c.JSON(h.failureEnvelope(c, err))
	}

	return c.JSON(Envelope{Success: true, Messages: messages})
}

// MarkSeen marks a single message as seen.
func (h *MessageHTTPHandler) MarkSeen(c *fiber.Ctx) error {
	if _, ok := authhttp.UserFromContext(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(Envelope{Success: false, Message: "No token provided"})
	}

	if err := h.usecase.MarkMessageSeen(c.Context(), c.Params("id")); err != nil {
		return c.JSON(h.failureEnvelope(c, err))
	}

	return c.JSON(Envelope{Success: true})
}

// SendMessage stores and delivers a message to the user in the path.
func (h *MessageHTTPHandler) SendMessage(c *fiber.Ctx) error {
	user, ok := authhttp.UserFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(Envelope{Success: false, Message: "No token provided"})
	}

	var req usecase.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(Envelope{Success: false, Message: "Invalid request body"})
	}

	message, err := h.usecase.SendMessage(c.Context(), user.ID, c.Params("id"), req)
	if err != nil {
		return c.JSON(h.failureEnvelope(c, err))
	}

	return c.JSON(Envelope{Success: true, NewMessage: message})
}

// failureEnvelope flattens typed usecase errors into the envelope.
func (h *MessageHTTPHandler) failureEnvelope(c *fiber.Ctx, err error) Envelope {
	switch {
	case errors.Is(err, usecase.ErrEmptyMessage):
		return Envelope{Success: false, Message: "Message has no text or image"}
	case errors.Is(err, usecase.ErrSelfConversation):
		return Envelope{Success: false, Message: "Cannot message yourself"}
	case errors.Is(err, usecase.ErrUserNotFound):
		return Envelope{Success: false, Message: "User not found"}
	case errors.Is(err, usecase.ErrMessageNotFound):
		return Envelope{Success: false, Message: "Message not found"}
	case errors.Is(err, usecase.ErrUploadFailed):
		return Envelope{Success: false, Message: "Image upload failed"}
	default:
		h.log.WithContext(c.UserContext()).Error("message request failed: ", err)
		return Envelope{Success: false, Message: "Something went wrong"}
	}
}
