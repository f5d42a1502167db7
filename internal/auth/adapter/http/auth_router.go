package http

import (
	"errors"

	"quickchat/internal/auth/domain/model"
	"quickchat/internal/auth/usecase"
	"quickchat/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform response shape for all auth endpoints. Business
// failures set Success=false with a message and keep a 200 status; only the
// middleware gate uses transport error codes.
type Envelope struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message,omitempty"`
	UserData *model.User `json:"userData,omitempty"`
	Token    string      `json:"token,omitempty"`
}

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase usecase.AuthUsecaseInterface
	log     logger.Logger
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface, log logger.Logger) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		usecase: uc,
		log:     log.WithComponent("auth_http"),
	}
}

// SetupAuthRoutesWithMiddleware sets up authentication routes with middleware
func (h *AuthHTTPHandler) SetupAuthRoutesWithMiddleware(router fiber.Router, middleware *AuthMiddleware) {
	router.Post("/signup", h.Signup)
	router.Post("/login", h.Login)

	protected := router.Group("/", middleware.Protect())
	protected.Get("/check", h.CheckAuth)
	protected.Put("/update-profile", h.UpdateProfile)
}

// Signup handles account creation
func (h *AuthHTTPHandler) Signup(c *fiber.Ctx) error {
	var req usecase.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(Envelope{Success: false, Message: "Invalid request body"})
	}

	user, token, err := h.usecase.Signup(c.Context(), req)
	if err != nil {
		return c.JSON(h.failureEnvelope(c, err))
	}

	return c.JSON(Envelope{
		Success:  true,
		UserData: user,
		Token:    token,
		Message:  "Account created successfully",
	})
}

// Login handles user login
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(Envelope{Success: false, Message: "Invalid request body"})
	}

	user, token, err := h.usecase.Login(c.Context(), req)
	if err != nil {
		return c.JSON(h.failureEnvelope(c, err))
	}

	return c.JSON(Envelope{
		Success:  true,
		UserData: user,
		Token:    token,
		Message:  "Login successful",
	})
}

// CheckAuth returns the user resolved by the Protect middleware.
func (h *AuthHTTPHandler) CheckAuth(c *fiber.Ctx) error {
	user, ok := UserFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(Envelope{
			Success: false,
			Message: "No token provided",
		})
	}

	return c.JSON(Envelope{Success: true, UserData: user})
}

// UpdateProfile applies a partial profile update for the authenticated user.
func (h *AuthHTTPHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := UserFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(Envelope{
			Success: false,
			Message: "No token provided",
		})
	}

	var req usecase.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(Envelope{Success: false, Message: "Invalid request body"})
	}

	updated, err := h.usecase.UpdateProfile(c.Context(), user.ID, req)
	if err != nil {
		return c.JSON(h.failureEnvelope(c, err))
	}

	return c.JSON(Envelope{Success: true, UserData: updated})
}

// failureEnvelope flattens typed usecase errors into the response envelope.
// Unexpected errors are logged and reported generically.
func (h *AuthHTTPHandler) failureEnvelope(c *fiber.Ctx, err error) Envelope {
	switch {
	case errors.Is(err, usecase.ErrMissingFields):
		return Envelope{Success: false, Message: "Missing Details"}
	case errors.Is(err, usecase.ErrInvalidEmailFormat):
		return Envelope{Success: false, Message: "Invalid email format"}
	case errors.Is(err, usecase.ErrEmailTaken):
		return Envelope{Success: false, Message: "Account already exists"}
	case errors.Is(err, usecase.ErrUserNotFound):
		return Envelope{Success: false, Message: "User not found"}
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return Envelope{Success: false, Message: "Invalid credentials"}
	case errors.Is(err, usecase.ErrUploadFailed):
		return Envelope{Success: false, Message: "Image upload failed"}
	default:
		h.log.WithContext(c.UserContext()).Error("auth request failed: ", err)
		return Envelope{Success: false, Message: "Something went wrong"}
	}
}
