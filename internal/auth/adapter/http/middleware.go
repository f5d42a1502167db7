package http

import (
	"strings"
	"time"

	"quickchat/internal/auth/domain/model"
	"quickchat/internal/auth/usecase"
	"quickchat/internal/shared/contextkeys"
	"quickchat/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase usecase.AuthUsecaseInterface
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface) *AuthMiddleware {
	return &AuthMiddleware{usecase: uc}
}

// CORS middleware for browser clients
func (m *AuthMiddleware) CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,token",
		MaxAge:       86400,
	})
}

// RateLimiter creates rate limiting middleware for auth endpoints
func (m *AuthMiddleware) RateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               30,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(Envelope{
				Success: false,
				Message: "Too many requests. Please try again later.",
			})
		},
	})
}

// RequestID middleware
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     "X-Request-ID",
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// Protect returns middleware that requires authentication. Unlike the
// business handlers, the gate speaks transport status codes: 401 for a
// missing or bad token, 404 when the token's user no longer exists. On
// success the resolved user is attached to the request context.
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := m.extractToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(Envelope{
				Success: false,
				Message: "No token provided",
			})
		}

		claims, err := m.usecase.ValidateToken(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(Envelope{
				Success: false,
				Message: "Not authorized, token failed",
			})
		}

		user, err := m.usecase.GetUserByID(c.Context(), claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(Envelope{
				Success: false,
				Message: "User not found",
			})
		}

		ctx := utils.WithUserID(c.UserContext(), user.ID)
		ctx = utils.WithUserEmail(ctx, user.Email)
		c.SetUserContext(ctx)
		c.Locals(string(contextkeys.UserKey), user)

		return c.Next()
	}
}

// extractToken extracts the token from the Authorization header, falling
// back to the raw token header and finally the token query parameter
// (websocket upgrades cannot always set headers).
func (m *AuthMiddleware) extractToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if token := c.Get("token"); token != "" {
		return token
	}

	return c.Query("token")
}

// UserFromContext returns the user attached by Protect.
func UserFromContext(c *fiber.Ctx) (*model.User, bool) {
	user, ok := c.Locals(string(contextkeys.UserKey)).(*model.User)
	return user, ok
}
