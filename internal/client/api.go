package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"quickchat/internal/auth/domain/model"
)

// API errors. ErrServerMessage wraps the human-readable message from a
// success=false envelope.
var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrServerMessage   = errors.New("server rejected request")
)

// Envelope mirrors the server's uniform response shape.
type Envelope struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message"`
	UserData *model.User `json:"userData"`
	Token    string      `json:"token"`
}

// Credentials is the payload for the signup/login endpoints. Bio and
// FullName are only used by signup.
type Credentials struct {
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio,omitempty"`
}

// ProfileFields is the payload for the update-profile endpoint.
type ProfileFields struct {
	ProfilePic string `json:"profilePic,omitempty"`
	Bio        string `json:"bio,omitempty"`
	FullName   string `json:"fullName,omitempty"`
}

// APIClient speaks the REST surface. A default auth header, once set,
// is attached to every outgoing request.
type APIClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewAPIClient creates a client for the given backend base URL.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetToken sets the default Authorization bearer token for all requests.
// An empty token clears it.
func (c *APIClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// BaseURL returns the configured backend base URL.
func (c *APIClient) BaseURL() string { return c.baseURL }

// Signup creates an account. Returns the user and token on success.
func (c *APIClient) Signup(ctx context.Context, creds Credentials) (*model.User, string, error) {
	return c.authRequest(ctx, http.MethodPost, "/api/auth/signup", creds, "")
}

// Login authenticates. Returns the user and token on success.
func (c *APIClient) Login(ctx context.Context, creds Credentials) (*model.User, string, error) {
	return c.authRequest(ctx, http.MethodPost, "/api/auth/login", creds, "")
}

// Check validates the current session and returns the user.
func (c *APIClient) Check(ctx context.Context) (*model.User, error) {
	user, _, err := c.authRequest(ctx, http.MethodGet, "/api/auth/check", nil, "")
	return user, err
}

// UpdateProfile applies a partial profile update using an explicit token,
// which overrides the default header for this one request.
func (c *APIClient) UpdateProfile(ctx context.Context, token string, fields ProfileFields) (*model.User, error) {
	user, _, err := c.authRequest(ctx, http.MethodPut, "/api/auth/update-profile", fields, token)
	return user, err
}

// authRequest performs one request and decodes the envelope. A
// success=false envelope surfaces the server message; 401/404 from the
// middleware gate map to ErrUnauthenticated.
func (c *APIClient) authRequest(ctx context.Context, method, path string, body interface{}, tokenOverride string) (*model.User, string, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, "", err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token := tokenOverride
	if token == "" {
		c.mu.RLock()
		token = c.token
		c.mu.RUnlock()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, "", err
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", fmt.Errorf("malformed response (%d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("%w: %s", ErrUnauthenticated, env.Message)
	}
	if !env.Success {
		return nil, "", fmt.Errorf("%w: %s", ErrServerMessage, env.Message)
	}

	return env.UserData, env.Token, nil
}
