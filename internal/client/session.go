package client

import (
	"context"
	"errors"
	"sync"

	"quickchat/internal/auth/domain/model"
	"quickchat/internal/shared/logger"
)

// LoginMode selects which endpoint Login hits.
type LoginMode string

const (
	ModeSignup LoginMode = "signup"
	ModeLogin  LoginMode = "login"
)

// Session is the client-side authentication state: the current user, the
// durable token, and the presence socket. All methods are safe for
// concurrent use.
type Session struct {
	api    *APIClient
	tokens TokenStore
	socket *SocketClient
	log    logger.Logger

	mu   sync.Mutex
	user *model.User
}

// NewSession assembles a session against the given backend. A nil store
// falls back to the per-user config file store.
func NewSession(baseURL string, tokens TokenStore, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.NewLogger()
	}
	if tokens == nil {
		var err error
		tokens, err = NewFileTokenStore()
		if err != nil {
			return nil, err
		}
	}
	return &Session{
		api:    NewAPIClient(baseURL),
		tokens: tokens,
		socket: NewSocketClient(baseURL, log),
		log:    log.WithComponent("session"),
	}, nil
}

// CheckAuth restores a session from the stored token. On success the user
// is cached and the presence socket connects. A missing or rejected token
// leaves the session unauthenticated without error (the caller simply has
// to log in); transport failures are returned.
func (s *Session) CheckAuth(ctx context.Context) error {
	token, err := s.tokens.Load()
	if errors.Is(err, ErrNoToken) {
		return nil
	}
	if err != nil {
		return err
	}

	s.api.SetToken(token)
	user, err := s.api.Check(ctx)
	if errors.Is(err, ErrUnauthenticated) {
		s.log.Infof("stored token rejected, clearing session")
		s.api.SetToken("")
		return s.tokens.Clear()
	}
	if err != nil {
		return err
	}

	s.setUser(user)
	s.connectSocket(user.ID)
	return nil
}

// Login authenticates (or signs up, per mode), persists the token, and
// connects the presence socket.
func (s *Session) Login(ctx context.Context, mode LoginMode, creds Credentials) (*model.User, error) {
	var (
		user  *model.User
		token string
		err   error
	)
	switch mode {
	case ModeSignup:
		user, token, err = s.api.Signup(ctx, creds)
	default:
		user, token, err = s.api.Login(ctx, creds)
	}
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Save(token); err != nil {
		s.log.Warnf("token not persisted: %v", err)
	}
	s.api.SetToken(token)
	s.setUser(user)
	s.connectSocket(user.ID)
	return user, nil
}

// Logout tears down the session: token cleared, socket closed, user
// dropped. Calling it while logged out is a no-op.
func (s *Session) Logout() error {
	s.mu.Lock()
	loggedIn := s.user != nil
	s.user = nil
	s.mu.Unlock()

	if !loggedIn {
		return nil
	}

	s.socket.Disconnect()
	s.api.SetToken("")
	return s.tokens.Clear()
}

// UpdateProfile applies a partial profile update. The token is re-read
// from the durable store so a session restored elsewhere stays valid.
func (s *Session) UpdateProfile(ctx context.Context, fields ProfileFields) (*model.User, error) {
	token, err := s.tokens.Load()
	if err != nil {
		return nil, err
	}

	user, err := s.api.UpdateProfile(ctx, token, fields)
	if err != nil {
		return nil, err
	}
	s.setUser(user)
	return user, nil
}

// User returns the current authenticated user, or nil.
func (s *Session) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// OnlineUsers returns the latest presence set from the socket.
func (s *Session) OnlineUsers() []string { return s.socket.OnlineUsers() }

// Socket exposes the underlying presence client (for event callbacks).
func (s *Session) Socket() *SocketClient { return s.socket }

func (s *Session) setUser(user *model.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

func (s *Session) connectSocket(userID string) {
	if err := s.socket.Connect(userID); err != nil {
		s.log.Warnf("presence socket unavailable: %v", err)
	}
}
