package storefront

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// User is the signed-in account as reported by /auth/me
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

// IsAdmin reports whether the account holds the ADMIN role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "ADMIN"
}

// AuthSource performs the session calls of a SessionContainer
type AuthSource interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password, name string) error
	Logout(ctx context.Context) error
	// Me returns the current user. An unauthenticated caller gets an error
	// for which IsUnauthorized is true.
	Me(ctx context.Context) (*User, error)
}

// HTTPAuthSource is an AuthSource backed by the /auth endpoints. The session
// cookie lives in the client's cookie jar.
type HTTPAuthSource struct {
	client *Client
}

// NewHTTPAuthSource creates an auth source on the client
func NewHTTPAuthSource(client *Client) *HTTPAuthSource {
	return &HTTPAuthSource{client: client}
}

// Login signs in with email and password
func (s *HTTPAuthSource) Login(ctx context.Context, email, password string) error {
	return s.client.Do(ctx, http.MethodPost, "/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, nil)
}

// Register creates a customer account and signs it in
func (s *HTTPAuthSource) Register(ctx context.Context, email, password, name string) error {
	return s.client.Do(ctx, http.MethodPost, "/auth/register", map[string]any{
		"email":    email,
		"password": password,
		"name":     name,
	}, nil)
}

// Logout revokes the session and clears the cookie
func (s *HTTPAuthSource) Logout(ctx context.Context) error {
	return s.client.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the signed-in user
func (s *HTTPAuthSource) Me(ctx context.Context) (*User, error) {
	var user User
	if err := s.client.Do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

var _ AuthSource = (*HTTPAuthSource)(nil)

// SessionContainer mirrors the server's view of who is signed in. Login,
// Register and Logout call the server and then Refresh from /auth/me. When
// the session ends the linked cart container is reset.
type SessionContainer struct {
	source AuthSource
	cart   *CartContainer

	mu   sync.RWMutex
	user *User
}

// NewSessionContainer creates a signed-out container. cart may be nil.
func NewSessionContainer(source AuthSource, cart *CartContainer) *SessionContainer {
	return &SessionContainer{source: source, cart: cart}
}

// Refresh asks the server who is signed in. A 401 means signed out and is
// not an error.
func (s *SessionContainer) Refresh(ctx context.Context) error {
	user, err := s.source.Me(ctx)
	if err != nil {
		if IsUnauthorized(err) {
			s.setUser(nil)
			return nil
		}
		return err
	}
	s.setUser(user)
	return nil
}

// Login signs in and refreshes
func (s *SessionContainer) Login(ctx context.Context, email, password string) error {
	return s.mutate(ctx, func(ctx context.Context) error {
		return s.source.Login(ctx, email, password)
	})
}

// Register creates an account and refreshes
func (s *SessionContainer) Register(ctx context.Context, email, password, name string) error {
	return s.mutate(ctx, func(ctx context.Context) error {
		return s.source.Register(ctx, email, password, name)
	})
}

// Logout signs out and refreshes
func (s *SessionContainer) Logout(ctx context.Context) error {
	return s.mutate(ctx, s.source.Logout)
}

// User returns the signed-in user, or nil
func (s *SessionContainer) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// LoggedIn reports whether a user is signed in
func (s *SessionContainer) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsAdmin reports whether the signed-in user is an admin
func (s *SessionContainer) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.IsAdmin()
}

func (s *SessionContainer) mutate(ctx context.Context, op func(context.Context) error) error {
	opErr := op(ctx)
	refreshErr := s.Refresh(ctx)
	if opErr != nil {
		return opErr
	}
	return refreshErr
}

func (s *SessionContainer) setUser(user *User) {
	s.mu.Lock()
	previous := s.user
	s.user = user
	s.mu.Unlock()

	if s.cart == nil {
		return
	}
	if user == nil || (previous != nil && previous.ID != user.ID) {
		s.cart.Reset()
	}
}
