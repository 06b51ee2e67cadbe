package storefront

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthSource struct {
	accounts map[string]*User
	current  *User
	meErr    error
}

func newFakeAuthSource() *fakeAuthSource {
	return &fakeAuthSource{accounts: make(map[string]*User)}
}

func (f *fakeAuthSource) Login(_ context.Context, email, password string) error {
	user, ok := f.accounts[email]
	if !ok || password != "secret123" {
		return &APIError{StatusCode: http.StatusUnauthorized, Code: "ERR_INVALID_CREDENTIALS"}
	}
	f.current = user
	return nil
}

func (f *fakeAuthSource) Register(_ context.Context, email, _, name string) error {
	if _, taken := f.accounts[email]; taken {
		return &APIError{StatusCode: http.StatusConflict, Code: "ERR_EMAIL_TAKEN"}
	}
	user := &User{ID: uuid.New(), Email: email, Name: name, Role: "CUSTOMER"}
	f.accounts[email] = user
	f.current = user
	return nil
}

func (f *fakeAuthSource) Logout(context.Context) error {
	f.current = nil
	return nil
}

func (f *fakeAuthSource) Me(context.Context) (*User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	if f.current == nil {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Code: "ERR_UNAUTHORIZED"}
	}
	u := *f.current
	return &u, nil
}

func TestSessionContainer_Lifecycle(t *testing.T) {
	ctx := context.Background()
	auth := newFakeAuthSource()
	tee := product("Tee", "15.00", "")
	cart := NewCartContainer(newMemoryCartSource(tee))
	s := NewSessionContainer(auth, cart)

	require.NoError(t, s.Refresh(ctx))
	assert.False(t, s.LoggedIn())
	assert.Nil(t, s.User())

	require.NoError(t, s.Register(ctx, "ann@shop.test", "secret123", "Ann"))
	require.True(t, s.LoggedIn())
	assert.Equal(t, "Ann", s.User().Name)
	assert.False(t, s.IsAdmin())

	require.NoError(t, cart.Add(ctx, tee.ID, 1))
	require.True(t, cart.Loaded())

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.LoggedIn())
	assert.False(t, cart.Loaded())
	assert.Equal(t, 0, cart.TotalItems())

	require.NoError(t, s.Login(ctx, "ann@shop.test", "secret123"))
	assert.Equal(t, "ann@shop.test", s.User().Email)
}

func TestSessionContainer_FailedLoginStaysSignedOut(t *testing.T) {
	ctx := context.Background()
	s := NewSessionContainer(newFakeAuthSource(), nil)

	err := s.Login(ctx, "nobody@shop.test", "secret123")
	assert.True(t, HasCode(err, "ERR_INVALID_CREDENTIALS"))
	assert.False(t, s.LoggedIn())
}

func TestSessionContainer_SwitchingUserResetsCart(t *testing.T) {
	ctx := context.Background()
	auth := newFakeAuthSource()
	tee := product("Tee", "15.00", "")
	cart := NewCartContainer(newMemoryCartSource(tee))
	s := NewSessionContainer(auth, cart)

	require.NoError(t, s.Register(ctx, "a@shop.test", "secret123", "A"))
	require.NoError(t, s.Register(ctx, "b@shop.test", "secret123", "B"))
	require.NoError(t, s.Login(ctx, "a@shop.test", "secret123"))
	require.NoError(t, cart.Refresh(ctx))

	require.NoError(t, s.Refresh(ctx))
	assert.True(t, cart.Loaded(), "same user keeps the cart")

	require.NoError(t, s.Login(ctx, "b@shop.test", "secret123"))
	assert.False(t, cart.Loaded())
}

func TestSessionContainer_RefreshErrorKeepsUser(t *testing.T) {
	ctx := context.Background()
	auth := newFakeAuthSource()
	s := NewSessionContainer(auth, nil)
	require.NoError(t, s.Register(ctx, "admin@shop.test", "secret123", "Admin"))
	auth.current.Role = "ADMIN"
	require.NoError(t, s.Refresh(ctx))
	require.True(t, s.IsAdmin())

	auth.meErr = errors.New("connection refused")
	assert.EqualError(t, s.Refresh(ctx), "connection refused")
	assert.True(t, s.IsAdmin())
}

func TestUser_IsAdmin(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.IsAdmin())
	assert.True(t, (&User{Role: "ADMIN"}).IsAdmin())
}
