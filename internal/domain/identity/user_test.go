package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("normalizes email and hashes password", func(t *testing.T) {
		u, err := NewCustomer("  Alice@Example.COM ", "secret123", " Alice ")
		require.NoError(t, err)

		assert.Equal(t, "alice@example.com", u.Email)
		assert.Equal(t, "Alice", u.Name)
		assert.Equal(t, RoleCustomer, u.Role)
		assert.NotEqual(t, "secret123", u.PasswordHash)
		assert.True(t, u.VerifyPassword("secret123"))
		assert.False(t, u.VerifyPassword("wrong"))
		require.Len(t, u.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeUserRegistered, u.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewCustomer("not-an-email", "secret123", "")
		assert.Error(t, err)

		_, err = NewCustomer("a@b.com", "123", "")
		assert.Error(t, err)

		_, err = NewUser("a@b.com", "secret123", "", Role("ROOT"))
		assert.Error(t, err)
	})
}

func TestUser_Mutators(t *testing.T) {
	u, err := NewCustomer("bob@example.com", "secret123", "")
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", u.DisplayName())

	require.NoError(t, u.SetName("Bob"))
	assert.Equal(t, "Bob", u.DisplayName())

	require.NoError(t, u.SetEmail("BOB2@example.com"))
	assert.Equal(t, "bob2@example.com", u.Email)
	assert.Error(t, u.SetEmail("broken"))

	require.NoError(t, u.SetRole(RoleAdmin))
	assert.True(t, u.IsAdmin())
	assert.Error(t, u.SetRole(Role("")))

	require.NoError(t, u.SetPassword("another1"))
	assert.True(t, u.VerifyPassword("another1"))
}
