package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-portal/internal/auth"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "alice", "alice@example.com")

	before, err := f.stores.Users.GetByID(ctx, registered.ID)
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		user, pair, err := f.auth.Login(ctx, "alice", "secret123")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.Empty(t, user.PasswordHash)

		id, err := f.tokens.Parse(pair.Access, auth.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, id)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, "alice", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, "nobody", "secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("email is not the login handle", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, "alice@example.com", "secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, "", "")
		assert.ErrorIs(t, err, ErrRequired)
	})

	after, err := f.stores.Users.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.Equal(t, before.IsActive, after.IsActive)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt), "login never mutates the user")
}

func TestLoginSharedName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "sam", "sam1@example.com")

	second, _, err := f.users.Register(ctx, RegisterInput{
		Name: "sam", Email: "sam2@example.com", Password: "another1", ConfirmPassword: "another1",
	})
	require.NoError(t, err)

	user, _, err := f.auth.Login(ctx, "sam", "another1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, user.ID)
}

func TestLoginDisabledAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice", "alice@example.com")
	require.NoError(t, f.stores.Users.SetActive(ctx, user.ID, false))

	_, _, err := f.auth.Login(ctx, "alice", "secret123")
	assert.ErrorIs(t, err, ErrAccountDisabled)

	_, _, err = f.auth.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "bad password is reported before disabled state")
}

func TestAuthenticateAndRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "alice", "alice@example.com")

	_, pair, err := f.auth.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	user, err := f.auth.Authenticate(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = f.auth.Authenticate(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := f.auth.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	user, err = f.auth.Authenticate(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = f.auth.Refresh(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, f.stores.Users.SetActive(ctx, registered.ID, false))
	_, err = f.auth.Authenticate(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrAccountDisabled)
	_, err = f.auth.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	f := newFixture(t)

	access, err := f.tokens.IssueAccess(4242)
	require.NoError(t, err)

	_, err = f.auth.Authenticate(context.Background(), access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice", "alice@example.com")
	_, pair, err := f.auth.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	tests := []struct {
		name    string
		current string
		next    string
		want    error
	}{
		{"wrong current", "nope-nope", "brandnew1", ErrWrongCurrentPassword},
		{"too short", "secret123", "abc", ErrPasswordTooShort},
		{"too long", "secret123", strings.Repeat("a", 80), ErrPasswordTooLong},
		{"missing new", "secret123", "", ErrRequired},
		{"missing current", "", "brandnew1", ErrRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.auth.ChangePassword(ctx, user.ID, tt.current, tt.next)
			assert.ErrorIs(t, err, tt.want)
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr), "input failures are validation errors")
		})
	}

	require.NoError(t, f.auth.ChangePassword(ctx, user.ID, "secret123", "brandnew1"))

	_, _, err = f.auth.Login(ctx, "alice", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.auth.Login(ctx, "alice", "brandnew1")
	assert.NoError(t, err)

	// tokens issued before the change keep working until they expire
	_, err = f.auth.Authenticate(ctx, pair.Access)
	assert.NoError(t, err)
}

func TestRefreshExpired(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice", "alice@example.com")

	short, err := auth.NewTokens(auth.Config{Secret: "test-secret", RefreshTTL: time.Nanosecond})
	require.NoError(t, err)
	pair, err := short.IssuePair(user.ID)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, err = f.auth.Refresh(context.Background(), pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
