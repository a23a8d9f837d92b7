package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wstorey/web615-lab9/internal/auth"
	"github.com/wstorey/web615-lab9/internal/models"
	"github.com/wstorey/web615-lab9/internal/storage"
)

func setupAuthService(t *testing.T) (*auth.Service, storage.Store) {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })

	service := auth.NewService(store, bcrypt.MinCost, time.Hour, 30*24*time.Hour)
	return service, store
}

func TestRegisterHashesPassword(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, "a@x.com", "test1234")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEqual(t, "test1234", user.PasswordHash, "password must not be stored in plaintext")
	assert.True(t, service.CheckPassword(user.PasswordHash, "test1234"))
	assert.False(t, service.CheckPassword(user.PasswordHash, "wrong"))
}

func TestRegisterValidation(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@x.com", "")
	var errs models.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"can't be blank"}, errs["password"])

	_, err = service.Register(ctx, "a@x.com", "abc")
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs["password"][0], "too short")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@x.com", "test1234")
	require.NoError(t, err)

	_, err = service.Register(ctx, "A@x.com", "test1234")
	var errs models.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"has already been taken"}, errs["email"])
}

func TestLoginEstablishesSession(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@x.com", "test1234")
	require.NoError(t, err)

	user, err := service.Login(ctx, "a@x.com", "test1234")
	require.NoError(t, err)

	assert.NotEmpty(t, user.SessionToken)
	assert.NotEmpty(t, user.RememberToken)
	require.NotNil(t, user.SessionExpiresAt)
	assert.True(t, user.SessionExpiresAt.After(time.Now()))
	assert.Equal(t, 1, user.SignInCount)
	assert.NotNil(t, user.CurrentSignInAt)

	// Second login rotates the token and bumps the counter.
	again, err := service.Login(ctx, "a@x.com", "test1234")
	require.NoError(t, err)
	assert.NotEqual(t, user.SessionToken, again.SessionToken)
	assert.Equal(t, 2, again.SignInCount)
	assert.NotNil(t, again.LastSignInAt)
}

func TestLoginInvalidCredentials(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@x.com", "test1234")
	require.NoError(t, err)

	_, err = service.Login(ctx, "a@x.com", "nope1234")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = service.Login(ctx, "nobody@x.com", "test1234")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthenticate(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@x.com", "test1234")
	require.NoError(t, err)
	user, err := service.Login(ctx, "a@x.com", "test1234")
	require.NoError(t, err)

	found, err := service.Authenticate(ctx, user.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.NotNil(t, found.LastSeenAt)

	_, err = service.Authenticate(ctx, "")
	assert.ErrorIs(t, err, auth.ErrInvalidSession)

	_, err = service.Authenticate(ctx, "unknown-token")
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	service, store := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@x.com", "test1234")
	require.NoError(t, err)
	user, err := service.Login(ctx, "a@x.com", "test1234")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	user.SessionExpiresAt = &expired
	require.NoError(t, store.UpdateUser(ctx, user))

	_, err = service.Authenticate(ctx, user.SessionToken)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestRefreshFromRememberToken(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@x.com", "test1234")
	require.NoError(t, err)
	user, err := service.Login(ctx, "a@x.com", "test1234")
	require.NoError(t, err)

	refreshed, err := service.Refresh(ctx, user.RememberToken)
	require.NoError(t, err)
	assert.NotEqual(t, user.SessionToken, refreshed.SessionToken)

	_, err = service.Authenticate(ctx, refreshed.SessionToken)
	assert.NoError(t, err)
}

func TestLogoutClearsSession(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@x.com", "test1234")
	require.NoError(t, err)
	user, err := service.Login(ctx, "a@x.com", "test1234")
	require.NoError(t, err)

	require.NoError(t, service.Logout(ctx, user.SessionToken))

	_, err = service.Authenticate(ctx, user.SessionToken)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)

	// Logging out an already-dead token is a no-op.
	assert.NoError(t, service.Logout(ctx, user.SessionToken))
}
