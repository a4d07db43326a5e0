package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sherryli112/HatGiveMe/internal/config"
	"github.com/Sherryli112/HatGiveMe/internal/domain"
	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

func newAuthFixture(store *stubStore) *AuthService {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            4,
		},
	}
	return NewAuthService(cfg, &stubUserRepo{store: store})
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	store := newStubStore()
	svc := newAuthFixture(store)

	user, token, exp, err := svc.Register(context.Background(), "Buyer", "buyer@example.com", "hunter2-hunter2")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.True(t, user.Active)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	loggedIn, loginToken, _, err := svc.Login(context.Background(), "buyer@example.com", "hunter2-hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := svc.TokenManager().ParseToken(loginToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestRegisterForcesUserRole(t *testing.T) {
	store := newStubStore()
	svc := newAuthFixture(store)

	user, _, _, err := svc.Register(context.Background(), "Sneaky", "sneaky@example.com", "hunter2-hunter2")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newStubStore()
	store.addUser("Existing", "taken@example.com", domain.RoleUser, true)
	svc := newAuthFixture(store)

	_, _, _, err := svc.Register(context.Background(), "Dup", "taken@example.com", "hunter2-hunter2")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	store := newStubStore()
	svc := newAuthFixture(store)

	_, _, _, err := svc.Register(context.Background(), "Buyer", "buyer@example.com", "hunter2-hunter2")
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "buyer@example.com", "wrong-password")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	// Unknown accounts look exactly like bad passwords.
	_, _, _, err = svc.Login(context.Background(), "nobody@example.com", "hunter2-hunter2")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	store := newStubStore()
	svc := newAuthFixture(store)

	user, _, _, err := svc.Register(context.Background(), "Buyer", "buyer@example.com", "hunter2-hunter2")
	require.NoError(t, err)

	store.mu.Lock()
	store.users[user.ID].Active = false
	store.mu.Unlock()

	_, _, _, err = svc.Login(context.Background(), "buyer@example.com", "hunter2-hunter2")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestChangePassword(t *testing.T) {
	store := newStubStore()
	svc := newAuthFixture(store)

	user, _, _, err := svc.Register(context.Background(), "Buyer", "buyer@example.com", "old-password-1")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "wrong-password", "new-password-1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "old-password-1", "new-password-1"))

	_, _, _, err = svc.Login(context.Background(), "buyer@example.com", "old-password-1")
	require.Error(t, err)

	_, _, _, err = svc.Login(context.Background(), "buyer@example.com", "new-password-1")
	require.NoError(t, err)
}
