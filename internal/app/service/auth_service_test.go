package service

import (
	"context"
	"testing"
	"time"

	"github.com/safedine/safedine-backend/internal/app/model"
	"github.com/safedine/safedine-backend/internal/app/repository"
	"github.com/safedine/safedine-backend/internal/db"
	"github.com/safedine/safedine-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authTestSecret = "auth-service-test-secret"

func setupAuthServiceTest(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(userRepo, authTestSecret, 15*time.Minute, 7*24*time.Hour)
}

func TestAuthService_Register_Success(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, tokens, err := authService.Register("new@example.com", "password123", "New User")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, tokens)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "New User", user.DisplayName)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	claims, err := util.ValidateToken(tokens.AccessToken, authTestSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, _, err := authService.Register("dup@example.com", "password123", "First")
	require.NoError(t, err)

	user, tokens, err := authService.Register("dup@example.com", "password456", "Second")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.Nil(t, user)
	assert.Nil(t, tokens)
}

func TestAuthService_Login(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, _, err := authService.Register("login@example.com", "password123", "Login User")
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		user, tokens, err := authService.Login("login@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "login@example.com", user.Email)
		assert.NotEmpty(t, tokens.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		user, tokens, err := authService.Login("login@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, user)
		assert.Nil(t, tokens)
	})

	t.Run("unknown email", func(t *testing.T) {
		user, tokens, err := authService.Login("nobody@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, user)
		assert.Nil(t, tokens)
	})
}

func TestAuthService_Logout(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, tokens, err := authService.Register("logout@example.com", "password123", "Logout User")
	require.NoError(t, err)

	// without redis the blacklist degrades to a no-op, logout still succeeds
	err = authService.Logout(context.Background(), tokens.AccessToken)
	assert.NoError(t, err)

	// garbage tokens have nothing to revoke
	err = authService.Logout(context.Background(), "not-a-token")
	assert.NoError(t, err)
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService := setupAuthServiceTest(t)

	created, _, err := authService.Register("get@example.com", "password123", "Get User")
	require.NoError(t, err)

	user, err := authService.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, user.Email)

	user, err = authService.GetUserByID(99999)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, user)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService := setupAuthServiceTest(t)

	created, _, err := authService.Register("profile@example.com", "password123", "Old Name")
	require.NoError(t, err)

	user, err := authService.UpdateProfile(created.ID, "New Name")
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.DisplayName)

	// blank display name leaves the stored name alone
	user, err = authService.UpdateProfile(created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.DisplayName)
}
