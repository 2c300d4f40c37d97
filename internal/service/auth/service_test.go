package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/models"
	"github.com/nkiryanov/authd/internal/repository/memory"
	"github.com/nkiryanov/authd/internal/token"
)

func TestAuthService(t *testing.T) {
	t.Parallel()

	// Build a service over in-memory storage with one registered user
	// Returns the codec and storage too so tests can mint tokens and
	// inspect records directly
	newService := func(t *testing.T, codecCfg token.Config) (*AuthService, *token.Codec, *memory.Storage, models.User) {
		t.Helper()

		if codecCfg.SecretKey == "" {
			codecCfg.SecretKey = "test-secret"
		}
		codec, err := token.New(codecCfg)
		require.NoError(t, err)

		storage := memory.NewStorage()
		user, err := storage.Users().CreateUser(t.Context(), "nk", "hashed:StrongEnoughPassword", models.RoleUser)
		require.NoError(t, err)

		s, err := NewService(Config{Hasher: fakeHasher{}}, codec, storage)
		require.NoError(t, err)

		return s, codec, storage, user
	}

	t.Run("new service validates arguments", func(t *testing.T) {
		codec, err := token.New(token.Config{SecretKey: "test-secret"})
		require.NoError(t, err)

		_, err = NewService(Config{}, nil, memory.NewStorage())
		require.Error(t, err, "nil codec should be rejected")

		_, err = NewService(Config{}, codec, nil)
		require.Error(t, err, "nil storage should be rejected")
	})

	t.Run("authenticate maps user to principal", func(t *testing.T) {
		s, _, _, user := newService(t, token.Config{})

		principal, err := s.Authenticate(t.Context(), "nk", "StrongEnoughPassword")
		require.NoError(t, err)
		require.Equal(t, models.Principal{UserID: user.ID, Authority: models.RoleUser}, principal)
	})

	t.Run("login issues pair and persists refresh", func(t *testing.T) {
		s, codec, storage, user := newService(t, token.Config{})

		pair, err := s.Login(t.Context(), "nk", "StrongEnoughPassword")
		require.NoError(t, err)
		require.NotEmpty(t, pair.Access.Value)
		require.NotEmpty(t, pair.Refresh.Value)
		require.NotEqual(t, pair.Access.Value, pair.Refresh.Value)

		claims, err := codec.Parse(pair.Access.Value)
		require.NoError(t, err)
		require.Equal(t, token.TypeAccess, claims.TokenType)

		record, err := storage.RefreshTokens().GetByToken(t.Context(), pair.Refresh.Value)
		require.NoError(t, err)
		require.Equal(t, user.ID, record.UserID)
	})

	t.Run("login with bad credentials fails", func(t *testing.T) {
		s, _, _, _ := newService(t, token.Config{})

		_, err := s.Login(t.Context(), "nk", "WrongPassword")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

		_, err = s.Login(t.Context(), "nobody", "StrongEnoughPassword")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("second login replaces refresh record", func(t *testing.T) {
		s, _, storage, _ := newService(t, token.Config{})

		first, err := s.Login(t.Context(), "nk", "StrongEnoughPassword")
		require.NoError(t, err)
		second, err := s.Login(t.Context(), "nk", "StrongEnoughPassword")
		require.NoError(t, err)

		_, err = storage.RefreshTokens().GetByToken(t.Context(), first.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound, "previous refresh token should be gone")

		_, err = storage.RefreshTokens().GetByToken(t.Context(), second.Refresh.Value)
		require.NoError(t, err)
	})

	t.Run("validate access returns principal", func(t *testing.T) {
		s, _, _, user := newService(t, token.Config{})

		pair, err := s.Login(t.Context(), "nk", "StrongEnoughPassword")
		require.NoError(t, err)

		principal, err := s.ValidateAccess(t.Context(), pair.Access.Value)
		require.NoError(t, err)
		require.Equal(t, models.Principal{UserID: user.ID, Authority: models.RoleUser}, principal)
	})

	t.Run("validate access rejects garbage", func(t *testing.T) {
		s, _, _, _ := newService(t, token.Config{})

		_, err := s.ValidateAccess(t.Context(), "not.a.token")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("validate access rejects refresh token", func(t *testing.T) {
		s, _, _, _ := newService(t, token.Config{})

		pair, err := s.Login(t.Context(), "nk", "StrongEnoughPassword")
		require.NoError(t, err)

		_, err = s.ValidateAccess(t.Context(), pair.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("validate access reports expiry distinctly", func(t *testing.T) {
		// Negative TTL mints tokens that are already expired
		s, codec, _, user := newService(t, token.Config{AccessTTL: -time.Minute})

		expired, err := codec.IssueAccess(user)
		require.NoError(t, err)

		_, err = s.ValidateAccess(t.Context(), expired.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("validate access rejects token of vanished user", func(t *testing.T) {
		s, codec, _, _ := newService(t, token.Config{})

		ghost, err := codec.IssueAccess(models.User{ID: 999, Username: "ghost", Role: models.RoleUser})
		require.NoError(t, err)

		_, err = s.ValidateAccess(t.Context(), ghost.Value)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("reissue rotates the pair", func(t *testing.T) {
		s, _, storage, _ := newService(t, token.Config{})

		first, err := s.Login(t.Context(), "nk", "StrongEnoughPassword")
		require.NoError(t, err)

		second, err := s.Reissue(t.Context(), first.Refresh.Value)
		require.NoError(t, err)
		require.NotEqual(t, first.Access.Value, second.Access.Value, "access token should change after reissue")
		require.NotEqual(t, first.Refresh.Value, second.Refresh.Value, "refresh token should change after reissue")

		_, err = storage.RefreshTokens().GetByToken(t.Context(), first.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound, "presented refresh token should be rotated away")
	})

	t.Run("reissue twice with same token fails", func(t *testing.T) {
		s, _, _, _ := newService(t, token.Config{})

		first, err := s.Login(t.Context(), "nk", "StrongEnoughPassword")
		require.NoError(t, err)

		_, err = s.Reissue(t.Context(), first.Refresh.Value)
		require.NoError(t, err)

		_, err = s.Reissue(t.Context(), first.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("reissue rejects garbage token", func(t *testing.T) {
		s, _, _, _ := newService(t, token.Config{})

		_, err := s.Reissue(t.Context(), "not.a.token")
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("reissue rejects access token", func(t *testing.T) {
		s, _, _, _ := newService(t, token.Config{})

		pair, err := s.Login(t.Context(), "nk", "StrongEnoughPassword")
		require.NoError(t, err)

		_, err = s.Reissue(t.Context(), pair.Access.Value)
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("reissue rejects expired refresh token", func(t *testing.T) {
		s, codec, _, user := newService(t, token.Config{RefreshTTL: -time.Minute})

		expired, err := codec.IssueRefresh(user)
		require.NoError(t, err)

		_, err = s.Reissue(t.Context(), expired.Value)
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("reissue rejects unregistered token", func(t *testing.T) {
		s, codec, _, user := newService(t, token.Config{})

		// Valid JWT that was never persisted
		unregistered, err := codec.IssueRefresh(user)
		require.NoError(t, err)

		_, err = s.Reissue(t.Context(), unregistered.Value)
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("reissue rejects token of vanished user", func(t *testing.T) {
		s, codec, storage, _ := newService(t, token.Config{})

		// Registered record whose owner is absent from the directory
		ghost := models.User{ID: 999, Username: "ghost", Role: models.RoleUser}
		issued, err := codec.IssueRefresh(ghost)
		require.NoError(t, err)

		now := time.Now().Truncate(time.Second)
		err = storage.RefreshTokens().Save(t.Context(), models.RefreshToken{
			UserID:    ghost.ID,
			Token:     issued.Value,
			CreatedAt: now,
			ExpiresAt: now.Add(time.Hour),
		})
		require.NoError(t, err)

		_, err = s.Reissue(t.Context(), issued.Value)
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("reissue sweeps expired record", func(t *testing.T) {
		s, codec, storage, user := newService(t, token.Config{})

		issued, err := codec.IssueRefresh(user)
		require.NoError(t, err)

		// Register the record with expiry pinned exactly at "now":
		// the boundary is inclusive so the record is already dead
		frozen := time.Now().Truncate(time.Second)
		s.now = func() time.Time { return frozen }

		err = storage.RefreshTokens().Save(t.Context(), models.RefreshToken{
			UserID:    user.ID,
			Token:     issued.Value,
			CreatedAt: frozen.Add(-time.Hour),
			ExpiresAt: frozen,
		})
		require.NoError(t, err)

		_, err = s.Reissue(t.Context(), issued.Value)
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

		_, err = storage.RefreshTokens().GetByToken(t.Context(), issued.Value)
		require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound, "expired record should be swept on presentation")
	})

	t.Run("reissue accepts record alive one second past now", func(t *testing.T) {
		s, codec, storage, user := newService(t, token.Config{})

		issued, err := codec.IssueRefresh(user)
		require.NoError(t, err)

		frozen := time.Now().Truncate(time.Second)
		s.now = func() time.Time { return frozen }

		err = storage.RefreshTokens().Save(t.Context(), models.RefreshToken{
			UserID:    user.ID,
			Token:     issued.Value,
			CreatedAt: frozen.Add(-time.Hour),
			ExpiresAt: frozen.Add(time.Second),
		})
		require.NoError(t, err)

		_, err = s.Reissue(t.Context(), issued.Value)
		require.NoError(t, err)
	})

	t.Run("logout kills the session", func(t *testing.T) {
		s, _, _, user := newService(t, token.Config{})

		pair, err := s.Login(t.Context(), "nk", "StrongEnoughPassword")
		require.NoError(t, err)

		err = s.Logout(t.Context(), user.ID)
		require.NoError(t, err)

		_, err = s.Reissue(t.Context(), pair.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

		// Logout is idempotent
		require.NoError(t, s.Logout(t.Context(), user.ID))
	})
}
