package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/models"
	"github.com/nkiryanov/authd/internal/repository"
	"github.com/nkiryanov/authd/internal/token"
)

type Config struct {
	// Hasher used during credential verification
	// If not set than bcrypt hasher is used
	Hasher PasswordHasher
}

// AuthService owns the token lifecycle: credential authentication, pair
// issuance, refresh rotation and access validation. Every call is a
// complete transaction, no state survives between calls.
type AuthService struct {
	codec    *token.Codec
	verifier *CredentialVerifier

	users  repository.UserRepo
	tokens repository.RefreshTokenRepo

	// Clock for refresh record expiry checks, overridable in tests
	now func() time.Time
}

func NewService(cfg Config, codec *token.Codec, storage repository.Storage) (*AuthService, error) {
	if codec == nil {
		return nil, errors.New("token codec must not be nil")
	}
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	verifier, err := NewCredentialVerifier(cfg.Hasher, storage.Users())
	if err != nil {
		return nil, fmt.Errorf("error while creating credential verifier. Err: %w", err)
	}

	return &AuthService{
		codec:    codec,
		verifier: verifier,
		users:    storage.Users(),
		tokens:   storage.RefreshTokens(),
		now:      time.Now,
	}, nil
}

// Authenticate verifies credentials and maps the user to its principal.
// Every failure surfaces as apperrors.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username string, password string) (models.Principal, error) {
	user, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		return models.Principal{}, err
	}

	return models.Principal{UserID: user.ID, Authority: user.Role}, nil
}

// IssuePair always issues both tokens, each with its own configured TTL
func (s *AuthService) IssuePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	access, err := s.codec.IssueAccess(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := s.codec.IssueRefresh(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// PersistRefresh registers the refresh token value for the user. The store
// drops the user's previous record in the same write, so the old refresh
// token stops working the moment this returns.
func (s *AuthService) PersistRefresh(ctx context.Context, userID int64, refreshValue string) error {
	now := s.now().Truncate(time.Second)

	err := s.tokens.Save(ctx, models.RefreshToken{
		UserID:    userID,
		Token:     refreshValue,
		CreatedAt: now,
		ExpiresAt: now.Add(s.codec.RefreshTTL()),
	})
	if err != nil {
		return fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return nil
}

// Login runs the full authentication stage: verify credentials, issue the
// pair, persist the refresh token
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.TokenPair, error) {
	user, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.IssuePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while issuing token pair. Err: %w", err)
	}

	if err := s.PersistRefresh(ctx, user.ID, pair.Refresh.Value); err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

// Reissue exchanges a registered refresh token for a brand new pair.
// Checks run in a fixed order and each failure keeps its own kind:
// structurally bad, expired or wrongly typed token -> ErrInvalidRefreshToken;
// non numeric subject -> ErrInvalidTokenPayload; unregistered or expired
// record -> ErrInvalidRefreshToken; vanished user -> ErrUserNotFound.
func (s *AuthService) Reissue(ctx context.Context, refreshValue string) (models.TokenPair, error) {
	claims, err := s.codec.Parse(refreshValue)
	if err != nil || claims.TokenType != token.TypeRefresh {
		return models.TokenPair{}, apperrors.ErrInvalidRefreshToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return models.TokenPair{}, apperrors.ErrInvalidTokenPayload
	}

	record, err := s.tokens.GetByToken(ctx, refreshValue)
	switch {
	case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
		// Not registered: already rotated away or issued elsewhere
		return models.TokenPair{}, apperrors.ErrInvalidRefreshToken
	case err != nil:
		return models.TokenPair{}, fmt.Errorf("error while loading refresh token. Err: %w", err)
	}

	// Lazy expiry: records are only swept when somebody presents them.
	// The boundary is inclusive, a record expiring exactly now is dead.
	if !record.ExpiresAt.After(s.now()) {
		_ = s.tokens.DeleteByToken(ctx, refreshValue)
		return models.TokenPair{}, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.users.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.TokenPair{}, apperrors.ErrUserNotFound
	case err != nil:
		return models.TokenPair{}, fmt.Errorf("error while loading user. Err: %w", err)
	}

	pair, err := s.IssuePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while issuing token pair. Err: %w", err)
	}

	// Persisting the new refresh token deletes the presented one via the
	// store's one-record-per-user invariant
	if err := s.PersistRefresh(ctx, user.ID, pair.Refresh.Value); err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

// ValidateAccess checks a bearer access token and resolves its principal.
// Expiry keeps its own kind so clients can tell "renew and retry" from
// "token is garbage".
func (s *AuthService) ValidateAccess(ctx context.Context, accessValue string) (models.Principal, error) {
	claims, err := s.codec.Parse(accessValue)
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired):
		return models.Principal{}, apperrors.ErrTokenExpired
	case err != nil:
		return models.Principal{}, apperrors.ErrInvalidToken
	}

	if claims.TokenType != token.TypeAccess {
		return models.Principal{}, apperrors.ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return models.Principal{}, apperrors.ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.Principal{}, apperrors.ErrInvalidToken
	}

	return models.Principal{UserID: user.ID, Authority: user.Role}, nil
}

// Logout drops the user's refresh record so the session can't be renewed
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.tokens.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("error while deleting refresh token. Err: %w", err)
	}

	return nil
}
