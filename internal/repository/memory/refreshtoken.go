package memory

import (
	"context"
	"sync"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/models"
)

// RefreshTokenRepo keeps refresh token records in two indices: by token
// value and by user id. Every write mutates both under one mutex, so the
// indices can never disagree about which record is current for a user.
type RefreshTokenRepo struct {
	mu      sync.RWMutex
	byToken map[string]models.RefreshToken
	byUser  map[int64]string // user id -> current token value
}

func NewRefreshTokenRepo() *RefreshTokenRepo {
	return &RefreshTokenRepo{
		byToken: make(map[string]models.RefreshToken),
		byUser:  make(map[int64]string),
	}
}

// Save replaces the user's previous record, if any, with the new one.
// Concurrent saves for the same user serialize here: last writer wins and
// the loser's token value is no longer present in either index.
func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byUser[token.UserID]; ok {
		delete(r.byToken, prev)
	}

	r.byToken[token.Token] = token
	r.byUser[token.UserID] = token.Token

	return nil
}

func (r *RefreshTokenRepo) GetByToken(ctx context.Context, tokenValue string) (models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.byToken[tokenValue]
	if !ok {
		return models.RefreshToken{}, apperrors.ErrRefreshTokenNotFound
	}

	return token, nil
}

func (r *RefreshTokenRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tokenValue, ok := r.byUser[userID]; ok {
		delete(r.byToken, tokenValue)
		delete(r.byUser, userID)
	}

	return nil
}

func (r *RefreshTokenRepo) DeleteByToken(ctx context.Context, tokenValue string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token, ok := r.byToken[tokenValue]; ok {
		delete(r.byToken, tokenValue)
		delete(r.byUser, token.UserID)
	}

	return nil
}
