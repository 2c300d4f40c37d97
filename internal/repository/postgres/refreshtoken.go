package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const saveToken = `-- name: SaveRefreshToken
INSERT INTO refresh_tokens (token, user_id, created_at, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE
SET token = EXCLUDED.token, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at
RETURNING token
`

// Save rotates in a single statement: the unique constraint on user_id plus
// ON CONFLICT replaces the user's previous record atomically, matching the
// memory backend's one-record-per-user contract
func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) error {
	rows, _ := r.DB.Query(ctx, saveToken, token.Token, token.UserID, token.CreatedAt, token.ExpiresAt)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const getToken = `-- name: GetByToken
SELECT token, user_id, created_at, expires_at
FROM refresh_tokens
WHERE token = $1
`

// GetByToken returns the record even if expired, expiry policy lives in the service
func (r *RefreshTokenRepo) GetByToken(ctx context.Context, tokenValue string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getToken, tokenValue)
	token, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.RefreshToken, error) {
		var t models.RefreshToken
		err := row.Scan(&t.Token, &t.UserID, &t.CreatedAt, &t.ExpiresAt)
		return t, err
	})

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, apperrors.ErrRefreshTokenNotFound
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const deleteByUserID = `-- name: DeleteByUserID
DELETE FROM refresh_tokens
WHERE user_id = $1
`

func (r *RefreshTokenRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	_, err := r.DB.Exec(ctx, deleteByUserID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const deleteByToken = `-- name: DeleteByToken
DELETE FROM refresh_tokens
WHERE token = $1
`

func (r *RefreshTokenRepo) DeleteByToken(ctx context.Context, tokenValue string) error {
	_, err := r.DB.Exec(ctx, deleteByToken, tokenValue)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
