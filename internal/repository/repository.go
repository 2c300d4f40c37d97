package repository

import (
	"context"

	"github.com/nkiryanov/authd/internal/models"
)

// User directory interface
// The auth core only ever reads users; Create and GrantRole serve the
// signup and admin endpoints
type UserRepo interface {
	// Create user with given role
	// If user with username exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string, role string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	ListUsers(ctx context.Context) ([]models.User, error)

	// Replace the user's role
	// If user not found must return apperrors.ErrUserNotFound
	GrantRole(ctx context.Context, userID int64, role string) (models.User, error)
}

// RefreshToken store interface
// Implementations must keep at most one live record per user: Save
// atomically replaces whatever record the user had before
type RefreshTokenRepo interface {
	// Save token, deleting any previous record for the same user first.
	// Both the token index and the user index change together or not at all.
	Save(ctx context.Context, token models.RefreshToken) error

	// Return the record by its token value even if expired
	// If absent must return apperrors.ErrRefreshTokenNotFound
	GetByToken(ctx context.Context, tokenValue string) (models.RefreshToken, error)

	// Deletes are idempotent: absence is not an error
	DeleteByUserID(ctx context.Context, userID int64) error
	DeleteByToken(ctx context.Context, tokenValue string) error
}

// Storage bundles the repositories of one backend
type Storage interface {
	Users() UserRepo
	RefreshTokens() RefreshTokenRepo
}
