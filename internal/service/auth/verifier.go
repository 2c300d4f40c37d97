package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/models"
	"github.com/nkiryanov/authd/internal/repository"
)

// CredentialVerifier checks a username/password pair against the user
// directory. Unknown username and wrong password are indistinguishable to
// the caller: both fail with apperrors.ErrInvalidCredentials.
type CredentialVerifier struct {
	hasher PasswordHasher
	users  repository.UserRepo

	// Hash compared against when the username is unknown, so a miss
	// costs the same time as a mismatch
	decoyHash string
}

func NewCredentialVerifier(hasher PasswordHasher, users repository.UserRepo) (*CredentialVerifier, error) {
	if hasher == nil {
		hasher = DefaultHasher
	}
	if users == nil {
		return nil, errors.New("user repo must not be nil")
	}

	decoy, err := hasher.Hash("decoy-password")
	if err != nil {
		return nil, fmt.Errorf("error while preparing decoy hash. Err: %w", err)
	}

	return &CredentialVerifier{
		hasher:    hasher,
		users:     users,
		decoyHash: decoy,
	}, nil
}

func (v *CredentialVerifier) Verify(ctx context.Context, username string, password string) (models.User, error) {
	user, err := v.users.GetUserByUsername(ctx, username)
	if err != nil {
		_ = v.hasher.Compare(v.decoyHash, password)
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	if err := v.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	return user, nil
}
