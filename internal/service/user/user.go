package user

import (
	"context"
	"fmt"

	"github.com/nkiryanov/authd/internal/models"
	"github.com/nkiryanov/authd/internal/repository"
	"github.com/nkiryanov/authd/internal/service/auth"
)

type UserService struct {
	hasher auth.PasswordHasher
	users  repository.UserRepo
}

func NewService(hasher auth.PasswordHasher, users repository.UserRepo) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher: hasher,
		users:  users,
	}
}

// CreateUser registers a regular user. Admins are not created here, an
// existing admin grants the role afterwards.
func (s *UserService) CreateUser(ctx context.Context, username string, password string) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err = s.users.CreateUser(ctx, username, hash, models.RoleUser)
	if err != nil {
		return user, err
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) GrantRole(ctx context.Context, userID int64, role string) (models.User, error) {
	return s.users.GrantRole(ctx, userID, role)
}
