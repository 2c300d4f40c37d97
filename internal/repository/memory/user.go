package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/models"
)

// UserRepo is an in-memory user directory with a process local id sequence
type UserRepo struct {
	mu         sync.RWMutex
	byID       map[int64]models.User
	byUsername map[string]int64
	nextID     int64
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:       make(map[int64]models.User),
		byUsername: make(map[string]int64),
		nextID:     1,
	}
}

func (r *UserRepo) CreateUser(ctx context.Context, username string, hashedPassword string, role string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[username]; ok {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}

	user := models.User{
		ID:             r.nextID,
		CreatedAt:      time.Now().Truncate(time.Second),
		Username:       username,
		HashedPassword: hashedPassword,
		Role:           role,
	}
	r.nextID++

	r.byID[user.ID] = user
	r.byUsername[user.Username] = user.ID

	return user, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, userID int64) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[userID]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}

	return user, nil
}

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}

	return r.byID[id], nil
}

func (r *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.byID))
	for _, user := range r.byID {
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (r *UserRepo) GrantRole(ctx context.Context, userID int64, role string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}

	user.Role = role
	r.byID[userID] = user

	return user, nil
}
