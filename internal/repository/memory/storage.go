package memory

import (
	"github.com/nkiryanov/authd/internal/repository"
)

type Storage struct {
	users  *UserRepo
	tokens *RefreshTokenRepo
}

func NewStorage() *Storage {
	return &Storage{
		users:  NewUserRepo(),
		tokens: NewRefreshTokenRepo(),
	}
}

func (s *Storage) Users() repository.UserRepo {
	return s.users
}

func (s *Storage) RefreshTokens() repository.RefreshTokenRepo {
	return s.tokens
}
