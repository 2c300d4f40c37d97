package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/authd/internal/apperrors"
)

func TestUserRepo(t *testing.T) {
	t.Parallel()

	t.Run("create and get", func(t *testing.T) {
		repo := NewUserRepo()

		created, err := repo.CreateUser(t.Context(), "nk", "hash", "ROLE_USER")
		require.NoError(t, err)
		require.NotZero(t, created.ID)
		require.Equal(t, "nk", created.Username)
		require.Equal(t, "ROLE_USER", created.Role)
		require.False(t, created.CreatedAt.IsZero())

		byID, err := repo.GetUserByID(t.Context(), created.ID)
		require.NoError(t, err)
		require.Equal(t, created, byID)

		byUsername, err := repo.GetUserByUsername(t.Context(), "nk")
		require.NoError(t, err)
		require.Equal(t, created, byUsername)
	})

	t.Run("ids are sequential", func(t *testing.T) {
		repo := NewUserRepo()

		first, err := repo.CreateUser(t.Context(), "first", "hash", "ROLE_USER")
		require.NoError(t, err)
		second, err := repo.CreateUser(t.Context(), "second", "hash", "ROLE_USER")
		require.NoError(t, err)

		require.Equal(t, first.ID+1, second.ID)
	})

	t.Run("duplicate username fails", func(t *testing.T) {
		repo := NewUserRepo()

		_, err := repo.CreateUser(t.Context(), "nk", "hash", "ROLE_USER")
		require.NoError(t, err)

		_, err = repo.CreateUser(t.Context(), "nk", "other-hash", "ROLE_USER")
		require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	})

	t.Run("unknown user fails", func(t *testing.T) {
		repo := NewUserRepo()

		_, err := repo.GetUserByID(t.Context(), 42)
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)

		_, err = repo.GetUserByUsername(t.Context(), "nobody")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("list users sorted by id", func(t *testing.T) {
		repo := NewUserRepo()

		for _, username := range []string{"charlie", "alice", "bob"} {
			_, err := repo.CreateUser(t.Context(), username, "hash", "ROLE_USER")
			require.NoError(t, err)
		}

		users, err := repo.ListUsers(t.Context())
		require.NoError(t, err)
		require.Len(t, users, 3)
		require.Equal(t, "charlie", users[0].Username, "list should be ordered by creation")
		require.Equal(t, "alice", users[1].Username)
		require.Equal(t, "bob", users[2].Username)
	})

	t.Run("grant role", func(t *testing.T) {
		repo := NewUserRepo()

		user, err := repo.CreateUser(t.Context(), "nk", "hash", "ROLE_USER")
		require.NoError(t, err)

		updated, err := repo.GrantRole(t.Context(), user.ID, "ROLE_ADMIN")
		require.NoError(t, err)
		require.Equal(t, "ROLE_ADMIN", updated.Role)

		got, err := repo.GetUserByID(t.Context(), user.ID)
		require.NoError(t, err)
		require.Equal(t, "ROLE_ADMIN", got.Role)

		_, err = repo.GrantRole(t.Context(), user.ID+1, "ROLE_ADMIN")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
