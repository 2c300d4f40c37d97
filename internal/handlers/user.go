package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/handlers/authctx"
	"github.com/nkiryanov/authd/internal/handlers/render"
	"github.com/nkiryanov/authd/internal/logger"
	"github.com/nkiryanov/authd/internal/models"
)

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// handleSignup registers a new regular user. The route is whitelisted:
// you can't be authenticated before you exist.
func handleSignup(users userService, l logger.Logger) http.Handler {
	type SignupRequest struct {
		Username string `json:"username" validate:"required,username,min=4,max=20"`
		Password string `json:"password" validate:"required,min=8"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[SignupRequest](w, r)
		if err != nil {
			return
		}

		user, err := users.CreateUser(r.Context(), req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.Error(w, apperrors.CodeUserAlreadyExists, "Username is already taken", http.StatusConflict)
			default:
				l.Error("signup failed", "error", err.Error())
				render.InternalError(w)
			}
			return
		}

		render.JSONWithStatus(w, toUserResponse(user), http.StatusCreated)
	})
}

// handleUserMe returns the profile of the authenticated principal
func handleUserMe(users userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := authctx.FromContext(r.Context())
		if !ok {
			render.Error(w, apperrors.CodeInvalidToken, "Invalid or missing bearer token", http.StatusForbidden)
			return
		}

		user, err := users.GetByID(r.Context(), principal.UserID)
		if err != nil {
			l.Error("me lookup failed", "error", err.Error(), "user_id", principal.UserID)
			render.InternalError(w)
			return
		}

		render.JSON(w, toUserResponse(user))
	})
}
