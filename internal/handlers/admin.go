package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/handlers/render"
	"github.com/nkiryanov/authd/internal/logger"
)

// handleListUsers returns every registered user. Admin only.
func handleListUsers(users userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		list, err := users.ListUsers(r.Context())
		if err != nil {
			l.Error("user listing failed", "error", err.Error())
			render.InternalError(w)
			return
		}

		response := make([]userResponse, 0, len(list))
		for _, u := range list {
			response = append(response, toUserResponse(u))
		}

		render.JSON(w, response)
	})
}

// handleGrantRole replaces a user's role. Admin only.
func handleGrantRole(users userService, l logger.Logger) http.Handler {
	type GrantRoleRequest struct {
		Role string `json:"role" validate:"required,oneof=ROLE_USER ROLE_ADMIN"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			render.Error(w, apperrors.CodeUserNotFound, "User not found", http.StatusNotFound)
			return
		}

		req, err := render.BindAndValidate[GrantRoleRequest](w, r)
		if err != nil {
			return
		}

		user, err := users.GrantRole(r.Context(), userID, req.Role)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.Error(w, apperrors.CodeUserNotFound, "User not found", http.StatusNotFound)
			default:
				l.Error("role grant failed", "error", err.Error(), "user_id", userID)
				render.InternalError(w)
			}
			return
		}

		render.JSON(w, toUserResponse(user))
	})
}
