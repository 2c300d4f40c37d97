package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/handlers/authctx"
	"github.com/nkiryanov/authd/internal/handlers/render"
	"github.com/nkiryanov/authd/internal/logger"
)

// tokenPairResponse is shared by the login and refresh endpoints
type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// handleLogin is the authentication stage: credentials in, token pair out.
// Every failure is a uniform 401, an attacker learns nothing about which
// part of the credentials was wrong.
func handleLogin(auth authService, l logger.Logger) http.Handler {
	type LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	unauthorized := func(w http.ResponseWriter) {
		render.Error(w, apperrors.CodeUnsuccessfulAuthentication, "Invalid username or password", http.StatusUnauthorized)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Empty or malformed body counts as bad credentials, not as a
		// decoding failure
		req, err := render.Decode[LoginRequest](r)
		if err != nil {
			unauthorized(w)
			return
		}

		pair, err := auth.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidCredentials):
				l.Info("login rejected", "username", req.Username, "remote", r.RemoteAddr)
				unauthorized(w)
			default:
				l.Error("login failed", "error", err.Error())
				render.InternalError(w)
			}
			return
		}

		render.JSON(w, tokenPairResponse{
			AccessToken:  pair.Access.Value,
			RefreshToken: pair.Refresh.Value,
		})
	})
}

// handleTokenRefresh is the refresh stage: it exchanges a registered
// refresh token for a new pair and never reaches the authorization gate.
// Rejections are 401 with the specific reason code, the client decides
// whether to retry or to send the user back to login.
func handleTokenRefresh(auth authService, l logger.Logger) http.Handler {
	type RefreshRequest struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.Decode[RefreshRequest](r)
		if err != nil {
			render.Error(w, apperrors.CodeInvalidRefreshToken, "Invalid refresh token", http.StatusUnauthorized)
			return
		}

		pair, err := auth.Reissue(r.Context(), req.RefreshToken)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidRefreshToken),
				errors.Is(err, apperrors.ErrInvalidTokenPayload),
				errors.Is(err, apperrors.ErrUserNotFound):
				l.Info("token refresh rejected", "code", apperrors.Code(err), "remote", r.RemoteAddr)
				render.Error(w, apperrors.Code(err), "Refresh token was not accepted", http.StatusUnauthorized)
			default:
				l.Error("token refresh failed", "error", err.Error())
				render.InternalError(w)
			}
			return
		}

		render.JSON(w, tokenPairResponse{
			AccessToken:  pair.Access.Value,
			RefreshToken: pair.Refresh.Value,
		})
	})
}

// handleLogout deletes the caller's refresh record. The access token
// keeps working until it expires, only renewal dies.
func handleLogout(auth authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := authctx.FromContext(r.Context())
		if !ok {
			render.Error(w, apperrors.CodeInvalidToken, "Invalid or missing bearer token", http.StatusForbidden)
			return
		}

		if err := auth.Logout(r.Context(), principal.UserID); err != nil {
			l.Error("logout failed", "error", err.Error(), "user_id", principal.UserID)
			render.InternalError(w)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
