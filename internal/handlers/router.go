package handlers

import (
	"context"
	"net/http"

	"github.com/nkiryanov/authd/internal/handlers/middleware"
	"github.com/nkiryanov/authd/internal/handlers/render"
	"github.com/nkiryanov/authd/internal/logger"
	"github.com/nkiryanov/authd/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// NewRouter wires the three request stages. Login and refresh are
// explicit routes, so they never pass the authorization gate; everything
// else goes through it unless whitelisted below. A request traverses
// exactly one stage.
func NewRouter(
	auth authService,
	users userService,
	l logger.Logger,
) http.Handler {
	authorize := middleware.Authorize(auth)
	requireAdmin := middleware.RequireAuthority(models.RoleAdmin)

	mux := http.NewServeMux()

	// Token lifecycle endpoints
	mux.Handle("POST /login", handleLogin(auth, l))
	mux.Handle("POST /refresh-token", handleTokenRefresh(auth, l))
	mux.Handle("POST /logout", chain(handleLogout(auth, l), authorize))

	// Whitelisted: signup, health and the generic error sink bypass
	// authorization by design, not by token validation
	mux.Handle("POST /users", handleSignup(users, l))
	mux.Handle("GET /healthz", handleHealth())
	mux.Handle("/errors", handleErrors())

	mux.Handle("GET /users/me", chain(handleUserMe(users, l), authorize))

	mux.Handle("GET /admin/users", chain(handleListUsers(users, l), authorize, requireAdmin))
	mux.Handle("POST /admin/users/{id}/role", chain(handleGrantRole(users, l), authorize, requireAdmin))

	return chain(mux,
		middleware.LoggerMiddleware(l),
	)
}

func handleHealth() http.Handler {
	type HealthResponse struct {
		Status string `json:"status"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, HealthResponse{Status: "ok"})
	})
}

// handleErrors is the sink requests are forwarded to when something
// outside the auth contract blows up. It only ever admits that an error
// happened.
func handleErrors() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render.InternalError(w)
	})
}

type authService interface {
	// Run the full authentication stage
	// Has to return apperrors.ErrInvalidCredentials on any credential failure
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Exchange a registered refresh token for a new pair
	// Failure kinds: apperrors.ErrInvalidRefreshToken, ErrInvalidTokenPayload, ErrUserNotFound
	Reissue(ctx context.Context, refreshValue string) (models.TokenPair, error)

	// Validate a bearer access token and resolve its principal
	// Failure kinds: apperrors.ErrTokenExpired, ErrInvalidToken
	ValidateAccess(ctx context.Context, accessValue string) (models.Principal, error)

	// Drop the user's refresh record
	Logout(ctx context.Context, userID int64) error
}

type userService interface {
	// Has to return apperrors.ErrUserAlreadyExists if username is taken
	CreateUser(ctx context.Context, username string, password string) (models.User, error)

	// Has to return apperrors.ErrUserNotFound if user not found
	GetByID(ctx context.Context, userID int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GrantRole(ctx context.Context, userID int64, role string) (models.User, error)
}
