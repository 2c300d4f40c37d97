package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Login failures: unknown username and wrong password map to the same
	// error so responses never reveal which part was wrong
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Access token validation
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrInvalidToken   = errors.New("invalid token")

	// Refresh token reissue
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrInvalidTokenPayload  = errors.New("token payload has no usable subject")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	ErrAccessDenied = errors.New("access denied")
)

// Machine readable rejection codes, part of the wire contract
const (
	CodeUnsuccessfulAuthentication = "UNSUCCESSFUL_AUTHENTICATION"
	CodeInvalidToken               = "INVALID_TOKEN"
	CodeTokenExpired               = "TOKEN_EXPIRED"
	CodeInvalidRefreshToken        = "INVALID_REFRESH_TOKEN"
	CodeInvalidTokenPayload        = "INVALID_TOKEN_PAYLOAD"
	CodeUserNotFound               = "USER_NOT_FOUND"
	CodeUserAlreadyExists          = "USER_ALREADY_EXISTS"
	CodeAccessDenied               = "ACCESS_DENIED"
)

// Code maps an error to the rejection code clients branch on
// Errors outside the auth contract get no code
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return CodeUnsuccessfulAuthentication
	case errors.Is(err, ErrTokenExpired):
		return CodeTokenExpired
	case errors.Is(err, ErrInvalidRefreshToken):
		return CodeInvalidRefreshToken
	case errors.Is(err, ErrInvalidTokenPayload):
		return CodeInvalidTokenPayload
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrUserAlreadyExists):
		return CodeUserAlreadyExists
	case errors.Is(err, ErrAccessDenied):
		return CodeAccessDenied
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenMalformed):
		return CodeInvalidToken
	default:
		return ""
	}
}
