package models

import (
	"time"
)

// RefreshToken is the server side record of an issued refresh token.
// At most one live record exists per user: saving a new one replaces
// whatever was there before.
type RefreshToken struct {
	UserID    int64
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair issued by the token service on login or refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
