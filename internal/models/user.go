package models

import (
	"time"
)

// Role names follow the Spring-style "ROLE_" authority convention
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

type User struct {
	ID             int64
	CreatedAt      time.Time
	Username       string
	HashedPassword string
	Role           string
}

// Principal is the authenticated identity attached to a request
// after the access token checks out. Built per request, never stored.
type Principal struct {
	UserID    int64
	Authority string
}
