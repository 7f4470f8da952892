package models

import (
	"time"

	"github.com/google/uuid"
)

type TokenStatus string

const (
	TokenActive  TokenStatus = "active"
	TokenRevoked TokenStatus = "revoked"
	TokenExpired TokenStatus = "expired"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// Token is a persisted access/refresh pair issued to a user.
// Records are never deleted, only revoked or expired.
type Token struct {
	ID               uuid.UUID
	UserID           uuid.UUID // uuid.Nil once the user is deleted
	AccessToken      string
	RefreshToken     string
	IssuedAt         time.Time
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	Status           TokenStatus
}

// Access token may be used to call protected endpoints
func (t Token) AccessUsable(now time.Time) bool {
	return t.Status == TokenActive && now.Before(t.AccessExpiresAt)
}

// Refresh token may be exchanged for a new access token
func (t Token) RefreshUsable(now time.Time) bool {
	return t.Status == TokenActive && now.Before(t.RefreshExpiresAt)
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issues by TokenManager
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Result of every successful auth flow
type Authentication struct {
	Username string
	TokenPair
}
