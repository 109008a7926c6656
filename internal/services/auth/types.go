package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// AccessClaims is what this service trusts out of a platform-issued access
// token. Token issuance and session lifecycle live in the external auth
// service; here tokens are only validated.
type AccessClaims struct {
	UserID    int64
	SID       string
	Role      string
	ExpiresAt time.Time
}
