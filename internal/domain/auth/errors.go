package auth

import "errors"

// Sentinel kinds for authentication errors.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidHash     = errors.New("invalid password hash")
)
