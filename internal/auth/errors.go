package auth

import "errors"

var (
	// ErrInvalidCredentials covers unknown identifiers, users without a
	// secret and secret mismatches alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenInvalid = errors.New("session token invalid")
	ErrTokenExpired = errors.New("session token expired")

	// ErrServer wraps collaborator failures. Detail stays in logs.
	ErrServer = errors.New("auth server error")
)
