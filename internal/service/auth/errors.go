package auth

import "errors"

// Token and login failures. Middleware and the websocket verifier match
// these with errors.Is.
var (
	// ErrInvalidToken covers malformed tokens, bad signatures and bad claims.
	ErrInvalidToken = errors.New("invalid authentication token")

	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned while nbf is in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType rejects a token whose type claim is set to anything
	// but TokenTypeAccess.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidCredentials is returned by Login for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
