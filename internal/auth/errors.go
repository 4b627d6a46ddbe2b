package auth

import "errors"

var (
	// ErrUnauthorized represents missing or invalid authentication tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSecretMissing is returned when issuing a token without a configured secret.
	ErrSecretMissing = errors.New("api secret not configured")
	// ErrInvalidSubject rejects an empty operator name.
	ErrInvalidSubject = errors.New("operator name required")
)
