package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for both an unknown username and a
	// wrong password, so a caller cannot tell which check failed.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthorized is returned for any token failure: bad signature,
	// malformed token, expiry, missing claims, or a user that no longer
	// exists. The sub-reason is never exposed.
	ErrUnauthorized = errors.New("could not validate credentials")
)
