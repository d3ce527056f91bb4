package auth

import "errors"

var (
	ErrMissingCredential = errors.New("missing bearer credential")
	ErrTokenRevoked      = errors.New("token revoked")
)
