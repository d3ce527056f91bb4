package token

import "errors"

var (
	ErrSubjectEmpty      = errors.New("token subject cannot be empty")
	ErrTokenMalformed    = errors.New("token is malformed")
	ErrSignatureMismatch = errors.New("token signature mismatch")
	ErrTokenExpired      = errors.New("token is expired")
)
