package auth

import (
	"errors"
	"strings"

	"github.com/khanghh/phishsoc/internal/token"
)

const bearerPrefix = "Bearer "

type TokenValidator interface {
	Validate(tokenStr string) (*token.Session, error)
}

type RevocationChecker interface {
	IsRevoked(token string) bool
}

// Principal is the identity established by a successful authorization.
type Principal struct {
	Subject string
	Token   string
}

// Gate authorizes requests carrying a bearer token.
type Gate struct {
	tokens  TokenValidator
	revoked RevocationChecker
}

// ParseBearer extracts the token from an Authorization header value of the
// form "Bearer <token>".
func ParseBearer(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMissingCredential
	}
	tok := strings.TrimSpace(header[len(bearerPrefix):])
	if tok == "" {
		return "", ErrMissingCredential
	}
	return tok, nil
}

// Authorize checks the header format, then revocation, then signature and
// expiry. Revocation goes first so a revoked token is rejected the same way
// whether or not it is still valid.
func (g *Gate) Authorize(header string) (*Principal, error) {
	tok, err := ParseBearer(header)
	if err != nil {
		return nil, err
	}
	if g.revoked.IsRevoked(tok) {
		return nil, ErrTokenRevoked
	}
	sess, err := g.tokens.Validate(tok)
	if err != nil {
		return nil, err
	}
	return &Principal{Subject: sess.Subject, Token: tok}, nil
}

// FailureReason names the class of an Authorize error for diagnostics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, token.ErrTokenExpired):
		return "expired"
	case errors.Is(err, token.ErrSignatureMismatch):
		return "signature_mismatch"
	case errors.Is(err, token.ErrTokenMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}

func NewGate(tokens TokenValidator, revoked RevocationChecker) *Gate {
	return &Gate{
		tokens:  tokens,
		revoked: revoked,
	}
}
