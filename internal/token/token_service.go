package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/khanghh/phishsoc/internal/metrics"
	"github.com/khanghh/phishsoc/params"
)

// Claims is the payload carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// Session is the validated content of a token.
type Session struct {
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Option func(*TokenService)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// WithLifetime sets how long issued tokens stay valid.
func WithLifetime(lifetime time.Duration) Option {
	return func(s *TokenService) {
		if lifetime > 0 {
			s.lifetime = lifetime
		}
	}
}

// WithIssuer sets the iss claim of issued tokens.
func WithIssuer(issuer string) Option {
	return func(s *TokenService) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// TokenService issues and validates HS256 signed session tokens.
type TokenService struct {
	signingKey []byte
	lifetime   time.Duration
	issuer     string
	now        func() time.Time
}

func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue creates a token for subject valid from now until now+lifetime.
// Timestamps are truncated to whole seconds so that the encoded expiry is exact.
func (s *TokenService) Issue(subject string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", ErrSubjectEmpty
	}
	issuedAt := s.now().Truncate(time.Second)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	metrics.TokensIssued.Inc()
	return signed, nil
}

func (s *TokenService) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return s.signingKey, nil
}

// Validate checks the signature and expiry of tokenStr. The expiry is
// exclusive and no clock skew is tolerated. Segments must be canonical
// base64url, so a valid token has exactly one accepted spelling.
func (s *TokenService) Validate(tokenStr string) (*Session, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
	)
	_, err := parser.ParseWithClaims(tokenStr, &claims, s.keyFunc)
	if err != nil {
		return nil, classifyError(err)
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrTokenMalformed
	}
	return &Session{
		ID:        claims.ID,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func classifyError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignatureMismatch, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}

// PeekSubject extracts the subject of tokenStr without verifying its
// signature or expiry. The result is only fit for diagnostics.
func PeekSubject(tokenStr string) (string, bool) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return "", false
	}
	if claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

func NewTokenService(signingKey []byte, opts ...Option) *TokenService {
	s := &TokenService{
		signingKey: signingKey,
		lifetime:   params.TokenLifetime,
		issuer:     params.TokenIssuer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
