package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/khanghh/phishsoc/internal/revocation"
	"github.com/khanghh/phishsoc/internal/token"
)

type countingValidator struct {
	TokenValidator
	calls int
}

func (v *countingValidator) Validate(tokenStr string) (*token.Session, error) {
	v.calls++
	return v.TokenValidator.Validate(tokenStr)
}

func newTestGate(now func() time.Time) (*Gate, *token.TokenService, *revocation.MemoryRegistry, *countingValidator) {
	tokens := token.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), token.WithClock(now))
	registry := revocation.NewMemoryRegistry()
	validator := &countingValidator{TokenValidator: tokens}
	return NewGate(validator, registry), tokens, registry, validator
}

func TestParseBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
		err    error
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"Bearer   padded  ", "padded", nil},
		{"", "", ErrMissingCredential},
		{"Bearer ", "", ErrMissingCredential},
		{"Bearer", "", ErrMissingCredential},
		{"Basic dXNlcjpwYXNz", "", ErrMissingCredential},
		{"bearer abc", "", ErrMissingCredential},
	}
	for _, tt := range tests {
		got, err := ParseBearer(tt.header)
		if !errors.Is(err, tt.err) || got != tt.want {
			t.Errorf("ParseBearer(%q) = %q, %v; want %q, %v", tt.header, got, err, tt.want, tt.err)
		}
	}
}

func TestAuthorizeValidToken(t *testing.T) {
	gate, tokens, _, _ := newTestGate(time.Now)
	tok, _ := tokens.Issue("alice@example.com")

	principal, err := gate.Authorize("Bearer " + tok)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if principal.Subject != "alice@example.com" || principal.Token != tok {
		t.Fatalf("unexpected principal %+v", principal)
	}
}

func TestAuthorizeRevokedBeforeValidation(t *testing.T) {
	gate, tokens, registry, validator := newTestGate(time.Now)
	tok, _ := tokens.Issue("alice")
	registry.Revoke(tok)

	_, err := gate.Authorize("Bearer " + tok)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
	if validator.calls != 0 {
		t.Fatalf("signature check must not run for revoked tokens, ran %d times", validator.calls)
	}
	if FailureReason(err) != "revoked" {
		t.Fatalf("unexpected reason %s", FailureReason(err))
	}
}

func TestAuthorizeRevokedGarbageIsStillRevoked(t *testing.T) {
	gate, _, registry, _ := newTestGate(time.Now)
	registry.Revoke("garbage")
	if _, err := gate.Authorize("Bearer garbage"); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestAuthorizeFailures(t *testing.T) {
	issued := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	now := issued
	gate, tokens, _, _ := newTestGate(func() time.Time { return now })
	tok, _ := tokens.Issue("alice")
	foreign, _ := token.NewTokenService([]byte("another-key-another-key-another!!"), token.WithClock(func() time.Time { return issued })).Issue("alice")

	tests := []struct {
		name   string
		header string
		at     time.Time
		want   error
		reason string
	}{
		{"no header", "", issued, ErrMissingCredential, "missing_credential"},
		{"wrong scheme", "Token " + tok, issued, ErrMissingCredential, "missing_credential"},
		{"malformed", "Bearer nope", issued, token.ErrTokenMalformed, "malformed"},
		{"foreign key", "Bearer " + foreign, issued, token.ErrSignatureMismatch, "signature_mismatch"},
		{"expired", "Bearer " + tok, issued.Add(24 * time.Hour), token.ErrTokenExpired, "expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = tt.at
			_, err := gate.Authorize(tt.header)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if got := FailureReason(err); got != tt.reason {
				t.Fatalf("expected reason %s, got %s", tt.reason, got)
			}
		})
	}
}

func TestAuthorizeRevokedTokenAliases(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	gate, tokens, registry, _ := newTestGate(time.Now)
	tok, _ := tokens.Issue("alice@example.com")
	registry.Revoke(tok)

	last := strings.IndexByte(alphabet, tok[len(tok)-1])
	for i := last &^ 3; i < last&^3+4; i++ {
		variant := tok[:len(tok)-1] + string(alphabet[i])
		principal, err := gate.Authorize("Bearer " + variant)
		if err == nil {
			t.Fatalf("revoked token accepted as %q through final char %q", principal.Subject, alphabet[i])
		}
	}
}
