package middlewares

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/phishsoc/internal/auth"
	"github.com/khanghh/phishsoc/internal/metrics"
	"github.com/khanghh/phishsoc/internal/render"
	"github.com/khanghh/phishsoc/internal/token"
	"github.com/khanghh/phishsoc/params"
)

const principalKey = "principal"

type Authorizer interface {
	Authorize(header string) (*auth.Principal, error)
}

type AuthFailureLogger interface {
	LogFailedAuth(ctx context.Context, username, ipAddress, reason string)
}

// RequireAuth rejects requests without a valid bearer token with a plain
// 401. The failure class is only recorded in the FAILED_AUTH event.
func RequireAuth(gate Authorizer, logger AuthFailureLogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(fiber.HeaderAuthorization)
		principal, err := gate.Authorize(header)
		if err != nil {
			reason := auth.FailureReason(err)
			metrics.AuthFailures.WithLabelValues(reason).Inc()
			logger.LogFailedAuth(ctx.UserContext(), subjectHint(header), ClientIP(ctx), reason)
			return render.RenderUnauthorized(ctx)
		}
		ctx.Locals(principalKey, principal)
		return ctx.Next()
	}
}

// subjectHint decodes the subject of a rejected token for logging only.
func subjectHint(header string) string {
	tok, err := auth.ParseBearer(header)
	if err != nil {
		return params.UnknownUsername
	}
	if subject, ok := token.PeekSubject(tok); ok {
		return subject
	}
	return params.UnknownUsername
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(isAdmin func(subject string) bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		principal := GetPrincipal(ctx)
		if principal == nil || !isAdmin(principal.Subject) {
			return render.RenderForbidden(ctx)
		}
		return ctx.Next()
	}
}

func GetPrincipal(ctx *fiber.Ctx) *auth.Principal {
	principal, _ := ctx.Locals(principalKey).(*auth.Principal)
	return principal
}
