package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/phishsoc/internal/auth"
	"github.com/khanghh/phishsoc/internal/middlewares"
	"github.com/khanghh/phishsoc/internal/render"
	"github.com/khanghh/phishsoc/internal/token"
	"github.com/khanghh/phishsoc/params"
)

const loginUsage = "Use POST with JSON {email, password} to authenticate."

type AuthHandler struct {
	tokens   TokenIssuer
	revoker  TokenRevoker
	activity ActivityLogger
}

// PostLogin issues a token for any non-empty email. There is no credential
// store behind it, the password is ignored.
func (h *AuthHandler) PostLogin(ctx *fiber.Ctx) error {
	var req loginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return render.RenderBadRequest(ctx, "Invalid request body")
	}
	ipAddress := middlewares.ClientIP(ctx)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		h.activity.LogLogin(ctx.UserContext(), req.Email, ipAddress, false)
		h.activity.LogFailedAuth(ctx.UserContext(), req.Email, ipAddress, "Empty email")
		return render.RenderBadRequest(ctx, "Invalid credentials")
	}

	signed, err := h.tokens.Issue(email)
	if err != nil {
		return err
	}
	h.activity.LogLogin(ctx.UserContext(), email, ipAddress, true)
	return render.RenderData(ctx, loginResponse{
		Message: "Login successful",
		Email:   email,
		Token:   signed,
	})
}

func (h *AuthHandler) GetLogin(ctx *fiber.Ctx) error {
	return render.RenderError(ctx, fiber.StatusMethodNotAllowed, loginUsage)
}

// PostLogout revokes the bearer token. The token does not need to be valid,
// its subject is decoded only to name the caller in the LOGOUT event.
func (h *AuthHandler) PostLogout(ctx *fiber.Ctx) error {
	tok, err := auth.ParseBearer(ctx.Get(fiber.HeaderAuthorization))
	if err != nil {
		return render.RenderBadRequest(ctx, "Missing Authorization Bearer token")
	}
	username, ok := token.PeekSubject(tok)
	if !ok {
		username = params.UnknownUsername
	}
	h.revoker.Revoke(tok)
	h.activity.LogLogout(ctx.UserContext(), username, middlewares.ClientIP(ctx))
	return render.RenderData(ctx, messageResponse{Message: "Logout successful"})
}

func (h *AuthHandler) GetMe(ctx *fiber.Ctx) error {
	principal := middlewares.GetPrincipal(ctx)
	if principal == nil {
		return render.RenderUnauthorized(ctx)
	}
	return render.RenderData(ctx, meResponse{Email: principal.Subject})
}

func NewAuthHandler(tokens TokenIssuer, revoker TokenRevoker, activity ActivityLogger) *AuthHandler {
	return &AuthHandler{
		tokens:   tokens,
		revoker:  revoker,
		activity: activity,
	}
}
