package middlewares

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/phishsoc/internal/render"
)

const errorModule = "api"

type ErrorLogger interface {
	LogError(ctx context.Context, module, errorMessage, trace string)
}

// NewErrorHandler renders errors returned by handlers as JSON. Server side
// failures are also recorded as ERROR events.
func NewErrorHandler(logger ErrorLogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			return render.RenderError(ctx, fiberErr.Code, fiberErr.Message)
		}
		slog.Error("unhandled error", "method", ctx.Method(), "path", ctx.Path(), "error", err)
		logger.LogError(ctx.UserContext(), errorModule, err.Error(), ctx.Method()+" "+ctx.Path())
		return render.RenderInternalServerError(ctx)
	}
}
