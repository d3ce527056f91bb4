package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/khanghh/phishsoc/internal/render"
)

// RateLimit allows max requests per client within window. Clients are keyed
// by ctx.IP(), which follows forwarding headers only from trusted proxies.
func RateLimit(storage fiber.Storage, max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(ctx *fiber.Ctx) string {
			return ctx.IP()
		},
		LimitReached: render.RenderTooManyRequests,
		Storage:      storage,
	})
}
