package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ClientIP returns the first X-Forwarded-For entry when it is a well formed
// address, or the connection address otherwise. The header is client
// controlled, so the result is only fit for log context.
func ClientIP(ctx *fiber.Ctx) string {
	if forwarded := ctx.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); utils.IsIPv4(ip) || utils.IsIPv6(ip) {
			return ip
		}
	}
	return ctx.IP()
}

// TrustProxies makes ctx.IP() honour X-Forwarded-For, but only on requests
// arriving from one of proxies.
func TrustProxies(cfg fiber.Config, proxies []string) fiber.Config {
	if len(proxies) == 0 {
		return cfg
	}
	cfg.EnableTrustedProxyCheck = true
	cfg.TrustedProxies = proxies
	cfg.ProxyHeader = fiber.HeaderXForwardedFor
	cfg.EnableIPValidation = true
	return cfg
}
