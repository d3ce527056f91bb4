package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/phishsoc/internal/middlewares"
)

type Routes struct {
	Auth  *AuthHandler
	Email *EmailHandler
	Logs  *LogsHandler
}

// Guards are the middlewares protecting the routes. LoginLimiter may be nil.
type Guards struct {
	Gate         middlewares.Authorizer
	FailureLog   middlewares.AuthFailureLogger
	IsAdmin      func(subject string) bool
	LoginLimiter fiber.Handler
}

func SetupRoutes(router fiber.Router, routes Routes, guards Guards) {
	requireAuth := middlewares.RequireAuth(guards.Gate, guards.FailureLog)
	requireAdmin := middlewares.RequireAdmin(guards.IsAdmin)

	authRouter := router.Group("/api/auth")
	if guards.LoginLimiter != nil {
		authRouter.Post("/login", guards.LoginLimiter, routes.Auth.PostLogin)
	} else {
		authRouter.Post("/login", routes.Auth.PostLogin)
	}
	authRouter.Get("/login", routes.Auth.GetLogin)
	authRouter.Post("/logout", routes.Auth.PostLogout)
	authRouter.Get("/me", requireAuth, routes.Auth.GetMe)

	router.Post("/api/email/analyze", requireAuth, routes.Email.PostAnalyze)

	logsRouter := router.Group("/api/logs", requireAuth, requireAdmin)
	logsRouter.Get("/summary", routes.Logs.GetSummary)
	logsRouter.Get("/:stream", routes.Logs.GetLog)
	logsRouter.Get("/:stream/download", routes.Logs.GetLogDownload)
}
