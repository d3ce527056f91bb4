package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/phishsoc/internal/middlewares"
	"github.com/khanghh/phishsoc/internal/phishing"
	"github.com/khanghh/phishsoc/internal/render"
	"github.com/khanghh/phishsoc/model"
)

type EmailHandler struct {
	analyzer EmailAnalyzer
	activity ActivityLogger
}

func (h *EmailHandler) PostAnalyze(ctx *fiber.Ctx) error {
	var content phishing.EmailContent
	if err := ctx.BodyParser(&content); err != nil {
		return render.RenderBadRequest(ctx, "Invalid request body")
	}
	if err := content.Validate(); err != nil {
		return renderValidationError(ctx, err)
	}

	user := middlewares.GetPrincipal(ctx).Subject
	emailID := strconv.FormatInt(model.GenerateID(), 10)
	h.activity.LogUserAction(ctx.UserContext(), user, "EMAIL_ANALYSIS_START", "Analyzing email: "+emailID)

	result, err := h.analyzer.Analyze(ctx.UserContext(), emailID, user, &content)
	if err != nil {
		return renderValidationError(ctx, err)
	}
	return render.RenderData(ctx, result)
}

func renderValidationError(ctx *fiber.Ctx, err error) error {
	var validationErr *phishing.ValidationError
	if !errors.As(err, &validationErr) {
		return err
	}
	return render.RenderBadRequest(ctx, "Invalid email content", render.APIErrorDetail{
		Domain:  validationErr.Field,
		Reason:  "invalid",
		Message: validationErr.Error(),
	})
}

func NewEmailHandler(analyzer EmailAnalyzer, activity ActivityLogger) *EmailHandler {
	return &EmailHandler{
		analyzer: analyzer,
		activity: activity,
	}
}
