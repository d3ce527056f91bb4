// Package render writes JSON API responses in a single envelope shape.
package render

import (
	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/phishsoc/params"
)

// Google JSON API style response structures
type APIResponse struct {
	APIVersion string        `json:"apiVersion"`
	Data       any           `json:"data,omitempty"`
	Error      *APIErrorInfo `json:"error,omitempty"`
}

type APIErrorInfo struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Errors  []APIErrorDetail `json:"errors,omitempty"`
}

type APIErrorDetail struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func NewDataResponse(data any) APIResponse {
	return APIResponse{
		APIVersion: params.APIVersion,
		Data:       data,
	}
}

func NewErrorResponse(code int, message string, details ...APIErrorDetail) APIResponse {
	return APIResponse{
		APIVersion: params.APIVersion,
		Error: &APIErrorInfo{
			Code:    code,
			Message: message,
			Errors:  details,
		},
	}
}

func RenderData(ctx *fiber.Ctx, data any) error {
	return ctx.Status(fiber.StatusOK).JSON(NewDataResponse(data))
}

func RenderError(ctx *fiber.Ctx, code int, message string, details ...APIErrorDetail) error {
	return ctx.Status(code).JSON(NewErrorResponse(code, message, details...))
}

func RenderBadRequest(ctx *fiber.Ctx, message string, details ...APIErrorDetail) error {
	return RenderError(ctx, fiber.StatusBadRequest, message, details...)
}

func RenderUnauthorized(ctx *fiber.Ctx) error {
	return RenderError(ctx, fiber.StatusUnauthorized, "unauthorized")
}

func RenderForbidden(ctx *fiber.Ctx) error {
	return RenderError(ctx, fiber.StatusForbidden, "forbidden")
}

func RenderNotFound(ctx *fiber.Ctx, message string) error {
	return RenderError(ctx, fiber.StatusNotFound, message)
}

func RenderTooManyRequests(ctx *fiber.Ctx) error {
	return RenderError(ctx, fiber.StatusTooManyRequests, "too many requests")
}

func RenderInternalServerError(ctx *fiber.Ctx) error {
	return RenderError(ctx, fiber.StatusInternalServerError, "internal server error")
}
