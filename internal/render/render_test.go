package render

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/phishsoc/params"
)

func TestRenderEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/data", func(ctx *fiber.Ctx) error {
		return RenderData(ctx, fiber.Map{"email": "a@b.com"})
	})
	app.Get("/error", func(ctx *fiber.Ctx) error {
		return RenderBadRequest(ctx, "bad input", APIErrorDetail{Domain: "email", Reason: "invalid", Message: "linkCount must not be negative"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/data", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	var data APIResponse
	if err := json.Unmarshal(body, &data); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	if resp.StatusCode != 200 || data.APIVersion != params.APIVersion || data.Error != nil {
		t.Fatalf("unexpected data response %d %s", resp.StatusCode, body)
	}
	if data.Data.(map[string]any)["email"] != "a@b.com" {
		t.Fatalf("unexpected data %v", data.Data)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/error", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	var errResp APIResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	if resp.StatusCode != 400 || errResp.Error == nil || errResp.Error.Code != 400 || errResp.Error.Message != "bad input" {
		t.Fatalf("unexpected error response %d %s", resp.StatusCode, body)
	}
	if len(errResp.Error.Errors) != 1 || errResp.Error.Errors[0].Domain != "email" || errResp.Data != nil {
		t.Fatalf("unexpected error details %s", body)
	}
}
