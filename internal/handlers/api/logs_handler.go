package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/phishsoc/internal/eventlog"
	"github.com/khanghh/phishsoc/internal/middlewares"
	"github.com/khanghh/phishsoc/internal/render"
	"github.com/khanghh/phishsoc/params"
)

const timestampLayout = "2006-01-02 15:04:05"

// LogsHandler serves the log streams to administrators. Every access is
// itself recorded as an ADMIN_ACTION.
type LogsHandler struct {
	logs     LogReader
	activity ActivityLogger
}

func (h *LogsHandler) GetSummary(ctx *fiber.Ctx) error {
	summaries := h.logs.Summarize()
	logs := make(map[string]eventlog.StreamSummary, len(summaries))
	for _, summary := range summaries {
		logs[summary.File] = summary
	}
	admin := middlewares.GetPrincipal(ctx).Subject
	h.activity.LogAdminAction(ctx.UserContext(), admin, "LOGS_SUMMARY_VIEW", "all", "")
	return render.RenderData(ctx, logsSummaryResponse{
		Timestamp: time.Now().Format(timestampLayout),
		Logs:      logs,
	})
}

func (h *LogsHandler) GetLog(ctx *fiber.Ctx) error {
	stream := ctx.Params("stream")
	lines := ctx.QueryInt("lines", params.LogReadDefaultLines)
	content, err := h.logs.Read(stream, lines)
	if errors.Is(err, eventlog.ErrInvalidStream) {
		return render.RenderBadRequest(ctx, "Invalid log type")
	}
	if err != nil {
		return err
	}
	admin := middlewares.GetPrincipal(ctx).Subject
	h.activity.LogAdminAction(ctx.UserContext(), admin, "LOG_VIEW", stream, fmt.Sprintf("lines=%d", lines))
	return render.RenderData(ctx, logContentResponse{
		LogType:        stream,
		File:           stream + ".log",
		DisplayedLines: len(content),
		Content:        content,
	})
}

func (h *LogsHandler) GetLogDownload(ctx *fiber.Ctx) error {
	stream := ctx.Params("stream")
	data, err := h.logs.ReadAll(stream)
	switch {
	case errors.Is(err, eventlog.ErrInvalidStream):
		return render.RenderBadRequest(ctx, "Invalid log type")
	case errors.Is(err, eventlog.ErrStreamNotFound):
		return render.RenderNotFound(ctx, stream+" log file not found")
	case err != nil:
		return err
	}
	admin := middlewares.GetPrincipal(ctx).Subject
	h.activity.LogAdminAction(ctx.UserContext(), admin, "LOG_DOWNLOAD", stream, "")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", stream+".log"))
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	return ctx.Send(data)
}

func NewLogsHandler(logs LogReader, activity ActivityLogger) *LogsHandler {
	return &LogsHandler{
		logs:     logs,
		activity: activity,
	}
}
