package api

import (
	"context"

	"github.com/khanghh/phishsoc/internal/eventlog"
	"github.com/khanghh/phishsoc/internal/phishing"
)

type TokenIssuer interface {
	Issue(subject string) (string, error)
}

type TokenRevoker interface {
	Revoke(token string)
}

type ActivityLogger interface {
	LogLogin(ctx context.Context, username, ipAddress string, success bool)
	LogLogout(ctx context.Context, username, ipAddress string)
	LogFailedAuth(ctx context.Context, username, ipAddress, reason string)
	LogUserAction(ctx context.Context, user, action, details string)
	LogAdminAction(ctx context.Context, admin, action, target, details string)
}

type EmailAnalyzer interface {
	Analyze(ctx context.Context, emailID, user string, content *phishing.EmailContent) (*phishing.AnalysisResult, error)
}

type LogReader interface {
	Read(stream string, maxLines int) ([]string, error)
	ReadAll(stream string) ([]byte, error)
	Summarize() map[string]eventlog.StreamSummary
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	Token   string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type meResponse struct {
	Email string `json:"email"`
}

type logsSummaryResponse struct {
	Timestamp string                            `json:"timestamp"`
	Logs      map[string]eventlog.StreamSummary `json:"logs"`
}

type logContentResponse struct {
	LogType        string   `json:"log_type"`
	File           string   `json:"file"`
	DisplayedLines int      `json:"displayed_lines"`
	Content        []string `json:"content"`
}
