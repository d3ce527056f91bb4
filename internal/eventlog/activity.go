package eventlog

import "context"

type Appender interface {
	Append(ctx context.Context, category Category, fields Fields) error
}

// ActivityLogger records the typed events of the application. Failures are
// already reported by the Appender and never surface to the caller.
type ActivityLogger struct {
	appender Appender
}

func (l *ActivityLogger) append(ctx context.Context, category Category, fields Fields) {
	_ = l.appender.Append(ctx, category, fields)
}

func (l *ActivityLogger) LogLogin(ctx context.Context, username, ipAddress string, success bool) {
	l.append(ctx, CategoryLoginAttempt, Fields{
		FieldUsername:  username,
		FieldIPAddress: ipAddress,
		FieldSuccess:   success,
	})
}

func (l *ActivityLogger) LogLogout(ctx context.Context, username, ipAddress string) {
	l.append(ctx, CategoryLogout, Fields{
		FieldUsername:  username,
		FieldIPAddress: ipAddress,
	})
}

func (l *ActivityLogger) LogEmailScan(ctx context.Context, user, from, subject, result string) {
	l.append(ctx, CategoryEmailScan, Fields{
		FieldUser:    user,
		FieldFrom:    from,
		FieldSubject: subject,
		FieldResult:  result,
	})
}

func (l *ActivityLogger) LogPhishingDetection(ctx context.Context, from, subject, riskLevel, details string) {
	l.append(ctx, CategoryPhishingDetected, Fields{
		FieldFrom:      from,
		FieldSubject:   subject,
		FieldRiskLevel: riskLevel,
		FieldDetails:   details,
	})
}

func (l *ActivityLogger) LogFailedAuth(ctx context.Context, username, ipAddress, reason string) {
	l.append(ctx, CategoryFailedAuth, Fields{
		FieldUsername:  username,
		FieldIPAddress: ipAddress,
		FieldReason:    reason,
	})
}

func (l *ActivityLogger) LogUserAction(ctx context.Context, user, action, details string) {
	l.append(ctx, CategoryUserAction, Fields{
		FieldUser:    user,
		FieldAction:  action,
		FieldDetails: details,
	})
}

func (l *ActivityLogger) LogAdminAction(ctx context.Context, admin, action, target, details string) {
	l.append(ctx, CategoryAdminAction, Fields{
		FieldAdmin:   admin,
		FieldAction:  action,
		FieldTarget:  target,
		FieldDetails: details,
	})
}

func (l *ActivityLogger) LogError(ctx context.Context, module, errorMessage, trace string) {
	l.append(ctx, CategoryError, Fields{
		FieldModule: module,
		FieldError:  errorMessage,
		FieldTrace:  trace,
	})
}

func (l *ActivityLogger) LogWarning(ctx context.Context, module, warning string) {
	l.append(ctx, CategoryWarning, Fields{
		FieldModule:  module,
		FieldWarning: warning,
	})
}

func NewActivityLogger(appender Appender) *ActivityLogger {
	return &ActivityLogger{
		appender: appender,
	}
}
