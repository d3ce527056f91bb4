package eventlog

import (
	"github.com/spf13/cast"
)

type Category string

const (
	CategoryLoginAttempt     Category = "LOGIN_ATTEMPT"
	CategoryLogout           Category = "LOGOUT"
	CategoryEmailScan        Category = "EMAIL_SCAN"
	CategoryPhishingDetected Category = "PHISHING_DETECTED"
	CategoryFailedAuth       Category = "FAILED_AUTH"
	CategoryUserAction       Category = "USER_ACTION"
	CategoryAdminAction      Category = "ADMIN_ACTION"
	CategoryError            Category = "ERROR"
	CategoryWarning          Category = "WARNING"
)

const (
	StreamDebug    = "debug"
	StreamSecurity = "security"
	StreamAdmin    = "admin_actions"
)

// Streams lists the named streams in summary order.
var Streams = []string{StreamDebug, StreamSecurity, StreamAdmin}

var streamDescriptions = map[string]string{
	StreamDebug:    "Application Debug Logs",
	StreamSecurity: "Security Events Logs",
	StreamAdmin:    "Admin Actions Logs",
}

// Field keys accepted in Fields.
const (
	FieldUsername  = "username"
	FieldIPAddress = "ipAddress"
	FieldSuccess   = "success"
	FieldUser      = "user"
	FieldFrom      = "from"
	FieldSubject   = "subject"
	FieldResult    = "result"
	FieldRiskLevel = "riskLevel"
	FieldDetails   = "details"
	FieldReason    = "reason"
	FieldAction    = "action"
	FieldAdmin     = "admin"
	FieldTarget    = "target"
	FieldModule    = "module"
	FieldError     = "error"
	FieldTrace     = "trace"
	FieldWarning   = "warning"
)

type field struct {
	key   string
	label string
}

// schemas fix the order and labels of fields on a line. Log parsers depend
// on this order.
var schemas = map[Category][]field{
	CategoryLoginAttempt: {
		{FieldUsername, "Username"},
		{FieldIPAddress, "IP"},
		{FieldSuccess, "Success"},
	},
	CategoryLogout: {
		{FieldUsername, "Username"},
		{FieldIPAddress, "IP"},
	},
	CategoryEmailScan: {
		{FieldUser, "User"},
		{FieldFrom, "From"},
		{FieldSubject, "Subject"},
		{FieldResult, "Result"},
	},
	CategoryPhishingDetected: {
		{FieldFrom, "From"},
		{FieldSubject, "Subject"},
		{FieldRiskLevel, "Risk"},
		{FieldDetails, "Details"},
	},
	CategoryFailedAuth: {
		{FieldUsername, "Username"},
		{FieldIPAddress, "IP"},
		{FieldReason, "Reason"},
	},
	CategoryUserAction: {
		{FieldUser, "User"},
		{FieldAction, "Action"},
		{FieldDetails, "Details"},
	},
	CategoryAdminAction: {
		{FieldAdmin, "Admin"},
		{FieldAction, "Action"},
		{FieldTarget, "Target"},
		{FieldDetails, "Details"},
	},
	CategoryError: {
		{FieldModule, "Module"},
		{FieldError, "Error"},
		{FieldTrace, "Trace"},
	},
	CategoryWarning: {
		{FieldModule, "Module"},
		{FieldWarning, "Warning"},
	},
}

type Fields map[string]any

func (c Category) Valid() bool {
	_, ok := schemas[c]
	return ok
}

// streams returns the streams an event of category c with fields goes to.
// A login attempt that is not explicitly successful is also a security event.
func (c Category) streams(fields Fields) []string {
	switch c {
	case CategoryLoginAttempt:
		if cast.ToBool(fields[FieldSuccess]) {
			return []string{StreamDebug}
		}
		return []string{StreamDebug, StreamSecurity}
	case CategoryLogout, CategoryEmailScan, CategoryUserAction:
		return []string{StreamDebug}
	case CategoryAdminAction:
		return []string{StreamAdmin}
	default:
		return []string{StreamSecurity}
	}
}
