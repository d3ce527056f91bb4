// Package audit mirrors activity log events into the audit table so they
// can be queried with SQL.
package audit

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/khanghh/phishsoc/internal/eventlog"
	"github.com/khanghh/phishsoc/model"
)

// actorFields are checked in order for the account an event is about.
var actorFields = []string{
	eventlog.FieldUsername,
	eventlog.FieldUser,
	eventlog.FieldAdmin,
}

// Recorder implements eventlog.Mirror on top of an AuditEventRepository.
type Recorder struct {
	repo AuditEventRepository
}

func actorOf(fields map[string]string) string {
	for _, key := range actorFields {
		if v, ok := fields[key]; ok && v != "null" {
			return v
		}
	}
	return ""
}

func (r *Recorder) RecordEvent(ctx context.Context, event *eventlog.Event) error {
	fieldsJSON, err := json.Marshal(event.Fields)
	if err != nil {
		return err
	}
	ip := event.Fields[eventlog.FieldIPAddress]
	if ip == "null" {
		ip = ""
	}
	return r.repo.RecordEvent(ctx, &model.AuditEvent{
		Category:  string(event.Category),
		Streams:   strings.Join(event.Streams, ","),
		Username:  actorOf(event.Fields),
		IP:        ip,
		Line:      event.Line,
		Fields:    string(fieldsJSON),
		EventTime: event.Time,
	})
}

func NewRecorder(repo AuditEventRepository) *Recorder {
	return &Recorder{
		repo: repo,
	}
}
