package audit

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/khanghh/phishsoc/internal/eventlog"
	"github.com/khanghh/phishsoc/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

type captureRepository struct {
	events []*model.AuditEvent
}

func (r *captureRepository) RecordEvent(ctx context.Context, event *model.AuditEvent) error {
	r.events = append(r.events, event)
	return nil
}

func TestRecorderMapsEvent(t *testing.T) {
	repo := &captureRepository{}
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := NewRecorder(repo).RecordEvent(context.Background(), &eventlog.Event{
		Time:     ts,
		Category: eventlog.CategoryLoginAttempt,
		Streams:  []string{eventlog.StreamDebug, eventlog.StreamSecurity},
		Fields: map[string]string{
			eventlog.FieldUsername:  "mallory",
			eventlog.FieldIPAddress: "10.0.0.9",
			eventlog.FieldSuccess:   "false",
		},
		Line: "[2026-01-02 03:04:05] LOGIN_ATTEMPT | Username: mallory | IP: 10.0.0.9 | Success: false",
	})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected one audit row, got %d", len(repo.events))
	}
	got := repo.events[0]
	if got.Category != "LOGIN_ATTEMPT" || got.Streams != "debug,security" || got.Username != "mallory" || got.IP != "10.0.0.9" {
		t.Fatalf("unexpected audit row %+v", got)
	}
	if got.Fields != `{"ipAddress":"10.0.0.9","success":"false","username":"mallory"}` {
		t.Fatalf("unexpected fields JSON %s", got.Fields)
	}
	if !got.EventTime.Equal(ts) {
		t.Fatalf("unexpected event time %v", got.EventTime)
	}
}

func TestRecorderActorFallback(t *testing.T) {
	tests := []struct {
		fields map[string]string
		want   string
	}{
		{map[string]string{eventlog.FieldUser: "alice"}, "alice"},
		{map[string]string{eventlog.FieldAdmin: "root"}, "root"},
		{map[string]string{eventlog.FieldUsername: "null", eventlog.FieldUser: "bob"}, "bob"},
		{map[string]string{eventlog.FieldModule: "api"}, ""},
	}
	for _, tt := range tests {
		if got := actorOf(tt.fields); got != tt.want {
			t.Errorf("actorOf(%v) = %q, want %q", tt.fields, got, tt.want)
		}
	}
}

func TestRepositoryInsertsAuditRow(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `audit`")).
		WithArgs("WARNING", "security", "", "", "line", "{}", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	event := &model.AuditEvent{
		Category:  "WARNING",
		Streams:   "security",
		Line:      "line",
		Fields:    "{}",
		EventTime: time.Now(),
	}
	if err := NewAuditEventRepository(db).RecordEvent(context.Background(), event); err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if event.ID != 7 {
		t.Fatalf("expected generated ID 7, got %d", event.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryReturnsInsertError(t *testing.T) {
	db, mock := newMockDB(t)
	dbErr := errors.New("connection refused")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `audit`")).WillReturnError(dbErr)

	err := NewRecorder(NewAuditEventRepository(db)).RecordEvent(context.Background(), &eventlog.Event{
		Time:     time.Now(),
		Category: eventlog.CategoryError,
		Streams:  []string{eventlog.StreamSecurity},
		Fields:   map[string]string{eventlog.FieldModule: "api"},
	})
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected insert error, got %v", err)
	}
}
