package model

import "time"

// AuditEvent is a queryable copy of an event written to the log streams.
type AuditEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Category  string    `gorm:"size:32;not null;index"`  // LOGIN_ATTEMPT, PHISHING_DETECTED...
	Streams   string    `gorm:"size:64;not null"`        // comma separated stream names the line went to
	Username  string    `gorm:"size:255;index"`          // username, user or admin field when present
	IP        string    `gorm:"size:45"`                 // IPv4/IPv6 when present
	Line      string    `gorm:"type:text;not null"`      // formatted log line
	Fields    string    `gorm:"type:text;not null"`      // JSON object of all event fields
	EventTime time.Time `gorm:"not null;index"`          // time the event was appended
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AuditEvent) TableName() string {
	return "audit"
}
