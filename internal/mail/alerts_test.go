package mail

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/khanghh/phishsoc/internal/eventlog"
	"github.com/khanghh/phishsoc/internal/phishing"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*Message
}

func (s *fakeSender) Send(message *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, message)
	return nil
}

func phishingEvent(risk string) *eventlog.Event {
	return &eventlog.Event{
		Time:     time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Category: eventlog.CategoryPhishingDetected,
		Streams:  []string{eventlog.StreamSecurity},
		Fields: map[string]string{
			eventlog.FieldFrom:      "x@scam.com",
			eventlog.FieldSubject:   "Verify",
			eventlog.FieldRiskLevel: risk,
			eventlog.FieldDetails:   "Links: 9, Attachments: 1",
		},
		Line: "[2026-03-01 08:00:00] PHISHING_DETECTED | From: x@scam.com | Subject: Verify | Risk: " + risk + " | Details: Links: 9, Attachments: 1",
	}
}

func TestAlertNotifierFiltersByRisk(t *testing.T) {
	sender := &fakeSender{}
	n := NewAlertNotifier(sender, []string{"soc@example.com"}, phishing.RiskHigh)
	ctx := context.Background()

	n.RecordEvent(ctx, phishingEvent("LOW"))
	n.RecordEvent(ctx, phishingEvent("MEDIUM"))
	n.RecordEvent(ctx, phishingEvent("HIGH"))
	n.RecordEvent(ctx, phishingEvent("CRITICAL"))
	n.RecordEvent(ctx, &eventlog.Event{Category: eventlog.CategoryEmailScan, Fields: map[string]string{}})
	n.Close()

	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Subject != "[HIGH] Phishing email from x@scam.com" || msg.To[0] != "soc@example.com" || msg.IsHTML {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !strings.Contains(msg.Body, "Details: Links: 9, Attachments: 1") || !strings.Contains(msg.Body, "2026-03-01 08:00:00 UTC") {
		t.Fatalf("unexpected body %q", msg.Body)
	}

	if err := n.RecordEvent(ctx, phishingEvent("CRITICAL")); err != nil {
		t.Fatalf("RecordEvent after Close: %v", err)
	}
	n.Close()
	if len(sender.sent) != 2 {
		t.Fatalf("expected no alerts after Close, got %d", len(sender.sent))
	}
}

func TestAlertNotifierUnknownMinRiskDefaultsToHigh(t *testing.T) {
	sender := &fakeSender{}
	n := NewAlertNotifier(sender, []string{"soc@example.com"}, phishing.RiskLevel("bogus"))
	n.RecordEvent(context.Background(), phishingEvent("MEDIUM"))
	n.RecordEvent(context.Background(), phishingEvent("HIGH"))
	n.Close()
	if len(sender.sent) != 1 {
		t.Fatalf("expected only the HIGH alert, got %d", len(sender.sent))
	}
}

func TestNewSMTPMailSender(t *testing.T) {
	sender, err := NewSMTPMailSender(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "soc@example.com"})
	if err != nil {
		t.Fatalf("NewSMTPMailSender: %v", err)
	}
	if sender.From != "soc@example.com" || sender.Host != "smtp.example.com" || sender.Port != 587 {
		t.Fatalf("unexpected sender %+v", sender)
	}

	_, err = NewSMTPMailSender(SMTPConfig{Host: "smtp.example.com", TLS: true, CertFile: "/nonexistent.pem", KeyFile: "/nonexistent.key"})
	if err == nil {
		t.Fatal("expected error for missing client certificate")
	}
}
