// Package mail sends SOC alert emails for detected phishing.
package mail

import (
	"context"
	"log/slog"
	"sync"

	"github.com/khanghh/phishsoc/internal/eventlog"
	"github.com/khanghh/phishsoc/internal/phishing"
)

const defaultAlertQueueSize = 64

var riskRank = map[phishing.RiskLevel]int{
	phishing.RiskLow:      0,
	phishing.RiskMedium:   1,
	phishing.RiskHigh:     2,
	phishing.RiskCritical: 3,
}

// AlertNotifier emails PHISHING_DETECTED events at or above a risk level.
// It implements eventlog.Mirror. Mail is sent by a background worker so
// appends never wait on SMTP; alerts are dropped when the queue is full.
type AlertNotifier struct {
	sender     MailSender
	recipients []string
	minRank    int

	mu      sync.RWMutex
	closed  bool
	pending chan *Message
	done    chan struct{}
}

func (n *AlertNotifier) RecordEvent(ctx context.Context, event *eventlog.Event) error {
	if event.Category != eventlog.CategoryPhishingDetected {
		return nil
	}
	rank, ok := riskRank[phishing.RiskLevel(event.Fields[eventlog.FieldRiskLevel])]
	if !ok || rank < n.minRank {
		return nil
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return nil
	}
	select {
	case n.pending <- phishingAlertMessage(n.recipients, event):
	default:
		slog.Warn("Alert queue full, dropping phishing alert", "from", event.Fields[eventlog.FieldFrom])
	}
	return nil
}

func (n *AlertNotifier) run() {
	defer close(n.done)
	for msg := range n.pending {
		if err := n.sender.Send(msg); err != nil {
			slog.Error("Failed to send phishing alert", "subject", msg.Subject, "error", err)
		}
	}
}

// Close sends the queued alerts and stops the worker.
func (n *AlertNotifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.pending)
	n.mu.Unlock()
	<-n.done
}

func NewAlertNotifier(sender MailSender, recipients []string, minRiskLevel phishing.RiskLevel) *AlertNotifier {
	minRank, ok := riskRank[minRiskLevel]
	if !ok {
		minRank = riskRank[phishing.RiskHigh]
	}
	n := &AlertNotifier{
		sender:     sender,
		recipients: recipients,
		minRank:    minRank,
		pending:    make(chan *Message, defaultAlertQueueSize),
		done:       make(chan struct{}),
	}
	go n.run()
	return n
}
