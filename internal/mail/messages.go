package mail

import (
	"fmt"
	"strings"

	"github.com/khanghh/phishsoc/internal/eventlog"
)

const alertTimeLayout = "2006-01-02 15:04:05 MST"

func phishingAlertMessage(recipients []string, event *eventlog.Event) *Message {
	f := event.Fields
	var body strings.Builder
	fmt.Fprintf(&body, "A phishing email was detected at %s.\n\n", event.Time.Format(alertTimeLayout))
	fmt.Fprintf(&body, "From:    %s\n", f[eventlog.FieldFrom])
	fmt.Fprintf(&body, "Subject: %s\n", f[eventlog.FieldSubject])
	fmt.Fprintf(&body, "Risk:    %s\n", f[eventlog.FieldRiskLevel])
	fmt.Fprintf(&body, "Details: %s\n\n", f[eventlog.FieldDetails])
	fmt.Fprintf(&body, "Log entry:\n%s\n", event.Line)

	return &Message{
		To:      recipients,
		Subject: fmt.Sprintf("[%s] Phishing email from %s", f[eventlog.FieldRiskLevel], f[eventlog.FieldFrom]),
		Body:    body.String(),
	}
}
