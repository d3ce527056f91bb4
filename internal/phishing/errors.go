package phishing

import "fmt"

// ValidationError reports email content that cannot be scored as given.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid email content: %s %s", e.Field, e.Reason)
}
