package phishing

type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

type EmailContent struct {
	FromAddress     string `json:"fromAddress"`
	ToAddress       string `json:"toAddress"`
	Subject         string `json:"subject"`
	Body            string `json:"content"`
	LinkCount       int    `json:"linkCount"`
	AttachmentCount int    `json:"attachmentCount"`
}

// Validate rejects counts that no real message can have. A sender without a
// domain is not an error, it is simply never suspicious.
func (c *EmailContent) Validate() error {
	if c.LinkCount < 0 {
		return &ValidationError{Field: "linkCount", Reason: "must not be negative"}
	}
	if c.AttachmentCount < 0 {
		return &ValidationError{Field: "attachmentCount", Reason: "must not be negative"}
	}
	return nil
}

// Assessment is the outcome of scoring one email.
type Assessment struct {
	Score      int
	RiskLevel  RiskLevel
	IsPhishing bool
	Confidence float64
	// SenderDomain is empty when the sender address has no '@'.
	SenderDomain     string
	SuspiciousSender bool
}

type AnalysisResult struct {
	EmailID    string    `json:"emailId"`
	IsPhishing bool      `json:"isPhishing"`
	RiskLevel  RiskLevel `json:"riskLevel"`
	Confidence float64   `json:"confidence"`
	Score      int       `json:"score"`
}
