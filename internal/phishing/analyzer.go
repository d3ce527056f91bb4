// Package phishing scores emails for phishing indicators.
package phishing

import (
	"context"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"

	"github.com/khanghh/phishsoc/internal/metrics"
	"github.com/khanghh/phishsoc/params"
)

const (
	weightSuspiciousSender = 40
	weightManyLinks        = 30
	weightAttachments      = 20
	weightBodyPhrase       = 30

	// score at which confidence saturates, the sum of all weights
	maxScore = weightSuspiciousSender + weightManyLinks + weightAttachments + weightBodyPhrase
)

var bodyPhrases = []string{"verify account", "confirm password"}

const (
	scanResultComplete = "ANALYSIS_COMPLETE"
	loggerModule       = "EmailAnalysisService"
)

// ActivityLogger receives the outcome of every analysis.
type ActivityLogger interface {
	LogEmailScan(ctx context.Context, user, from, subject, result string)
	LogPhishingDetection(ctx context.Context, from, subject, riskLevel, details string)
	LogWarning(ctx context.Context, module, warning string)
}

type Option func(*Analyzer)

func WithSuspiciousDomains(domains []string) Option {
	return func(a *Analyzer) {
		a.suspiciousDomains = make(map[string]struct{}, len(domains))
		for _, d := range domains {
			d = strings.ToLower(strings.TrimSpace(d))
			if d != "" {
				a.suspiciousDomains[d] = struct{}{}
			}
		}
	}
}

type Analyzer struct {
	suspiciousDomains map[string]struct{}
	logger            ActivityLogger
}

// senderDomain returns the lower-cased part after the first '@' of the
// sender, or "" when there is none. Display-name forms are accepted.
func senderDomain(from string) string {
	addr := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	}
	_, domain, found := strings.Cut(addr, "@")
	if !found {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(domain))
}

func riskLevelOf(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}

func confidenceOf(score int) float64 {
	s := math.Min(float64(score), maxScore)
	c := 0.60 + 0.40*s/maxScore
	return math.Round(c*100) / 100
}

// Score computes the assessment of content. It has no side effects.
//
// The phishing verdict considers links, sender domain and attachments only,
// so it can disagree with the risk level: a single attachment is phishing
// at LOW risk, and a body phrase alone is MEDIUM risk but not phishing.
func (a *Analyzer) Score(content *EmailContent) *Assessment {
	domain := senderDomain(content.FromAddress)
	_, suspicious := a.suspiciousDomains[domain]
	suspicious = suspicious && domain != ""

	manyLinks := content.LinkCount > params.PhishingLinkThreshold
	hasAttachments := content.AttachmentCount > 0

	body := strings.ToLower(content.Body)
	hasPhrase := false
	for _, phrase := range bodyPhrases {
		if strings.Contains(body, phrase) {
			hasPhrase = true
			break
		}
	}

	score := 0
	if suspicious {
		score += weightSuspiciousSender
	}
	if manyLinks {
		score += weightManyLinks
	}
	if hasAttachments {
		score += weightAttachments
	}
	if hasPhrase {
		score += weightBodyPhrase
	}

	return &Assessment{
		Score:            score,
		RiskLevel:        riskLevelOf(score),
		IsPhishing:       manyLinks || suspicious || hasAttachments,
		Confidence:       confidenceOf(score),
		SenderDomain:     domain,
		SuspiciousSender: suspicious,
	}
}

// Analyze scores content on behalf of user and records the outcome: a
// PHISHING_DETECTED event when the email is phishing, an EMAIL_SCAN event
// otherwise.
func (a *Analyzer) Analyze(ctx context.Context, emailID, user string, content *EmailContent) (*AnalysisResult, error) {
	if err := content.Validate(); err != nil {
		return nil, err
	}
	assessment := a.Score(content)

	if assessment.SenderDomain == "" {
		a.logger.LogWarning(ctx, loggerModule, fmt.Sprintf("Sender address has no domain: %q", content.FromAddress))
	}
	if assessment.IsPhishing {
		details := fmt.Sprintf("Links: %d, Attachments: %d", content.LinkCount, content.AttachmentCount)
		a.logger.LogPhishingDetection(ctx, content.FromAddress, content.Subject, string(assessment.RiskLevel), details)
	} else {
		a.logger.LogEmailScan(ctx, user, content.FromAddress, content.Subject, scanResultComplete)
	}
	metrics.EmailScans.WithLabelValues(string(assessment.RiskLevel), strconv.FormatBool(assessment.IsPhishing)).Inc()

	return &AnalysisResult{
		EmailID:    emailID,
		IsPhishing: assessment.IsPhishing,
		RiskLevel:  assessment.RiskLevel,
		Confidence: assessment.Confidence,
		Score:      assessment.Score,
	}, nil
}

func NewAnalyzer(logger ActivityLogger, opts ...Option) *Analyzer {
	a := &Analyzer{logger: logger}
	WithSuspiciousDomains(params.DefaultSuspiciousDomains)(a)
	for _, opt := range opts {
		opt(a)
	}
	return a
}
