package params

import "time"

const (
	ServerBodyLimit       = 1048576 // 1 MiB
	ServerIdleTimeout     = 30 * time.Second
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 10 * time.Second
	ServerShutdownTimeout = 15 * time.Second
	HealthCheckServerAddr = ":3001"         // default health check server address
	RevocationKeyPrefix   = "r:"            // storage key prefix for revoked tokens
	TokenLifetime         = 24 * time.Hour  // default session token lifetime
	TokenIssuer           = "phishsoc"      // default token issuer
	LoginRateLimitMax     = 10              // login attempts allowed per window per client ip
	LoginRateLimitWindow  = 1 * time.Minute // login rate limit window
	LogDir                = "logs"          // default directory holding <stream>.log files
	LogQueueSize          = 1024            // per stream queue size when async log writing is enabled
	LogReadDefaultLines   = 100             // default number of lines returned by log read
	LogMaxValueLength     = 8 * 1024        // longest rendered field value, longer values are truncated
	LogReadMaxLineLength  = 1024 * 1024     // lines read back are cut at this many bytes
	PhishingLinkThreshold = 5               // more links than this is a phishing indicator
	APIVersion            = "1.0"           // version reported in every API response
	UnknownUsername       = "UNKNOWN"       // username logged when the caller cannot be identified
)

var DefaultSuspiciousDomains = []string{
	"phishing.com",
	"fake.com",
	"scam.com",
	"malicious.net",
}
