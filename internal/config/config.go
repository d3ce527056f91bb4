package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/khanghh/phishsoc/params"
	"github.com/spf13/viper"
)

const (
	DefaultListenAddr        = ":8080"
	DefaultHealthCheckAddr   = params.HealthCheckServerAddr
	MinMasterKeyLength       = 32
	DefaultSMTPPort          = 587
	DefaultAlertMinRiskLevel = "HIGH"
)

const (
	RevocationBackendMemory = "memory"
	RevocationBackendRedis  = "redis"
)

type MySQLConfig struct {
	Dsn             string        `mapstructure:"dsn"`
	TablePrefix     string        `mapstructure:"tablePrefix"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	URL         string `mapstructure:"url"`
	PoolSize    int    `mapstructure:"poolSize"`
	ClusterMode bool   `mapstructure:"clusterMode"`
}

type TokenConfig struct {
	Lifetime time.Duration `mapstructure:"lifetime"`
	Issuer   string        `mapstructure:"issuer"`
}

type LogsConfig struct {
	Dir       string `mapstructure:"dir"`
	Async     bool   `mapstructure:"async"`
	QueueSize int    `mapstructure:"queueSize"`
}

type RevocationConfig struct {
	Backend string `mapstructure:"backend"`
}

type PhishingConfig struct {
	SuspiciousDomains []string `mapstructure:"suspiciousDomains"`
}

type RateLimitConfig struct {
	LoginMax int           `mapstructure:"loginMax"`
	Window   time.Duration `mapstructure:"window"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	TLS      bool   `mapstructure:"tls"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
	CAFile   string `mapstructure:"caFile"`
}

type AlertsConfig struct {
	Recipients   []string   `mapstructure:"recipients"`
	MinRiskLevel string     `mapstructure:"minRiskLevel"`
	SMTP         SMTPConfig `mapstructure:"smtp"`
}

type Config struct {
	Debug           bool             `mapstructure:"debug"`
	MasterKey       string           `mapstructure:"masterKey"`
	ListenAddr      string           `mapstructure:"listenAddr"`
	HealthCheckAddr string           `mapstructure:"healthCheckAddr"`
	AllowOrigins    []string         `mapstructure:"allowOrigins"`
	TrustedProxies  []string         `mapstructure:"trustedProxies"`
	Admins          []string         `mapstructure:"admins"`
	Token           TokenConfig      `mapstructure:"token"`
	Logs            LogsConfig       `mapstructure:"logs"`
	Revocation      RevocationConfig `mapstructure:"revocation"`
	Redis           RedisConfig      `mapstructure:"redis"`
	MySQL           MySQLConfig      `mapstructure:"mysql"`
	Phishing        PhishingConfig   `mapstructure:"phishing"`
	RateLimit       RateLimitConfig  `mapstructure:"rateLimit"`
	Alerts          AlertsConfig     `mapstructure:"alerts"`
}

// RedisEnabled reports whether a Redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.URL != ""
}

// AuditEnabled reports whether log events are mirrored into MySQL.
func (c *Config) AuditEnabled() bool {
	return c.MySQL.Dsn != ""
}

// AlertsEnabled reports whether phishing alerts are emailed.
func (c *Config) AlertsEnabled() bool {
	return len(c.Alerts.Recipients) > 0
}

func (c *Config) IsAdmin(subject string) bool {
	for _, admin := range c.Admins {
		if strings.EqualFold(admin, subject) {
			return true
		}
	}
	return false
}

func (c *Config) Sanitize() error {
	if len(c.MasterKey) < MinMasterKeyLength {
		return fmt.Errorf("masterKey must be at least %d bytes", MinMasterKeyLength)
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.HealthCheckAddr == "" {
		c.HealthCheckAddr = DefaultHealthCheckAddr
	}
	for _, proxy := range c.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("invalid trustedProxies entry %q", proxy)
			}
		}
	}
	if c.Token.Lifetime < 0 {
		return errors.New("token.lifetime must not be negative")
	}
	if c.Token.Lifetime == 0 {
		c.Token.Lifetime = params.TokenLifetime
	}
	if c.Token.Issuer == "" {
		c.Token.Issuer = params.TokenIssuer
	}
	if c.Logs.Dir == "" {
		c.Logs.Dir = params.LogDir
	}
	if c.Logs.QueueSize <= 0 {
		c.Logs.QueueSize = params.LogQueueSize
	}
	switch c.Revocation.Backend {
	case "":
		c.Revocation.Backend = RevocationBackendMemory
	case RevocationBackendMemory:
	case RevocationBackendRedis:
		if !c.RedisEnabled() {
			return errors.New("revocation.backend redis requires redis.url")
		}
	default:
		return fmt.Errorf("unsupported revocation backend %q", c.Revocation.Backend)
	}
	if c.AuditEnabled() {
		if _, err := mysql.ParseDSN(c.MySQL.Dsn); err != nil {
			return fmt.Errorf("invalid mysql.dsn: %w", err)
		}
	}
	if len(c.Phishing.SuspiciousDomains) == 0 {
		c.Phishing.SuspiciousDomains = params.DefaultSuspiciousDomains
	}
	if c.AlertsEnabled() {
		if c.Alerts.SMTP.Host == "" || c.Alerts.SMTP.From == "" {
			return errors.New("alerts require alerts.smtp.host and alerts.smtp.from")
		}
		if c.Alerts.SMTP.Port == 0 {
			c.Alerts.SMTP.Port = DefaultSMTPPort
		}
		switch strings.ToUpper(c.Alerts.MinRiskLevel) {
		case "":
			c.Alerts.MinRiskLevel = DefaultAlertMinRiskLevel
		case "LOW", "MEDIUM", "HIGH", "CRITICAL":
			c.Alerts.MinRiskLevel = strings.ToUpper(c.Alerts.MinRiskLevel)
		default:
			return fmt.Errorf("unsupported alerts.minRiskLevel %q", c.Alerts.MinRiskLevel)
		}
	}
	if c.RateLimit.LoginMax <= 0 {
		c.RateLimit.LoginMax = params.LoginRateLimitMax
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = params.LoginRateLimitWindow
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
