package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultLogLevel           = "info"
	defaultSMTPAddr           = "smtp.gmail.com:587"
	defaultAlertRecipient     = "qa-team@example.com"
	defaultHTTPTimeout        = 10 * time.Second
	defaultResolveConcurrency = 4

	httpTimeoutSecondsEnvVar  = "HTTP_TIMEOUT_SECONDS"
	httpTimeoutDurationEnvVar = "HTTP_TIMEOUT"
	resolveConcurrencyEnvVar  = "RESOLVE_CONCURRENCY"
)

// Config captures runtime configuration loaded from environment variables.
// Collaborator endpoints and notification credentials are required; their
// absence is reported once at startup.
type Config struct {
	LogLevel string

	BankFeedURL      string
	UploadURL        string
	CustomerAPIURL   string
	AllocationAPIURL string

	WebhookURL         string
	SMTPAddr           string
	AlertEmail         string
	AlertEmailPassword string
	AlertEmailTo       string

	HTTPTimeout        time.Duration
	ResolveConcurrency int
}

// Load reads configuration values from the environment and populates a
// Config instance.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		BankFeedURL:        os.Getenv("BANK_FEED_URL"),
		UploadURL:          os.Getenv("UPLOAD_URL"),
		CustomerAPIURL:     os.Getenv("CUSTOMER_API_URL"),
		AllocationAPIURL:   os.Getenv("ALLOCATION_API_URL"),
		WebhookURL:         os.Getenv("SLACK_WEBHOOK_URL"),
		SMTPAddr:           getEnv("SMTP_ADDR", defaultSMTPAddr),
		AlertEmail:         os.Getenv("ALERT_EMAIL"),
		AlertEmailPassword: os.Getenv("ALERT_EMAIL_PASSWORD"),
		AlertEmailTo:       getEnv("ALERT_EMAIL_TO", defaultAlertRecipient),
		HTTPTimeout:        defaultHTTPTimeout,
		ResolveConcurrency: defaultResolveConcurrency,
	}

	if v := os.Getenv(httpTimeoutSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", httpTimeoutSecondsEnvVar, err)
		}
		cfg.HTTPTimeout = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(httpTimeoutDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", httpTimeoutDurationEnvVar, err)
		}
		cfg.HTTPTimeout = d
	}

	if v := os.Getenv(resolveConcurrencyEnvVar); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid %s: %q must be a positive integer", resolveConcurrencyEnvVar, v)
		}
		cfg.ResolveConcurrency = n
	}

	required := []struct {
		name  string
		value string
	}{
		{"BANK_FEED_URL", cfg.BankFeedURL},
		{"UPLOAD_URL", cfg.UploadURL},
		{"CUSTOMER_API_URL", cfg.CustomerAPIURL},
		{"ALLOCATION_API_URL", cfg.AllocationAPIURL},
		{"SLACK_WEBHOOK_URL", cfg.WebhookURL},
		{"ALERT_EMAIL", cfg.AlertEmail},
		{"ALERT_EMAIL_PASSWORD", cfg.AlertEmailPassword},
	}
	for _, req := range required {
		if req.value == "" {
			return Config{}, fmt.Errorf("%s must be set", req.name)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
