package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	// HTTP Server
	Port               string
	CORSAllowedOrigins []string

	// TrustedProxies are CIDRs or IPs whose X-Forwarded-For header is believed.
	TrustedProxies    []string
	GenerateRateLimit int

	// Backend selection
	DataBackend  string
	SQLiteDBPath string

	// AMQP, optional: events are only published when AMQPURL is set
	AMQPURL        string
	AMQPExchange   string
	AMQPQueue      string
	EventQueueSize int

	// Generation
	RecurringSchedule string
	HorizonMonths     int
	GenerationTimeout time.Duration
	TopUpConcurrency  int

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES", nil),
		GenerateRateLimit:  getEnvInt("GENERATE_RATE_LIMIT", 6),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/liquidity.db"),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "liquidity"),
		AMQPQueue:      getEnv("AMQP_QUEUE", "occurrence_events"),
		EventQueueSize: getEnvInt("AMQP_EVENT_QUEUE_SIZE", 256),

		RecurringSchedule: getEnv("RECURRING_SCHEDULE", "@every 1h"),
		HorizonMonths:     getEnvInt("GENERATION_HORIZON_MONTHS", 12),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 2*time.Minute),
		TopUpConcurrency:  getEnvInt("TOPUP_CONCURRENCY", 4),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be an IP or CIDR", proxy))
		}
	}

	if c.GenerateRateLimit < 1 || c.GenerateRateLimit > 1000 {
		errors = append(errors, fmt.Sprintf("invalid generate rate limit %d: must be between 1 and 1000 per minute", c.GenerateRateLimit))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
		if c.EventQueueSize < 1 {
			errors = append(errors, fmt.Sprintf("invalid AMQP event queue size %d: must be at least 1", c.EventQueueSize))
		}
	}

	if _, err := cron.ParseStandard(c.RecurringSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid recurring schedule '%s': %v", c.RecurringSchedule, err))
	}

	if c.HorizonMonths < 1 || c.HorizonMonths > 120 {
		errors = append(errors, fmt.Sprintf("invalid generation horizon %d: must be between 1 and 120 months", c.HorizonMonths))
	}

	if c.GenerationTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid generation timeout %v: must be at least 1 second", c.GenerationTimeout))
	} else if c.GenerationTimeout > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid generation timeout %v: must be at most 1 hour", c.GenerationTimeout))
	}

	if c.TopUpConcurrency < 1 || c.TopUpConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid top-up concurrency %d: must be between 1 and 64", c.TopUpConcurrency))
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ParseLogLevel maps LOG_LEVEL values to slog levels.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be debug, info, warn or error", level)
	}
	return l, nil
}

func validProxy(value string) bool {
	if _, _, err := net.ParseCIDR(value); err == nil {
		return true
	}
	return net.ParseIP(value) != nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
