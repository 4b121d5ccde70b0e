package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// AMQP (optional; empty URL disables the event trail)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Insights
	InsightsModel    string
	InsightsCacheTTL time.Duration

	// Import pipeline stage delays
	ImportInspectDelay time.Duration
	ImportSettleDelay  time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "vexpenses"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		InsightsModel:    getEnv("INSIGHTS_MODEL", "gemini-2.5-flash"),
		InsightsCacheTTL: getEnvDuration("INSIGHTS_CACHE_TTL", 5*time.Minute),

		ImportInspectDelay: getEnvDuration("IMPORT_INSPECT_DELAY", time.Second),
		ImportSettleDelay:  getEnvDuration("IMPORT_SETTLE_DELAY", 500*time.Millisecond),
	}
}

// Validate checks the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
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
	}

	if c.InsightsModel == "" {
		errors = append(errors, "insights model cannot be empty")
	}
	if c.InsightsCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid insights cache TTL %v: must not be negative", c.InsightsCacheTTL))
	}

	if c.ImportInspectDelay < 0 || c.ImportInspectDelay > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid import inspect delay %v: must be between 0 and 1 minute", c.ImportInspectDelay))
	}
	if c.ImportSettleDelay < 0 || c.ImportSettleDelay > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid import settle delay %v: must be between 0 and 1 minute", c.ImportSettleDelay))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
