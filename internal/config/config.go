// Package config provides centralized configuration for the brain-mcp-server.
// It loads configuration from environment variables with CLI flag overrides,
// validates required fields, and provides defaults matching the Brain
// deployment conventions.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/greghughespdx/brain-mcp-server/internal/ratelimit"
	"github.com/greghughespdx/brain-mcp-server/internal/urlutil"
)

// Transport selects how the MCP server is exposed.
type Transport string

const (
	// TransportStdio serves MCP over stdin/stdout for local clients.
	TransportStdio Transport = "stdio"
	// TransportHTTP serves MCP over streamable HTTP for remote clients.
	TransportHTTP Transport = "http"
)

// Config holds all application configuration.
type Config struct {
	// Downstream Brain API
	APIBase    string        // BRAIN_API_BASE
	APITimeout time.Duration // BRAIN_API_TIMEOUT (seconds)

	// MCP transport
	Host      string    // MCP_HOST
	Port      int       // MCP_PORT
	Transport Transport // MCP_TRANSPORT

	// Public base URL for OAuth metadata; defaults to http://{Host}:{Port}.
	BaseURL string // BASE_URL

	// OAuthEnabled gates registration of the OAuth stub endpoints.
	OAuthEnabled bool // OAUTH_ENABLED

	// Rate limiting for the MCP endpoint only.
	RateLimit ratelimit.Config
}

// ValidationError aggregates configuration validation issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ParseFlags parses CLI flags. Call before LoadConfig.
func ParseFlags() (addr string, stdio bool) {
	flag.StringVar(&addr, "addr", "", "Listen address (overrides MCP_HOST/MCP_PORT)")
	flag.BoolVar(&stdio, "stdio", false, "Serve MCP over stdio (overrides MCP_TRANSPORT)")
	flag.Parse()
	return addr, stdio
}

// LoadConfig loads configuration from environment variables and flag values.
func LoadConfig(addr string, stdio bool) (*Config, error) {
	cfg := &Config{}

	cfg.APIBase = urlutil.Normalize(getEnvOrDefault("BRAIN_API_BASE", "http://192.168.15.6:8083"))
	cfg.APITimeout = parseSecondsOrDefault("BRAIN_API_TIMEOUT", 30*time.Second)

	cfg.Host = getEnvOrDefault("MCP_HOST", "127.0.0.1")
	cfg.Port = parseIntOrDefault("MCP_PORT", 8084)
	cfg.Transport = Transport(getEnvOrDefault("MCP_TRANSPORT", string(TransportStdio)))
	// The original deployment configured MCP_TRANSPORT=sse for remote access;
	// the streamable HTTP transport replaces it, so accept the old value.
	if cfg.Transport == "sse" {
		cfg.Transport = TransportHTTP
	}
	if stdio {
		cfg.Transport = TransportStdio
	}

	if addr != "" {
		host, portStr, found := strings.Cut(addr, ":")
		if found {
			if host != "" {
				cfg.Host = host
			}
			if port, err := strconv.Atoi(portStr); err == nil {
				cfg.Port = port
			}
		}
	}

	cfg.BaseURL = urlutil.Normalize(os.Getenv("BASE_URL"))
	if cfg.BaseURL == "" {
		cfg.BaseURL = urlutil.HostPortOrigin(cfg.Host, cfg.Port)
	}

	cfg.OAuthEnabled = parseBoolOrDefault("OAUTH_ENABLED", true)

	cfg.RateLimit = ratelimit.Config{
		RPS:             parseFloat64OrDefault("RATE_LIMIT_RPS", ratelimit.DefaultConfig.RPS),
		Burst:           parseIntOrDefault("RATE_LIMIT_BURST", ratelimit.DefaultConfig.Burst),
		CleanupInterval: parseDurationOrDefault("RATE_LIMIT_CLEANUP_INTERVAL", ratelimit.DefaultConfig.CleanupInterval),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.APIBase == "" {
		errs = append(errs, "BRAIN_API_BASE must not be empty")
	} else if parsed, err := url.Parse(c.APIBase); err != nil || !parsed.IsAbs() || parsed.Host == "" {
		errs = append(errs, "BRAIN_API_BASE must be an absolute URL with scheme and host")
	}

	if c.APITimeout <= 0 {
		errs = append(errs, "BRAIN_API_TIMEOUT must be positive")
	}

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, "MCP_PORT must be between 1 and 65535")
	}

	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		errs = append(errs, fmt.Sprintf("MCP_TRANSPORT must be %q, %q, or \"sse\"", TransportStdio, TransportHTTP))
	}

	if parsed, err := url.Parse(c.BaseURL); err != nil || !parsed.IsAbs() || parsed.Host == "" {
		errs = append(errs, "BASE_URL must be an absolute URL with scheme and host")
	}

	if c.RateLimit.RPS <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimit.Burst <= 0 {
		errs = append(errs, "RATE_LIMIT_BURST must be positive")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// ListenAddr returns the host:port the HTTP transport binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PrintStartupSummary prints a human-readable summary to stderr.
func (c *Config) PrintStartupSummary() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "brain-mcp-server starting...")
	fmt.Fprintf(os.Stderr, "  Brain API: %s (timeout %s)\n", c.APIBase, c.APITimeout)
	fmt.Fprintf(os.Stderr, "  Transport: %s\n", c.Transport)
	if c.Transport == TransportHTTP {
		fmt.Fprintf(os.Stderr, "  Listen:    %s\n", c.ListenAddr())
		fmt.Fprintf(os.Stderr, "  Base URL:  %s\n", c.BaseURL)
		if c.OAuthEnabled {
			fmt.Fprintln(os.Stderr, "  OAuth:     enabled (auto-approval stub)")
		} else {
			fmt.Fprintln(os.Stderr, "  OAuth:     disabled")
		}
	}
	fmt.Fprintln(os.Stderr, "")
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// parseSecondsOrDefault reads a float number of seconds, the unit used by
// the Brain deployment (e.g. BRAIN_API_TIMEOUT=30.0).
func parseSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return time.Duration(parsed * float64(time.Second))
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// MustLoadConfig loads configuration and panics if validation fails.
func MustLoadConfig(addr string, stdio bool) *Config {
	cfg, err := LoadConfig(addr, stdio)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			panic(fmt.Sprintf("Configuration validation failed:\n  - %s", strings.Join(validationErr.Errors, "\n  - ")))
		}
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}
