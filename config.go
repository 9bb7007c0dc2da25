package gatekit

import (
	"fmt"
	"log/slog"

	"github.com/quillcms/gatekit/instrumentation"
	"github.com/quillcms/gatekit/ratelimit"
	"github.com/quillcms/gatekit/validate"
)

// Config holds the security layer configuration.
// Structured using composition for better organization and maintainability.
type Config struct {
	// RateLimits holds per-endpoint-class rate limit presets
	RateLimits RateLimitPresets

	// AllowedDomains is the outbound URL allow-list.
	// If empty, Validate fails: an empty allow-list would silently reject
	// every URL and almost always indicates a deployment mistake.
	AllowedDomains []string

	// AllowedUploadTypes lists the MIME types accepted for file uploads.
	// Defaults to the common raster/vector image types.
	AllowedUploadTypes []string

	// TrustProxyHeaders enables deriving caller identity from
	// X-Forwarded-For and X-Real-IP. Only enable behind a trusted
	// reverse proxy.
	TrustProxyHeaders bool

	// Logger for structured logging (optional, uses default if not provided)
	Logger *slog.Logger

	// Instrumentation provides OpenTelemetry meters and tracers.
	// If nil, no metrics or traces are recorded.
	Instrumentation *instrumentation.Instrumentation
}

// RateLimitPresets groups the named limiter configurations.
// Authentication endpoints get the tightest window; general API traffic the
// loosest. All presets share the same limiter code path.
type RateLimitPresets struct {
	// Auth covers login, registration and password reset endpoints
	Auth ratelimit.Config

	// API covers general public API traffic
	API ratelimit.Config

	// Admin covers the admin surface
	Admin ratelimit.Config

	// Upload covers media upload endpoints
	Upload ratelimit.Config
}

// DefaultConfig returns a configuration with secure defaults
func DefaultConfig() Config {
	return Config{
		RateLimits: RateLimitPresets{
			Auth:   ratelimit.AuthPreset(),
			API:    ratelimit.APIPreset(),
			Admin:  ratelimit.AdminPreset(),
			Upload: ratelimit.UploadPreset(),
		},
		AllowedDomains:     validate.DefaultAllowedDomains(),
		AllowedUploadTypes: validate.DefaultAllowedUploadTypes(),
	}
}

// Validate checks the configuration for mistakes that should halt startup.
// Expected runtime failures (store outages, bad input) never go through
// here; this only guards against misconfiguration.
func (c *Config) Validate() error {
	if len(c.AllowedDomains) == 0 {
		return fmt.Errorf("config: AllowedDomains must not be empty")
	}
	if len(c.AllowedUploadTypes) == 0 {
		return fmt.Errorf("config: AllowedUploadTypes must not be empty")
	}
	for name, rc := range map[string]ratelimit.Config{
		"Auth":   c.RateLimits.Auth,
		"API":    c.RateLimits.API,
		"Admin":  c.RateLimits.Admin,
		"Upload": c.RateLimits.Upload,
	} {
		if err := rc.Validate(); err != nil {
			return fmt.Errorf("config: rate limit preset %s: %w", name, err)
		}
	}
	return nil
}

// logger returns the configured logger or the process default
func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
