package profile

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the gateway server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Version is the current version of server
	Version string

	// Upstream API configuration
	APIBaseURL        string // STEMFORMATICS_API_BASE_URL (default: https://api.stemformatics.org)
	APITimeoutSeconds int    // STEMFORMATICS_API_TIMEOUT_SECONDS (default: 30)
	UseAuth           bool   // STEMFORMATICS_USE_AUTH (default: false)
	APIKey            string // STEMFORMATICS_API_KEY (required when UseAuth is true)

	// Cache configuration
	CacheEnabled    bool // STEMFORMATICS_CACHE_ENABLED (default: true)
	CacheTTLSeconds int  // STEMFORMATICS_CACHE_TTL_SECONDS (default: 3600)
	CacheMaxSizeMB  int  // STEMFORMATICS_CACHE_MAX_SIZE_MB (default: 100)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// CacheTTL returns the configured entry lifetime.
func (p *Profile) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLSeconds) * time.Second
}

// CacheMaxBytes returns the cache size budget in bytes.
func (p *Profile) CacheMaxBytes() int64 {
	return int64(p.CacheMaxSizeMB) * 1024 * 1024
}

// APITimeout returns the upstream request timeout.
func (p *Profile) APITimeout() time.Duration {
	return time.Duration(p.APITimeoutSeconds) * time.Second
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from STEMFORMATICS_* environment variables.
func (p *Profile) FromEnv() {
	getIntEnv := func(key string, defaultValue int) int {
		if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
			return value
		}
		return defaultValue
	}

	p.APIBaseURL = getEnvOrDefault("STEMFORMATICS_API_BASE_URL", "https://api.stemformatics.org")
	p.APITimeoutSeconds = getIntEnv("STEMFORMATICS_API_TIMEOUT_SECONDS", 30)
	p.UseAuth = os.Getenv("STEMFORMATICS_USE_AUTH") == "true"
	p.APIKey = os.Getenv("STEMFORMATICS_API_KEY")

	// Caching defaults to on; only an explicit "false" disables it.
	p.CacheEnabled = getEnvOrDefault("STEMFORMATICS_CACHE_ENABLED", "true") != "false"
	p.CacheTTLSeconds = getIntEnv("STEMFORMATICS_CACHE_TTL_SECONDS", 3600)
	p.CacheMaxSizeMB = getIntEnv("STEMFORMATICS_CACHE_MAX_SIZE_MB", 100)
}

// Validate applies defaults for unset fields and rejects inconsistent
// configuration. Components are only constructed from a validated
// profile.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.APIBaseURL == "" {
		p.APIBaseURL = "https://api.stemformatics.org"
	}
	p.APIBaseURL = strings.TrimRight(p.APIBaseURL, "/")
	if !strings.HasPrefix(p.APIBaseURL, "http://") && !strings.HasPrefix(p.APIBaseURL, "https://") {
		return errors.Errorf("invalid api base url %q", p.APIBaseURL)
	}

	if p.APITimeoutSeconds == 0 {
		p.APITimeoutSeconds = 30
	}

	if p.UseAuth && p.APIKey == "" {
		return errors.New("api key required when use_auth is true")
	}

	if p.CacheTTLSeconds == 0 {
		p.CacheTTLSeconds = 3600
	}
	if p.CacheMaxSizeMB == 0 {
		p.CacheMaxSizeMB = 100
	}

	return nil
}
