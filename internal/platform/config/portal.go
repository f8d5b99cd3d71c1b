package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/healthportal-app/portal-client/internal/domain"
)

// CredentialBackend selects the credentialstore adapter.
type CredentialBackend string

const (
	BackendFile     CredentialBackend = "file"
	BackendMemory   CredentialBackend = "memory"
	BackendPostgres CredentialBackend = "postgres"
	BackendRedis    CredentialBackend = "redis"
)

// PortalConfig configures the local portal process (HTTP surface, CLI, API client).
type PortalConfig struct {
	APIBaseURL string
	Port       string

	CredentialBackend CredentialBackend
	StorageKey        domain.StorageKey
	CredentialFile    string
	DatabaseURL       string
	RedisAddr         string

	APITimeout   time.Duration
	APIRateLimit float64
	APIRateBurst int

	LogLevel  string
	LogFormat string
}

// LoadPortalConfigFromEnv reads PortalConfig from the environment.
func LoadPortalConfigFromEnv() (PortalConfig, error) {
	apiURL := strings.TrimSpace(os.Getenv("PORTAL_API_URL"))
	if apiURL == "" {
		return PortalConfig{}, fmt.Errorf("missing required env var: PORTAL_API_URL")
	}
	u, err := url.Parse(apiURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return PortalConfig{}, fmt.Errorf("PORTAL_API_URL must be an absolute URL (e.g. http://localhost:8000): %q", apiURL)
	}

	cfg := PortalConfig{
		APIBaseURL:        strings.TrimRight(apiURL, "/"),
		Port:              getenv("PORT", "3000"),
		CredentialBackend: CredentialBackend(strings.ToLower(getenv("CREDENTIAL_BACKEND", string(BackendFile)))),
		StorageKey:        domain.StorageKey(getenv("CREDENTIAL_STORAGE_KEY", string(domain.DefaultStorageKey))),
		CredentialFile:    os.Getenv("CREDENTIAL_FILE"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		APITimeout:        10 * time.Second,
		// A single user rarely exceeds this; the limiter only smooths bursts of dashboard refreshes.
		APIRateLimit: 5,
		APIRateBurst: 10,
		LogLevel:     strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:    strings.ToLower(getenv("LOG_FORMAT", "json")),
	}

	switch cfg.CredentialBackend {
	case BackendFile:
		if cfg.CredentialFile == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return PortalConfig{}, fmt.Errorf("CREDENTIAL_FILE not set and no user config dir: %w", err)
			}
			cfg.CredentialFile = filepath.Join(dir, "healthportal", "credentials.json")
		}
	case BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return PortalConfig{}, fmt.Errorf("CREDENTIAL_BACKEND=postgres requires DATABASE_URL")
		}
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return PortalConfig{}, fmt.Errorf("CREDENTIAL_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return PortalConfig{}, fmt.Errorf("CREDENTIAL_BACKEND must be one of file|memory|postgres|redis: %q", cfg.CredentialBackend)
	}

	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return PortalConfig{}, fmt.Errorf("API_TIMEOUT must be a duration (e.g. 10s): %w", err)
		}
		cfg.APITimeout = d
	}
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return PortalConfig{}, fmt.Errorf("API_RATE_LIMIT must be a positive number of requests per second: %q", v)
		}
		cfg.APIRateLimit = f
	}
	if v := os.Getenv("API_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return PortalConfig{}, fmt.Errorf("API_RATE_BURST must be a positive integer: %q", v)
		}
		cfg.APIRateBurst = n
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
