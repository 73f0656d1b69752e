// Package config handles loading and validation of storefront configuration.
// Supports development (env vars or a config file) and production (secrets
// from Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the public shop backend.
const DefaultAPIURL = "https://dessertshopbackend.onrender.com/api"

// Session persistence backends.
const (
	SessionSQLite = "sqlite"
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

// Config holds all storefront configuration.
// Environment determines whether secrets load from env vars (development) or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string `json:"port" yaml:"port"`
	Environment string `json:"environment" yaml:"environment"` // "development" or "production"
	LogLevel    string `json:"log_level" yaml:"log_level"`     // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string `json:"gcp_project" yaml:"gcp_project"`
	SecretID   string `json:"secret_id" yaml:"secret_id"`

	API     APIConfig     `json:"api" yaml:"api"`
	Session SessionConfig `json:"session" yaml:"session"`
	Cart    CartConfig    `json:"cart" yaml:"cart"`
}

// APIConfig describes the shop backend.
type APIConfig struct {
	BaseURL      string   `json:"base_url" yaml:"base_url"`
	AssetBaseURL string   `json:"asset_base_url,omitempty" yaml:"asset_base_url,omitempty"`
	Timeout      Duration `json:"timeout" yaml:"timeout"`
	// ChromeFingerprint dials TLS with a browser ClientHello, for hosts that
	// block non-browser clients.
	ChromeFingerprint bool   `json:"chrome_fingerprint" yaml:"chrome_fingerprint"`
	MinVersion        string `json:"min_version,omitempty" yaml:"min_version,omitempty"`
	APIKey            string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// SessionConfig controls where the signed-in session is kept.
type SessionConfig struct {
	Backend           string `json:"backend" yaml:"backend"`
	Path              string `json:"path,omitempty" yaml:"path,omitempty"`
	Profile           string `json:"profile" yaml:"profile"`
	RedisURL          string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	ValidateOnRestore bool   `json:"validate_on_restore" yaml:"validate_on_restore"`
}

// CartConfig tunes the cart engine.
type CartConfig struct {
	// MergeGuestCart pushes items added while signed out into the account
	// cart at login. Off by default: the guest cart is discarded.
	MergeGuestCart bool `json:"merge_guest_cart" yaml:"merge_guest_cart"`
}

// Secrets is the JSON document stored in Secret Manager.
type Secrets struct {
	APIKey   string `json:"api_key"`
	RedisURL string `json:"redis_url"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:        "8080",
		Environment: "development",
		LogLevel:    "info",
		SecretID:    "storefront",
		API: APIConfig{
			BaseURL: DefaultAPIURL,
			Timeout: Duration(30 * time.Second),
		},
		Session: SessionConfig{
			Backend:           SessionSQLite,
			Path:              defaultSessionPath(),
			Profile:           "default",
			ValidateOnRestore: true,
		},
	}
}

// Load reads configuration from file or environment, then secrets.
// Priority: CONFIG_FILE (if set) → ENV vars; in production the secret part
// is then read from Secret Manager.
// Validates all required fields and returns an error if any are invalid.
func Load(ctx context.Context) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		cfg, err = loadFromFile(configPath)
	} else {
		cfg, err = loadFromEnv()
	}
	if err != nil {
		return nil, err
	}

	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		if err := cfg.loadFromSecretManager(ctx); err != nil {
			return nil, fmt.Errorf("loading secrets: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile reads configuration from a JSON or YAML file, chosen by
// extension. Unset fields keep their defaults.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// loadFromEnv reads configuration from individual environment variables.
func loadFromEnv() (*Config, error) {
	cfg := Default()
	cfg.Port = envOrDefault("PORT", cfg.Port)
	cfg.Environment = envOrDefault("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.GCPProject = os.Getenv("GCP_PROJECT")
	cfg.SecretID = envOrDefault("SECRET_ID", cfg.SecretID)

	cfg.API.BaseURL = envOrDefault("STORE_API_URL", cfg.API.BaseURL)
	cfg.API.AssetBaseURL = os.Getenv("STORE_ASSET_URL")
	cfg.API.MinVersion = os.Getenv("STORE_MIN_API_VERSION")
	cfg.API.APIKey = os.Getenv("STORE_API_KEY")

	cfg.Session.Backend = envOrDefault("SESSION_BACKEND", cfg.Session.Backend)
	cfg.Session.Path = envOrDefault("SESSION_PATH", cfg.Session.Path)
	cfg.Session.Profile = envOrDefault("SESSION_PROFILE", cfg.Session.Profile)
	cfg.Session.RedisURL = os.Getenv("REDIS_URL")

	if v := os.Getenv("STORE_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing STORE_API_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = Duration(d)
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"STORE_TLS_FINGERPRINT", &cfg.API.ChromeFingerprint},
		{"SESSION_VALIDATE", &cfg.Session.ValidateOnRestore},
		{"CART_MERGE_GUEST", &cfg.Cart.MergeGuestCart},
	}
	for _, b := range bools {
		v := os.Getenv(b.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", b.key, err)
		}
		*b.dst = parsed
	}

	return cfg, nil
}

// accessSecret fetches one secret version. Replaced in tests.
var accessSecret = func(ctx context.Context, name string) ([]byte, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return nil, fmt.Errorf("accessing secret %s: %w", name, err)
	}
	return result.Payload.Data, nil
}

// loadFromSecretManager overlays secrets from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{secret_id}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.SecretID)

	data, err := accessSecret(ctx, secretName)
	if err != nil {
		return err
	}

	var s Secrets
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}
	if s.APIKey != "" {
		c.API.APIKey = s.APIKey
	}
	if s.RedisURL != "" {
		c.Session.RedisURL = s.RedisURL
	}
	return nil
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url is required")
	}
	if err := checkURL("api base_url", c.API.BaseURL); err != nil {
		return err
	}
	if c.API.AssetBaseURL != "" {
		if err := checkURL("api asset_base_url", c.API.AssetBaseURL); err != nil {
			return err
		}
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api timeout must not be negative")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	switch c.Session.Backend {
	case SessionMemory:
	case SessionSQLite:
		if c.Session.Path == "" {
			return fmt.Errorf("session path is required for the sqlite backend")
		}
	case SessionRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("redis_url is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q (sqlite, redis or memory)", c.Session.Backend)
	}
	return nil
}

func checkURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s: missing host", field)
	}
	return nil
}

// defaultSessionPath puts the session database in the user config dir,
// falling back to the working directory.
func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storefront-session.db"
	}
	return filepath.Join(dir, "storefront", "session.db")
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
