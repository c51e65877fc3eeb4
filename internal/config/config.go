package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"brainlift-mcp/pkg/logging"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultClientSecretsPath = "./credentials/client-secrets.json"
	DefaultTokenPath         = "./.gcp-saved-token.json"
	DefaultCallbackPort      = 8080
)

// Config holds all configuration for the bridge process. It is assembled
// once at startup and passed explicitly to the components that need it;
// nothing reads the environment after Load returns.
type Config struct {
	// DemoMode bypasses all network and authentication calls and serves
	// fixed canned payloads instead.
	DemoMode bool

	// SupabaseURL is the base URL of the Supabase project hosting the
	// BrainLift API and its auth endpoints.
	SupabaseURL string

	// SupabaseAnonKey is the public API key sent as the apikey header.
	SupabaseAnonKey string

	// APIBaseURL is the base URL for BrainLift REST reads. Defaults to
	// SupabaseURL when unset.
	APIBaseURL string

	// ClientSecretsPath is the path to the Google OAuth client-secrets
	// JSON file.
	ClientSecretsPath string

	// TokenPath is the path of the on-disk credential cache file.
	TokenPath string

	// CallbackPort is the fixed port for the local OAuth redirect
	// listener. It must match the redirect URI registered with the
	// identity provider.
	CallbackPort int

	// OwnerFilter selects the alternate list backend that scopes the
	// collection with an explicit user_id filter instead of relying on
	// the server-side ownership check.
	OwnerFilter bool
}

// Load reads configuration from a .env file (if present) and the process
// environment. A missing .env file is not an error.
//
// Load does not validate: the auth commands only need the OAuth settings
// and must work before any Supabase settings exist. Callers that reach the
// API call Validate first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Debug("Config", "No .env file loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DemoMode:          envBool("BRAINLIFT_DEMO_MODE"),
		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_ANON_KEY"),
		APIBaseURL:        os.Getenv("BRAINLIFT_API_URL"),
		ClientSecretsPath: envOr("OAUTH_CLIENT_SECRET_PATH", DefaultClientSecretsPath),
		TokenPath:         envOr("OAUTH_CLIENT_TOKEN_PATH", DefaultTokenPath),
		CallbackPort:      DefaultCallbackPort,
		OwnerFilter:       envBool("BRAINLIFT_OWNER_FILTER"),
	}

	if portStr := os.Getenv("OAUTH_CALLBACK_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid OAUTH_CALLBACK_PORT %q", portStr)
		}
		cfg.CallbackPort = port
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = cfg.SupabaseURL
	}

	return cfg, nil
}

// Validate checks that the configuration is usable. Demo mode requires no
// credentials and no endpoints at all.
func (c *Config) Validate() error {
	if c.DemoMode {
		return nil
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL environment variable must be set")
	}
	if c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY environment variable must be set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v := os.Getenv(key)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logging.Warn("Config", "Invalid boolean value %q for %s, treating as false", v, key)
		return false
	}
	return b
}
