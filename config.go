package rowguard

import (
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rowguard/rowguard-go/backend"
)

// Config holds the three settings every construction path needs: where the
// backend lives, the project API key, and the shared secret tokens are
// signed with. Load once, pass by value; there is no ambient global.
type Config struct {
	// URL is the backend base URL (scheme and host required).
	URL string `env:"BACKEND_URL"`
	// Key is the backend project API key.
	Key string `env:"BACKEND_KEY"`
	// JWTSecret is the shared HMAC secret impersonation tokens are signed
	// with. The backend must be configured with the same secret.
	JWTSecret string `env:"BACKEND_JWT_SECRET"`
}

// LoadConfig reads configuration from the environment (BACKEND_URL,
// BACKEND_KEY, BACKEND_JWT_SECRET) and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, ConfigError{Field: "environment", Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the three fields and normalizes the base URL in place
// (trailing slashes are trimmed, so derived values like the token issuer
// never carry a double slash).
func (c *Config) Validate() error {
	normalized, err := backend.NormalizeBaseURL(c.URL)
	if err != nil {
		return ConfigError{Field: "url", Reason: err.Error()}
	}
	c.URL = normalized
	if strings.TrimSpace(c.Key) == "" {
		return ConfigError{Field: "key", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ConfigError{Field: "jwt_secret", Reason: "cannot be empty"}
	}
	return nil
}
