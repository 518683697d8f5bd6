package rowguard

import (
	"errors"
	"testing"
)

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://project.example.com/")
	t.Setenv("BACKEND_KEY", "anon-key")
	t.Setenv("BACKEND_JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.URL != "https://project.example.com" {
		t.Errorf("URL = %q, want trailing slash trimmed", cfg.URL)
	}
	if cfg.Key != "anon-key" || cfg.JWTSecret != "secret" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigMissingFields(t *testing.T) {
	cases := []struct {
		name  string
		url   string
		key   string
		sec   string
		field string
	}{
		{"missing url", "", "k", "s", "url"},
		{"url without scheme", "project.example.com", "k", "s", "url"},
		{"missing key", "https://p.example.com", "", "s", "key"},
		{"blank key", "https://p.example.com", "   ", "s", "key"},
		{"missing secret", "https://p.example.com", "k", "", "jwt_secret"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("BACKEND_URL", tc.url)
			t.Setenv("BACKEND_KEY", tc.key)
			t.Setenv("BACKEND_JWT_SECRET", tc.sec)

			_, err := LoadConfig()
			var cfgErr ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tc.field {
				t.Errorf("field = %q, want %q", cfgErr.Field, tc.field)
			}
		})
	}
}

func TestConfigValidateNormalizesURL(t *testing.T) {
	cfg := Config{URL: "https://p.example.com/", Key: "k", JWTSecret: "s"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.URL != "https://p.example.com" {
		t.Errorf("URL = %q", cfg.URL)
	}
}

func TestConfigErrorString(t *testing.T) {
	err := ConfigError{Field: "url", Reason: "cannot be empty"}
	if got := err.Error(); got != "ConfigurationError: url - cannot be empty" {
		t.Errorf("Error() = %q", got)
	}
}
