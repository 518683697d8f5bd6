package rowguard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewUserClientMintsOnce(t *testing.T) {
	cfg := testConfig()
	client, err := NewUserClient("u1", WithConfig(cfg))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	claims, err := VerifyToken(cfg, client.AuthToken())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims["sub"] != "u1" {
		t.Errorf("sub = %v", claims["sub"])
	}
}

func TestNewUserClientValidation(t *testing.T) {
	_, err := NewUserClient("", WithConfig(testConfig()))
	var clientErr ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("expected ClientError, got %v", err)
	}
	_, err = NewUserClient("u1", WithConfig(Config{URL: "https://p.example.com", Key: "", JWTSecret: "s"}))
	var cfgErr ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestNewScopedClientForwardsOptions(t *testing.T) {
	cfg := testConfig()
	scoped, err := NewScopedClient("u1",
		WithConfig(cfg),
		WithRole("service_role"),
		WithValiditySeconds(7200),
		WithExtraClaims(map[string]any{"tenant_id": "t-1"}),
		WithRefreshThreshold(120),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	claims, err := VerifyToken(cfg, scoped.Backend().AuthToken())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims["role"] != "service_role" {
		t.Errorf("role = %v", claims["role"])
	}
	if claims["tenant_id"] != "t-1" {
		t.Errorf("tenant_id = %v", claims["tenant_id"])
	}
	iat := int64(claims["iat"].(float64))
	exp := int64(claims["exp"].(float64))
	if exp-iat != 7200 {
		t.Errorf("exp-iat = %d", exp-iat)
	}
	if scoped.guard.thresholdSeconds != 120 {
		t.Errorf("threshold = %d", scoped.guard.thresholdSeconds)
	}
}

func TestNewScopedClientRequestCarriesKeyAndBearer(t *testing.T) {
	cfg := testConfig()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("apikey"); got != "anon-key" {
			t.Errorf("apikey header = %q", got)
		}
		auth := r.Header.Get("Authorization")
		if _, err := VerifyToken(cfg, auth[len("Bearer "):]); err != nil {
			t.Errorf("bearer token rejected: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	cfg.URL = srv.URL
	scoped, err := NewScopedClient("u1", WithConfig(cfg), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := scoped.Table("items").Select("*").Execute(context.Background(), nil); err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestBuilderDelegatesToScopedConstruction(t *testing.T) {
	cfg := testConfig()
	scoped, err := NewScopedClientBuilder("u9").
		Config(cfg).
		WithRole("admin").
		WithValiditySeconds(600).
		WithExtraClaims(map[string]any{"team": "core"}).
		WithRefreshThreshold(30).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if scoped.Subject() != "u9" {
		t.Errorf("subject = %q", scoped.Subject())
	}
	claims, err := VerifyToken(cfg, scoped.Backend().AuthToken())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims["role"] != "admin" || claims["team"] != "core" {
		t.Errorf("claims = %v", claims)
	}
}

func TestBuilderEmptySubjectFailsAtBuild(t *testing.T) {
	_, err := NewScopedClientBuilder("").Config(testConfig()).Build()
	var clientErr ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("expected ClientError, got %v", err)
	}
}
