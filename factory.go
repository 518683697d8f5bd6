package rowguard

import (
	"net/http"
	"strings"
	"time"

	"github.com/rowguard/rowguard-go/backend"
	"github.com/rowguard/rowguard-go/headers"
)

type options struct {
	config           *Config
	role             string
	validitySeconds  int
	extraClaims      map[string]any
	refreshThreshold int
	httpClient       *http.Client
	telemetry        backend.TelemetryHooks
	retry            backend.RetryConfig
	schema           string
}

func defaultOptions() options {
	return options{
		role:             DefaultRole,
		validitySeconds:  DefaultValiditySeconds,
		refreshThreshold: DefaultRefreshThresholdSeconds,
	}
}

// Option customizes client construction.
type Option func(*options)

// WithConfig supplies configuration programmatically instead of reading the
// environment.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.config = &cfg }
}

// WithRole sets the backend role claimed by the token.
func WithRole(role string) Option {
	return func(o *options) { o.role = role }
}

// WithValiditySeconds sets the token lifetime.
func WithValiditySeconds(seconds int) Option {
	return func(o *options) { o.validitySeconds = seconds }
}

// WithExtraClaims adds claims to the token payload. Identity claims (sub,
// role, aud, iss) cannot be overridden this way.
func WithExtraClaims(claims map[string]any) Option {
	return func(o *options) { o.extraClaims = claims }
}

// WithRefreshThreshold sets how many seconds before expiry the credential is
// refreshed.
func WithRefreshThreshold(seconds int) Option {
	return func(o *options) { o.refreshThreshold = seconds }
}

// WithHTTPClient substitutes the HTTP client used for backend requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithTelemetry installs observability hooks.
func WithTelemetry(hooks backend.TelemetryHooks) Option {
	return func(o *options) { o.telemetry = hooks }
}

// WithRetry configures retry behavior for idempotent backend reads.
func WithRetry(cfg backend.RetryConfig) Option {
	return func(o *options) { o.retry = cfg }
}

// WithSchema selects a PostgREST schema other than public.
func WithSchema(schema string) Option {
	return func(o *options) { o.schema = schema }
}

func resolve(opts []Option) (options, Config, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.config != nil {
		cfg := *o.config
		if err := cfg.Validate(); err != nil {
			return o, Config{}, err
		}
		return o, cfg, nil
	}
	cfg, err := LoadConfig()
	if err != nil {
		return o, Config{}, err
	}
	return o, cfg, nil
}

func buildBackend(cfg Config, token string, o options) (*backend.Client, error) {
	client, err := backend.NewClient(backend.Config{
		BaseURL:    cfg.URL,
		APIKey:     cfg.Key,
		Headers:    map[string]string{headers.Authorization: "Bearer " + token},
		HTTPClient: o.httpClient,
		Telemetry:  o.telemetry,
		Retry:      o.retry,
		Schema:     o.schema,
	})
	if err != nil {
		return nil, ClientError{Reason: "backend client construction failed", Err: err}
	}
	return client, nil
}

// NewUserClient mints a token for subject once and returns a backend client
// carrying it. There is no ongoing refresh: when the token expires the
// client's calls start failing. Use NewScopedClient for anything longer
// lived than the token validity.
func NewUserClient(subject string, opts ...Option) (*backend.Client, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, ClientError{Reason: "subject cannot be empty"}
	}
	o, cfg, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	token, err := mintToken(cfg, subject, o.role, o.validitySeconds, o.extraClaims)
	if err != nil {
		return nil, err
	}
	return buildBackend(cfg, token, o)
}

// NewScopedClient mints an initial token for subject and returns a wrapper
// that keeps it fresh for as long as the wrapper lives.
func NewScopedClient(subject string, opts ...Option) (*ScopedClient, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, ClientError{Reason: "subject cannot be empty"}
	}
	o, cfg, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	token, err := mintToken(cfg, subject, o.role, o.validitySeconds, o.extraClaims)
	if err != nil {
		return nil, err
	}
	client, err := buildBackend(cfg, token, o)
	if err != nil {
		return nil, err
	}
	scoped := &ScopedClient{
		cfg:             cfg,
		subject:         subject,
		role:            o.role,
		validitySeconds: o.validitySeconds,
		extraClaims:     o.extraClaims,
		client:          client,
		telemetry:       o.telemetry,
	}
	scoped.guard = NewRefreshGuard(o.validitySeconds, o.refreshThreshold, scoped.regenerate)
	scoped.guard.SetExpiry(time.Now().Unix() + int64(o.validitySeconds))
	return scoped, nil
}
