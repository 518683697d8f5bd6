package rowguard

import "net/http"

// ScopedClientBuilder collects optional settings through a fluent chain
// before delegating to NewScopedClient.
//
//	scoped, err := rowguard.NewScopedClientBuilder(userID).
//		Config(cfg).
//		WithRole("service_role").
//		WithValiditySeconds(7200).
//		WithExtraClaims(map[string]any{"tenant_id": "abc"}).
//		WithRefreshThreshold(120).
//		Build()
type ScopedClientBuilder struct {
	subject string
	opts    []Option
}

// NewScopedClientBuilder starts a builder for the given subject.
func NewScopedClientBuilder(subject string) *ScopedClientBuilder {
	return &ScopedClientBuilder{subject: subject}
}

// Config supplies configuration programmatically; without it Build reads the
// environment.
func (b *ScopedClientBuilder) Config(cfg Config) *ScopedClientBuilder {
	b.opts = append(b.opts, WithConfig(cfg))
	return b
}

// WithRole sets the backend role claimed by the token.
func (b *ScopedClientBuilder) WithRole(role string) *ScopedClientBuilder {
	b.opts = append(b.opts, WithRole(role))
	return b
}

// WithValiditySeconds sets the token lifetime.
func (b *ScopedClientBuilder) WithValiditySeconds(seconds int) *ScopedClientBuilder {
	b.opts = append(b.opts, WithValiditySeconds(seconds))
	return b
}

// WithExtraClaims adds claims to the token payload.
func (b *ScopedClientBuilder) WithExtraClaims(claims map[string]any) *ScopedClientBuilder {
	b.opts = append(b.opts, WithExtraClaims(claims))
	return b
}

// WithRefreshThreshold sets how many seconds before expiry the credential is
// refreshed.
func (b *ScopedClientBuilder) WithRefreshThreshold(seconds int) *ScopedClientBuilder {
	b.opts = append(b.opts, WithRefreshThreshold(seconds))
	return b
}

// WithHTTPClient substitutes the HTTP client used for backend requests.
func (b *ScopedClientBuilder) WithHTTPClient(client *http.Client) *ScopedClientBuilder {
	b.opts = append(b.opts, WithHTTPClient(client))
	return b
}

// Build creates the configured ScopedClient.
func (b *ScopedClientBuilder) Build() (*ScopedClient, error) {
	return NewScopedClient(b.subject, b.opts...)
}
