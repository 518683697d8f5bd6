package rowguard

import (
	"time"

	"github.com/rowguard/rowguard-go/backend"
)

// ScopedClient wraps one backend client so every operation issued through it
// acts as a single impersonated user, with the bearer token re-minted
// transparently before it expires.
//
// Refresh patches the Authorization header of the existing backend client in
// place; the client instance is never replaced, so sub-client and query
// handles obtained before a refresh stay valid and pick up the new token on
// their next call.
//
// One ScopedClient serves one (subject, configuration) pairing. Instances
// share nothing, even when built for the same subject.
type ScopedClient struct {
	cfg             Config
	subject         string
	role            string
	validitySeconds int
	extraClaims     map[string]any

	guard     *RefreshGuard
	client    *backend.Client
	telemetry backend.TelemetryHooks
}

// Subject returns the impersonated user identifier.
func (s *ScopedClient) Subject() string {
	return s.subject
}

// EnsureValid refreshes the credential if it is stale. Every delegated
// operation calls this automatically; it is exposed for long-lived
// references that want to pay the refresh cost ahead of a burst.
func (s *ScopedClient) EnsureValid() error {
	return s.guard.EnsureValid()
}

// regenerate re-mints the credential and patches it into the held client.
// Runs only under the guard's lock.
func (s *ScopedClient) regenerate() error {
	token, err := mintToken(s.cfg, s.subject, s.role, s.validitySeconds, s.extraClaims)
	if err != nil {
		return err
	}
	s.client.SetAuthToken(token)
	if s.telemetry.OnTokenRefresh != nil {
		s.telemetry.OnTokenRefresh(s.subject, time.Now().Add(time.Duration(s.validitySeconds)*time.Second))
	}
	return nil
}

// Table starts a guarded query against a table or view. The credential is
// validated immediately before the chain's Execute reaches the network.
func (s *ScopedClient) Table(name string) *backend.QueryBuilder {
	return s.client.Rest.From(name).WithBefore(s.guard.EnsureValid)
}

// From is the raw query layer alias for Table.
func (s *ScopedClient) From(name string) *backend.QueryBuilder {
	return s.Table(name)
}

// RPC starts a guarded stored-procedure call.
func (s *ScopedClient) RPC(fn string, params any) *backend.QueryBuilder {
	return s.client.Rest.RPC(fn, params).WithBefore(s.guard.EnsureValid)
}

// Storage returns the guarded object storage surface.
func (s *ScopedClient) Storage() Storage {
	return Storage{guard: s.guard, storage: s.client.Storage}
}

// Functions returns the guarded edge functions surface.
func (s *ScopedClient) Functions() Functions {
	return Functions{guard: s.guard, functions: s.client.Functions}
}

// Auth returns the guarded auth surface.
func (s *ScopedClient) Auth() Auth {
	return Auth{guard: s.guard, auth: s.client.Auth}
}

// Realtime returns the guarded realtime surface.
func (s *ScopedClient) Realtime() Realtime {
	return Realtime{guard: s.guard, realtime: s.client.Realtime}
}

// Dynamic returns a reflective proxy over the underlying client for
// capabilities not named above. Every call through it is guarded, and
// non-primitive results come back wrapped so fluent chains stay guarded end
// to end.
func (s *ScopedClient) Dynamic() *Object {
	return Wrap(s.client, s.guard).(*Object)
}

// Backend exposes the underlying client. Calls made directly through it
// bypass the refresh guard; prefer the guarded accessors.
func (s *ScopedClient) Backend() *backend.Client {
	return s.client
}
