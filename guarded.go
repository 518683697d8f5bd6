package rowguard

import (
	"context"

	"github.com/rowguard/rowguard-go/backend"
)

// Guarded delegating wrappers for the backend's sub-clients. Each operation
// validates the credential immediately before the underlying network call.
// The wrappers hold the shared guard, so a refresh triggered through one
// surface is observed by all of them.

// Storage is the guarded object storage surface.
type Storage struct {
	guard   *RefreshGuard
	storage *backend.StorageClient
}

// Upload stores data at bucket/path.
func (s Storage) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	if err := s.guard.EnsureValid(); err != nil {
		return err
	}
	return s.storage.Upload(ctx, bucket, path, data, contentType)
}

// Download fetches the object at bucket/path.
func (s Storage) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	if err := s.guard.EnsureValid(); err != nil {
		return nil, err
	}
	return s.storage.Download(ctx, bucket, path)
}

// List returns objects in bucket under prefix.
func (s Storage) List(ctx context.Context, bucket, prefix string) ([]backend.ObjectInfo, error) {
	if err := s.guard.EnsureValid(); err != nil {
		return nil, err
	}
	return s.storage.List(ctx, bucket, prefix)
}

// Remove deletes the named objects from bucket.
func (s Storage) Remove(ctx context.Context, bucket string, paths []string) error {
	if err := s.guard.EnsureValid(); err != nil {
		return err
	}
	return s.storage.Remove(ctx, bucket, paths)
}

// Functions is the guarded edge functions surface.
type Functions struct {
	guard     *RefreshGuard
	functions *backend.FunctionsClient
}

// Invoke calls the named function with a JSON payload.
func (f Functions) Invoke(ctx context.Context, name string, payload any, out any) error {
	if err := f.guard.EnsureValid(); err != nil {
		return err
	}
	return f.functions.Invoke(ctx, name, payload, out)
}

// Auth is the guarded auth surface.
type Auth struct {
	guard *RefreshGuard
	auth  *backend.AuthClient
}

// User returns the identity the current token asserts.
func (a Auth) User(ctx context.Context) (*backend.User, error) {
	if err := a.guard.EnsureValid(); err != nil {
		return nil, err
	}
	return a.auth.User(ctx)
}

// Realtime is the guarded realtime surface.
type Realtime struct {
	guard    *RefreshGuard
	realtime *backend.RealtimeClient
}

// Broadcast pushes messages to subscribers.
func (r Realtime) Broadcast(ctx context.Context, messages ...backend.BroadcastMessage) error {
	if err := r.guard.EnsureValid(); err != nil {
		return err
	}
	return r.realtime.Broadcast(ctx, messages...)
}

// Endpoint returns the websocket URL for the realtime plane.
func (r Realtime) Endpoint() string {
	return r.realtime.Endpoint()
}
