package backend

import (
	"context"
	"net/http"

	"github.com/rowguard/rowguard-go/routes"
)

// AuthClient exposes the auth plane. Scoped clients only ever consume their
// own tokens, so the surface here is read-only identity lookup.
type AuthClient struct {
	client *Client
}

// User mirrors the auth plane's user record.
type User struct {
	ID           string         `json:"id"`
	Aud          string         `json:"aud"`
	Role         string         `json:"role"`
	Email        string         `json:"email"`
	AppMetadata  map[string]any `json:"app_metadata"`
	UserMetadata map[string]any `json:"user_metadata"`
	CreatedAt    string         `json:"created_at"`
}

// User returns the identity asserted by the current bearer token.
func (a *AuthClient) User(ctx context.Context) (*User, error) {
	req, err := a.client.newJSONRequest(ctx, http.MethodGet, routes.AuthUser, nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := a.client.sendJSON(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
