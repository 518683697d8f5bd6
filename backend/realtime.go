package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rowguard/rowguard-go/routes"
)

// RealtimeClient covers the realtime plane's HTTP surface: broadcast push
// and endpoint discovery for callers that bring their own websocket.
type RealtimeClient struct {
	client *Client
}

// BroadcastMessage is one message pushed to a realtime topic.
type BroadcastMessage struct {
	Topic   string `json:"topic"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Broadcast pushes messages to subscribers over the HTTP broadcast endpoint.
func (r *RealtimeClient) Broadcast(ctx context.Context, messages ...BroadcastMessage) error {
	if len(messages) == 0 {
		return fmt.Errorf("backend: at least one broadcast message required")
	}
	payload := map[string]any{"messages": messages}
	req, err := r.client.newJSONRequest(ctx, http.MethodPost, routes.RealtimeBroadcast, payload)
	if err != nil {
		return err
	}
	return r.client.sendJSON(req, nil)
}

// Endpoint returns the websocket URL for the realtime plane.
func (r *RealtimeClient) Endpoint() string {
	base := r.client.BaseURL()
	base = strings.Replace(base, "https://", "wss://", 1)
	base = strings.Replace(base, "http://", "ws://", 1)
	return base + routes.Realtime + "/websocket"
}
