package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRealtimeBroadcast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/realtime/v1/api/broadcast" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body struct {
			Messages []BroadcastMessage `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) != 1 || body.Messages[0].Topic != "room:1" {
			t.Errorf("messages = %v", body.Messages)
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	err := client.Realtime.Broadcast(context.Background(), BroadcastMessage{
		Topic:   "room:1",
		Event:   "update",
		Payload: map[string]any{"seq": 1},
	})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	if err := client.Realtime.Broadcast(context.Background()); err == nil {
		t.Error("expected error for empty broadcast")
	}
}

func TestRealtimeEndpointUsesWebsocketScheme(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "https://project.example.com", APIKey: "k"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := client.Realtime.Endpoint()
	if got != "wss://project.example.com/realtime/v1/websocket" {
		t.Errorf("endpoint = %q", got)
	}
	if strings.HasPrefix(got, "https://") {
		t.Error("endpoint must not keep the http scheme")
	}
}
