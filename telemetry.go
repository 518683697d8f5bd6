package rowguard

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rowguard/rowguard-go/backend"
)

// ZerologHooks adapts a zerolog logger into telemetry hooks, for callers who
// want SDK events in their structured logs without writing hook plumbing.
func ZerologHooks(log zerolog.Logger) backend.TelemetryHooks {
	return backend.TelemetryHooks{
		OnHTTPResponse: func(ctx context.Context, req *http.Request, resp *http.Response, err error, latency time.Duration) {
			evt := log.Info()
			if err != nil {
				evt = log.Error().Err(err)
			}
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			evt.Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", latency).
				Msg("backend request")
		},
		OnTokenRefresh: func(subject string, expiresAt time.Time) {
			log.Info().
				Str("subject", subject).
				Time("expires_at", expiresAt).
				Msg("impersonation token refreshed")
		},
		OnLogEntry: func(ctx context.Context, entry backend.LogEntry) {
			evt := log.Info()
			if entry.Level == backend.LogLevelError {
				evt = log.Error()
			}
			evt.Fields(entry.Fields).Msg(entry.Message)
		},
		OnMetric: func(ctx context.Context, metric backend.Metric) {
			log.Debug().
				Str("metric", metric.Name).
				Float64("value", metric.Value).
				Fields(map[string]any{"labels": metric.Labels}).
				Msg("metric")
		},
	}
}
