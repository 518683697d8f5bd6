// Package backend implements the HTTP client for a Supabase-style data API:
// PostgREST tables and RPC, object storage, edge functions, auth, and
// realtime broadcast. It knows nothing about impersonation tokens beyond
// holding the current bearer value; rowguard owns minting and refresh.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/rowguard/rowguard-go/headers"
)

const defaultUserAgent = "rowguard-go/0.3.0"

// Config wires the base URL, API key, initial headers, and telemetry for a
// backend client.
type Config struct {
	BaseURL    string
	APIKey     string
	Headers    map[string]string
	HTTPClient *http.Client
	Telemetry  TelemetryHooks
	UserAgent  string
	Schema     string
	Retry      RetryConfig
}

// Client provides access to the backend's service planes. One Client holds
// one bearer credential; SetAuthToken swaps it in place so handles obtained
// from the client keep working across a credential refresh.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	telemetry  TelemetryHooks
	userAgent  string
	retry      RetryConfig

	mu        sync.RWMutex
	authToken string
	extra     map[string]string

	// Grouped service clients.
	Rest      *RestClient
	Storage   *StorageClient
	Functions *FunctionsClient
	Auth      *AuthClient
	Realtime  *RealtimeClient
}

// NewClient validates the configuration and returns a ready-to-use Client.
func NewClient(cfg Config) (*Client, error) {
	normalized, err := NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("backend: api key required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	schema := cfg.Schema
	if schema == "" {
		schema = "public"
	}
	client := &Client{
		baseURL:    normalized,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: httpClient,
		telemetry:  cfg.Telemetry,
		userAgent:  ua,
		retry:      cfg.Retry.normalized(),
		extra:      map[string]string{},
	}
	for name, value := range cfg.Headers {
		if strings.EqualFold(name, headers.Authorization) {
			client.authToken = stripBearer(value)
			continue
		}
		client.extra[name] = value
	}
	client.Rest = &RestClient{client: client, schema: schema}
	client.Storage = &StorageClient{client: client}
	client.Functions = &FunctionsClient{client: client}
	client.Auth = &AuthClient{client: client}
	client.Realtime = &RealtimeClient{client: client}
	return client, nil
}

// NormalizeBaseURL validates the backend URL and trims any trailing slash.
func NormalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("backend: base URL required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("backend: invalid base URL: %w", err)
	}
	if u.Scheme == "" {
		return "", errors.New("backend: base URL missing scheme (http/https)")
	}
	if u.Host == "" {
		return "", errors.New("backend: base URL missing host")
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return strings.TrimSuffix(u.String(), "/"), nil
}

func stripBearer(value string) string {
	token := strings.TrimSpace(value)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// SetAuthToken replaces the bearer credential used on subsequent requests.
// Safe for concurrent use; in-flight requests keep the token they were
// prepared with.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = stripBearer(token)
	c.mu.Unlock()
}

// AuthToken returns the bearer credential currently in use.
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	injectTraceparent(ctx, req)
	return req, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	injectTraceparent(ctx, req)
	return req, nil
}

func (c *Client) prepare(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headers.ClientInfo, c.userAgent)
	req.Header.Set(headers.APIKey, c.apiKey)
	if req.Header.Get(headers.RequestID) == "" {
		req.Header.Set(headers.RequestID, uuid.NewString())
	}
	c.mu.RLock()
	token := c.authToken
	for name, value := range c.extra {
		if req.Header.Get(name) == "" {
			req.Header.Set(name, value)
		}
	}
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set(headers.Authorization, "Bearer "+token)
	}
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	c.prepare(req)
	if c.telemetry.OnHTTPRequest != nil {
		c.telemetry.OnHTTPRequest(req.Context(), req)
	}
	c.telemetry.log(req.Context(), LogLevelInfo, "http_request", map[string]any{
		"method": req.Method,
		"url":    req.URL.String(),
	})
	start := time.Now()
	resp, err := c.doWithRetry(req)
	if c.telemetry.OnHTTPResponse != nil {
		c.telemetry.OnHTTPResponse(req.Context(), req, resp, err, time.Since(start))
	}
	c.telemetry.metric(req.Context(), "backend_http_request_latency_ms", float64(time.Since(start).Milliseconds()), map[string]string{
		"path": req.URL.Path,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

// doWithRetry retries transport failures and 5xx responses for idempotent
// requests according to the retry config. Requests with a body are only
// retried when the body is rewindable (GetBody set by net/http for common
// reader types).
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	attempts := c.retry.MaxAttempts
	if !c.retry.retryable(req) {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				req.Body = body
			}
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(c.retry.backoffDelay(attempt)):
			}
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 && attempt < attempts {
			resp.Body.Close()
			lastErr = fmt.Errorf("backend: http %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

// sendJSON issues the request and decodes a JSON body into out (nil to
// discard).
func (c *Client) sendJSON(req *http.Request, out any) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	//nolint:errcheck // best-effort cleanup on return
	defer func() { _ = resp.Body.Close() }()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func injectTraceparent(ctx context.Context, req *http.Request) {
	span := trace.SpanFromContext(ctx)
	sc := span.SpanContext()
	if !sc.IsValid() {
		return
	}
	traceparent := fmt.Sprintf("00-%s-%s-01", sc.TraceID().String(), sc.SpanID().String())
	req.Header.Set("Traceparent", traceparent)
}
