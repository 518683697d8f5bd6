// Package headers defines HTTP header constants used when talking to the
// backend data API. This is the single source of truth for header names used
// in API requests/responses.
package headers

const (
	// Authorization carries the bearer impersonation token.
	Authorization = "Authorization"

	// APIKey is the backend's project API key header.
	APIKey = "apikey" //nolint:gosec // This is a header name, not a credential

	// RequestID is the header for request correlation / idempotency.
	// Clients can supply this header for idempotency on retries.
	RequestID = "X-Request-Id"

	// ClientInfo identifies the SDK and version to the backend.
	ClientInfo = "X-Client-Info"

	// Prefer controls PostgREST write behavior (returning, resolution, count).
	Prefer = "Prefer"

	// AcceptProfile selects the schema for read requests.
	AcceptProfile = "Accept-Profile"

	// ContentProfile selects the schema for write requests.
	ContentProfile = "Content-Profile"
)
