// Package routes provides shared API route constants used across the SDK
// to prevent path mismatches between sub-clients.
package routes

// Route prefixes for the backend's service planes. Every request built by the
// SDK starts from one of these.
const (
	// Rest is the PostgREST data plane prefix.
	Rest = "/rest/v1"

	// Auth is the auth (GoTrue-compatible) plane prefix. Also the token
	// issuer suffix: impersonation tokens carry iss = baseURL + Auth.
	Auth = "/auth/v1"

	// Storage is the object storage plane prefix.
	Storage = "/storage/v1"

	// Functions is the edge functions plane prefix.
	Functions = "/functions/v1"

	// Realtime is the realtime plane prefix.
	Realtime = "/realtime/v1"
)

// Paths under the service planes.
const (
	// AuthUser returns the user identified by the bearer token.
	AuthUser = Auth + "/user"

	// RestRPC is the stored-procedure prefix; the function name is appended.
	RestRPC = Rest + "/rpc"

	// StorageObject is the object prefix; bucket and path are appended.
	StorageObject = Storage + "/object"

	// StorageObjectList lists objects in a bucket; the bucket is appended.
	StorageObjectList = Storage + "/object/list"

	// RealtimeBroadcast pushes broadcast messages over HTTP.
	RealtimeBroadcast = Realtime + "/api/broadcast"
)
