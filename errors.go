package rowguard

import "fmt"

// ConfigError reports a malformed or missing configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e ConfigError) Error() string {
	return fmt.Sprintf("ConfigurationError: %s - %s", e.Field, e.Reason)
}

// TokenError reports a failure to mint or verify an impersonation token:
// blank subject, non-positive validity, or a signing failure.
type TokenError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e TokenError) Error() string {
	return "TokenError: " + e.Reason
}

// Unwrap exposes the underlying signing/verification error, if any.
func (e TokenError) Unwrap() error {
	return e.Err
}

// ClientError reports a failure to construct a scoped client.
type ClientError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e ClientError) Error() string {
	return "ClientError: " + e.Reason
}

// Unwrap exposes the underlying construction error, if any.
func (e ClientError) Unwrap() error {
	return e.Err
}
