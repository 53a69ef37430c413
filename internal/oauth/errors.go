package oauth

import "fmt"

// The three error kinds that may leave this package. Everything raised
// internally is converted to one of these before crossing the boundary, so
// callers never see provider- or storage-specific error types.

// ConfigurationError means the bridge is unusable until configuration is
// fixed (service not initialized, missing provider settings). Maps to a
// 5xx-class response.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// ValidationError means the caller sent something the bridge cannot accept:
// an unknown or disabled provider, a missing, expired or mismatched state,
// or a provider-reported error parameter. The user can recover by starting
// a fresh flow. Maps to a 4xx-class response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthenticationError covers token exchange failures, userinfo fetch
// failures and any unexpected failure during reconciliation or token
// issuance. The message is intentionally generic; the detailed cause is
// kept for server-side logs only.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

func configErr(format string, args ...any) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

func validationErr(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func authErr(cause error, msg string) error {
	return &AuthenticationError{Message: msg, Err: cause}
}
