package cm

import "fmt"

// ConnectError reports a transport-level failure reaching the API. Timeout
// marks deadline expiry, which checks report as UNKNOWN instead of CRITICAL.
type ConnectError struct {
	Cause   error
	Timeout bool
}

func (e *ConnectError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("API request timed out: %v", e.Cause)
	}
	return fmt.Sprintf("cannot reach API: %v", e.Cause)
}

func (e *ConnectError) Unwrap() error { return e.Cause }

// APIError reports a non-2xx response. Message carries the API's own error
// message when the body had one, otherwise the HTTP status text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// FieldError reports a response that did not match the expected shape:
// unparseable JSON, an oversized body, or a missing or ill-typed field. The
// entity state cannot be determined, so checks report it as UNKNOWN.
type FieldError struct {
	Field  string // empty when the whole response was unusable
	Reason string
}

func (e *FieldError) Error() string {
	return e.Reason + " (the API may have changed, consider reporting this upstream)"
}

func missingField(name string) *FieldError {
	return &FieldError{
		Field:  name,
		Reason: fmt.Sprintf("field '%s' is missing from the API response", name),
	}
}

func invalidField(name string) *FieldError {
	return &FieldError{
		Field:  name,
		Reason: fmt.Sprintf("field '%s' in the API response is not a string", name),
	}
}
