package memrise

import "fmt"

// AuthenticationError means the service rejected the credentials or the
// session itself. It is terminal for the whole run, callers should not
// retry it.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// ConnectionError covers transport failures and unexpected response
// statuses on a single call.
type ConnectionError struct {
	Message string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ParseError means a response decoded fine as bytes but did not carry the
// structure this client requires. It aborts the listing call that hit it
// rather than returning a truncated result.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
