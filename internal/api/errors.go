package api

import "fmt"

// The transport classifies every failure into one of four types so callers
// can render the right recovery path. No failure is ever swallowed: each
// method returns either a payload or one of these.

// AuthError is an invalid-credentials or invalid-session failure. Outside
// of login it is accompanied by session teardown.
type AuthError struct {
	Message string
}

func (e AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "authentication failed"
}

// ValidationError is an input rejected by a constraint, client- or
// server-side. Field is set for client-side checks so forms can attach the
// message to the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ConflictError means the target request's status changed since it was
// last fetched and the transition is no longer legal. The view should
// refetch to show current truth.
type ConflictError struct {
	Message string
}

func (e ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "request state changed; refresh and try again"
}

// TransportError is a network or server failure unrelated to business
// logic. The user retries manually; the client never retries on its own.
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }
