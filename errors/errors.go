// Package errors defines the sentinel error taxonomy of the relay.
// Callers match with errors.Is; wrapping adds call-site context.
package errors

import "fmt"

var (
	// ErrDuplicateSession signals a Register for an already known session.
	// Internal consistency violation: log and ignore, never fatal.
	ErrDuplicateSession = fmt.Errorf("duplicate session")

	// ErrUnknownSession signals an operation on an unregistered session.
	// Disconnect signals can race, so callers treat it as a no-op.
	ErrUnknownSession = fmt.Errorf("unknown session")

	// ErrInvalidName rejects a join with an empty display name.
	ErrInvalidName = fmt.Errorf("invalid display name")

	// ErrInvalidBody rejects a message whose body is empty after trimming.
	ErrInvalidBody = fmt.Errorf("invalid message body")

	// ErrNotJoined rejects a message from a session without a bound name.
	ErrNotJoined = fmt.Errorf("session has not joined")

	// ErrPersistenceUnavailable wraps storage failures of the message store.
	// Per-call failure: the broadcaster stays available for other sessions.
	ErrPersistenceUnavailable = fmt.Errorf("persistence unavailable")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)
