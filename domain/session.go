package domain

import "github.com/google/uuid"

// SessionID identifies one live transport connection.
type SessionID = uuid.UUID

// SessionState is the lifecycle of a session. Closed is terminal:
// no transition ever leaves it.
type SessionState int

const (
	// Connected means the transport is open but no name is bound yet.
	Connected SessionState = iota
	// Joined means a display name is bound and messages are accepted.
	Joined
	// Closed means the session has been unregistered.
	Closed
)

func (s SessionState) String() string {
	switch s {
	case Connected:
		return "connected"
	case Joined:
		return "joined"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
