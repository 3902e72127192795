package runtime

import (
	"strings"
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
	errs "chat-relay/errors"
)

var _ contract.IRegistry = (*Registry)(nil)

type member struct {
	name  string
	state domain.SessionState
	sink  contract.EventSink
}

// Registry tracks the set of currently open sessions and the display
// name bound to each. It owns the session map exclusively: mutations go
// only through Register/BindName/Unregister, and the mutex is never held
// across I/O.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*member
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.SessionID]*member)}
}

// Register creates a session in state Connected. The transport guarantees
// unique connection identities, so a duplicate is an internal anomaly
// reported as ErrDuplicateSession.
func (r *Registry) Register(id domain.SessionID, sink contract.EventSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return errs.ErrDuplicateSession
	}
	r.sessions[id] = &member{state: domain.Connected, sink: sink}
	return nil
}

// BindName transitions a session to Joined and stores its display name,
// trimmed of surrounding whitespace. Returns the stored name.
func (r *Registry) BindName(id domain.SessionID, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errs.ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.sessions[id]
	if !ok {
		return "", errs.ErrUnknownSession
	}
	m.name = trimmed
	m.state = domain.Joined
	return trimmed, nil
}

// Unregister removes the session and returns its last-known name along
// with whether it had joined. Double-unregister yields ErrUnknownSession;
// callers treat that as a no-op since disconnect signals can race.
func (r *Registry) Unregister(id domain.SessionID) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.sessions[id]
	if !ok {
		return "", false, errs.ErrUnknownSession
	}
	delete(r.sessions, id)
	return m.name, m.state == domain.Joined, nil
}

// State reports the current lifecycle state of a session.
func (r *Registry) State(id domain.SessionID) (domain.SessionState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.sessions[id]
	if !ok {
		return domain.Closed, errs.ErrUnknownSession
	}
	return m.state, nil
}

// Name returns the bound display name of a joined session.
func (r *Registry) Name(id domain.SessionID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.sessions[id]
	if !ok {
		return "", errs.ErrUnknownSession
	}
	if m.state != domain.Joined {
		return "", errs.ErrNotJoined
	}
	return m.name, nil
}

// SnapshotNames produces the current set of joined display names.
// Diagnostics only, never on the message hot path.
func (r *Registry) SnapshotNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, m := range r.sessions {
		if m.state == domain.Joined {
			names = append(names, m.name)
		}
	}
	return names
}

// Sinks returns a consistent point-in-time snapshot of every registered
// session's sink. A session disconnecting mid-broadcast either made the
// snapshot and receives the event, or was already removed; never half of
// both.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, m := range r.sessions {
		sinks = append(sinks, m.sink)
	}
	return sinks
}

// SinksExcept snapshots every sink but the given session's.
func (r *Registry) SinksExcept(id domain.SessionID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for sessionID, m := range r.sessions {
		if sessionID == id {
			continue
		}
		sinks = append(sinks, m.sink)
	}
	return sinks
}

// Len reports the number of registered sessions, joined or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
