// Package event defines the outbound events fanned out to sessions.
package event

import "chat-relay/domain"

// DomainEvent is delivered to session sinks by the coordinator.
type DomainEvent interface {
	event()
}

// MessageBroadcast carries a persisted message to every session,
// the sender included. The embedded record is exactly what the store
// returned, so clients never observe an unpersisted message.
type MessageBroadcast struct {
	Message domain.Message
}

// UserJoined announces a newly bound display name to the other sessions.
type UserJoined struct {
	Name string
}

// UserLeft announces the departure of a previously joined session.
type UserLeft struct {
	Name string
}

func (MessageBroadcast) event() {}
func (UserJoined) event()       {}
func (UserLeft) event()         {}
