package domain

// Command is an inbound intent decoded from the transport.
// The coordinator dispatches on the concrete variant, which keeps
// the state machine testable without a live connection.
type Command interface {
	Session() SessionID
}

// JoinCommand binds a display name to a connected session.
type JoinCommand struct {
	SessionID SessionID
	Name      string
}

func (c JoinCommand) Session() SessionID { return c.SessionID }

// PostMessageCommand carries the body of a chat message.
// The author is always the session's bound name, never the payload.
type PostMessageCommand struct {
	SessionID SessionID
	Body      string
}

func (c PostMessageCommand) Session() SessionID { return c.SessionID }

// DisconnectCommand closes a session. Valid in any state.
type DisconnectCommand struct {
	SessionID SessionID
}

func (c DisconnectCommand) Session() SessionID { return c.SessionID }
