package ws

import (
	"encoding/json"
	"errors"

	"chat-relay/domain"
	"chat-relay/domain/event"
	errs "chat-relay/errors"
)

// Frame types exchanged with the client. Inbound carries join/message,
// outbound carries history, message, presence, and error frames.
const (
	TypeJoin       = "join"
	TypeMessage    = "message"
	TypeHistory    = "history"
	TypeUserJoined = "user-joined"
	TypeUserLeft   = "user-left"
	TypeError      = "error"
)

// Error codes reported back to the originating session only.
const (
	CodeInvalidName            = "invalid-name"
	CodeInvalidBody            = "invalid-body"
	CodeNotJoined              = "not-joined"
	CodePersistenceUnavailable = "persistence-unavailable"
	CodeBodyTooLong            = "body-too-long"
	CodeUnknownEvent           = "unknown-event"
)

// Frame is the single JSON envelope on the wire. Unused fields are
// omitted, so each frame only carries its own payload.
type Frame struct {
	Type     string           `json:"type"`
	Name     string           `json:"name,omitempty"`
	Body     string           `json:"body,omitempty"`
	Message  *domain.Message  `json:"message,omitempty"`
	Messages []domain.Message `json:"messages,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// DecodeFrame parses one inbound text frame.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// EncodeEvent maps a coordinator event onto its wire frame.
func EncodeEvent(e event.DomainEvent) (Frame, bool) {
	switch evt := e.(type) {
	case event.MessageBroadcast:
		message := evt.Message
		return Frame{Type: TypeMessage, Message: &message}, true
	case event.UserJoined:
		return Frame{Type: TypeUserJoined, Name: evt.Name}, true
	case event.UserLeft:
		return Frame{Type: TypeUserLeft, Name: evt.Name}, true
	default:
		return Frame{}, false
	}
}

// HistoryFrame wraps the initial bounded snapshot, oldest-first. An
// empty history is still sent so the client knows the snapshot is done.
func HistoryFrame(messages []domain.Message) Frame {
	if messages == nil {
		messages = []domain.Message{}
	}
	return Frame{Type: TypeHistory, Messages: messages}
}

// ErrorFrame maps a rejection to its wire error code.
func ErrorFrame(err error) Frame {
	return Frame{Type: TypeError, Error: errorCode(err)}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, errs.ErrInvalidName):
		return CodeInvalidName
	case errors.Is(err, errs.ErrInvalidBody):
		return CodeInvalidBody
	case errors.Is(err, errs.ErrNotJoined), errors.Is(err, errs.ErrUnknownSession):
		return CodeNotJoined
	case errors.Is(err, errs.ErrPersistenceUnavailable):
		return CodePersistenceUnavailable
	default:
		return CodeUnknownEvent
	}
}
