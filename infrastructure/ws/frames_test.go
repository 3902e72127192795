package ws

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"
	errs "chat-relay/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame_Join(t *testing.T) {
	req := require.New(t)

	frame, err := DecodeFrame([]byte(`{"type":"join","name":"alice"}`))

	req.NoError(err)
	req.Equal(TypeJoin, frame.Type)
	req.Equal("alice", frame.Name)
}

func TestDecodeFrame_Message(t *testing.T) {
	req := require.New(t)

	frame, err := DecodeFrame([]byte(`{"type":"message","body":"hello there"}`))

	req.NoError(err)
	req.Equal(TypeMessage, frame.Type)
	req.Equal("hello there", frame.Body)
}

func TestDecodeFrame_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := DecodeFrame([]byte(`{"type":`))

	req.Error(err)
}

func TestEncodeEvent_Message_Uses_RFC3339_Timestamp(t *testing.T) {
	req := require.New(t)
	createdAt := time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)
	message := domain.Message{
		ID:        uuid.New(),
		Author:    "alice",
		Body:      "hello",
		CreatedAt: createdAt,
	}

	frame, ok := EncodeEvent(event.MessageBroadcast{Message: message})
	req.True(ok)

	data, err := json.Marshal(frame)
	req.NoError(err)
	req.Contains(string(data), `"type":"message"`)
	req.Contains(string(data), `"createdAt":"2026-03-14T09:26:53Z"`)
	req.Contains(string(data), fmt.Sprintf(`"id":"%s"`, message.ID))
	// Presence-only fields stay off the wire
	req.NotContains(string(data), `"name"`)
	req.NotContains(string(data), `"error"`)
}

func TestEncodeEvent_Presence(t *testing.T) {
	req := require.New(t)

	joined, ok := EncodeEvent(event.UserJoined{Name: "bob"})
	req.True(ok)
	req.Equal(Frame{Type: TypeUserJoined, Name: "bob"}, joined)

	left, ok := EncodeEvent(event.UserLeft{Name: "bob"})
	req.True(ok)
	req.Equal(Frame{Type: TypeUserLeft, Name: "bob"}, left)
}

func TestEncodeEvent_Unknown_Is_Skipped(t *testing.T) {
	req := require.New(t)

	_, ok := EncodeEvent(nil)

	req.False(ok)
}

func TestHistoryFrame_Empty_Snapshot_Is_Explicit(t *testing.T) {
	req := require.New(t)

	frame := HistoryFrame(nil)

	data, err := json.Marshal(frame)
	req.NoError(err)
	// nil would drop the field entirely, the client needs the empty list
	req.JSONEq(`{"type":"history","messages":[]}`, string(data))
}

func TestHistoryFrame_Keeps_Order(t *testing.T) {
	req := require.New(t)
	first := domain.Message{ID: uuid.New(), Author: "alice", Body: "first", CreatedAt: time.Now().UTC()}
	second := domain.Message{ID: uuid.New(), Author: "bob", Body: "second", CreatedAt: time.Now().UTC()}

	frame := HistoryFrame([]domain.Message{first, second})

	req.Equal(TypeHistory, frame.Type)
	req.Len(frame.Messages, 2)
	req.Equal("first", frame.Messages[0].Body)
	req.Equal("second", frame.Messages[1].Body)
}

func TestErrorFrame_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{name: "invalid name", err: errs.ErrInvalidName, code: CodeInvalidName},
		{name: "invalid body", err: errs.ErrInvalidBody, code: CodeInvalidBody},
		{name: "not joined", err: errs.ErrNotJoined, code: CodeNotJoined},
		{name: "unknown session maps to not joined", err: errs.ErrUnknownSession, code: CodeNotJoined},
		{name: "persistence unavailable", err: fmt.Errorf("%w: disk full", errs.ErrPersistenceUnavailable), code: CodePersistenceUnavailable},
		{name: "anything else", err: fmt.Errorf("weird"), code: CodeUnknownEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			frame := ErrorFrame(tt.err)

			req.Equal(TypeError, frame.Type)
			req.Equal(tt.code, frame.Error)
		})
	}
}
