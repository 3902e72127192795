//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime"
)

// IChatService is the surface the transport consumes. It hides the
// coordinator behind an interface so the session handler can be tested
// with a mock.
type IChatService interface {
	Connect(id domain.SessionID, sink contract.EventSink) error
	Join(ctx context.Context, id domain.SessionID, name string) error
	PostMessage(ctx context.Context, id domain.SessionID, body string) error
	Disconnect(id domain.SessionID)
	Recent(ctx context.Context, limit int) ([]domain.Message, error)
}

type ChatService struct {
	coordinator *runtime.Coordinator
}

func NewChatService(coordinator *runtime.Coordinator) *ChatService {
	return &ChatService{coordinator: coordinator}
}

func (s *ChatService) Connect(id domain.SessionID, sink contract.EventSink) error {
	return s.coordinator.Connect(id, sink)
}

func (s *ChatService) Join(ctx context.Context, id domain.SessionID, name string) error {
	return s.coordinator.Dispatch(ctx, domain.JoinCommand{SessionID: id, Name: name})
}

func (s *ChatService) PostMessage(ctx context.Context, id domain.SessionID, body string) error {
	return s.coordinator.Dispatch(ctx, domain.PostMessageCommand{SessionID: id, Body: body})
}

// Disconnect is unconditional and idempotent; racing close signals end
// up as a registry no-op.
func (s *ChatService) Disconnect(id domain.SessionID) {
	_ = s.coordinator.Dispatch(context.Background(), domain.DisconnectCommand{SessionID: id})
}

func (s *ChatService) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	return s.coordinator.Recent(ctx, limit)
}
