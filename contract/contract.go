//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

// EventSink receives fan-out events for one session. Implementations
// must not block: a slow consumer drops or buffers on its own side,
// never inside the coordinator.
type EventSink interface {
	Consume(e event.DomainEvent) error
}

// IRegistry tracks the currently open sessions and the display name
// bound to each. Membership is the source of truth for broadcasts.
type IRegistry interface {
	Register(id domain.SessionID, sink EventSink) error
	BindName(id domain.SessionID, name string) (string, error)
	Unregister(id domain.SessionID) (name string, joined bool, err error)
	Name(id domain.SessionID) (string, error)
	SnapshotNames() []string
	Sinks() []EventSink
	SinksExcept(id domain.SessionID) []EventSink
}

// IMessageRepository is the persistence gateway consumed by the core.
type IMessageRepository interface {
	Append(ctx context.Context, author, body string) (domain.Message, error)
	Recent(ctx context.Context, limit int) ([]domain.Message, error)
}

// ICoordinator is the connection-event interface the transport drives.
type ICoordinator interface {
	Connect(id domain.SessionID, sink EventSink) error
	Dispatch(ctx context.Context, cmd domain.Command) error
	Recent(ctx context.Context, limit int) ([]domain.Message, error)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
