package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	errs "chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/observability"

	"github.com/abadojack/whatlanggo"
)

var _ contract.ICoordinator = (*Coordinator)(nil)

// Coordinator is the single broadcast authority of the relay. It owns
// the registry mutations, invokes the message store, and fans events out
// to the registered sinks.
//
// The one invariant that matters: a message is never fanned out before
// Append has returned successfully. The registry lock is never held
// across the Append call, so other sessions keep flowing while one
// message is being persisted.
type Coordinator struct {
	log        *slog.Logger
	registry   contract.IRegistry
	repository contract.IMessageRepository
	moderator  *moderation.Moderator
	monitoring *observability.MonitoringManager

	// permanentSinks receive every broadcast in addition to the live
	// sessions (projections, diagnostics). Registered before Start,
	// never removed.
	permanentSinks []contract.EventSink
}

func NewCoordinator(
	log *slog.Logger,
	registry contract.IRegistry,
	repository contract.IMessageRepository,
	moderator *moderation.Moderator,
	monitoring *observability.MonitoringManager,
) *Coordinator {
	return &Coordinator{
		log:        log,
		registry:   registry,
		repository: repository,
		moderator:  moderator,
		monitoring: monitoring,
	}
}

// AddSink attaches a permanent sink. Not safe to call once sessions
// are connecting; wire sinks during startup.
func (c *Coordinator) AddSink(sinks ...contract.EventSink) {
	c.permanentSinks = append(c.permanentSinks, sinks...)
}

// Connect registers a session in state Connected. No broadcast: presence
// is only announced once a name is bound.
func (c *Coordinator) Connect(id domain.SessionID, sink contract.EventSink) error {
	if err := c.registry.Register(id, sink); err != nil {
		// Transport guarantees unique connection identities, so this is
		// an internal anomaly. It must not take down the broadcaster.
		c.log.Warn("Session already registered", "session_id", id, "err", err)
		return err
	}
	c.monitoring.SessionOpened()
	c.log.Debug("Session connected", "session_id", id)
	return nil
}

// Dispatch routes an inbound command to its handler. Errors concern the
// originating session only and never affect the other sessions.
func (c *Coordinator) Dispatch(ctx context.Context, cmd domain.Command) error {
	switch v := cmd.(type) {
	case domain.JoinCommand:
		return c.join(v)
	case domain.PostMessageCommand:
		return c.post(ctx, v)
	case domain.DisconnectCommand:
		return c.disconnect(v)
	default:
		return fmt.Errorf("unhandled command %T", cmd)
	}
}

// Recent exposes the bounded history snapshot delivered at session start.
func (c *Coordinator) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	return c.repository.Recent(ctx, limit)
}

// SnapshotNames exposes the joined display names for diagnostics.
func (c *Coordinator) SnapshotNames() []string {
	return c.registry.SnapshotNames()
}

func (c *Coordinator) join(cmd domain.JoinCommand) error {
	name, err := c.registry.BindName(cmd.SessionID, cmd.Name)
	if err != nil {
		return err
	}
	c.monitoring.SessionJoined()
	c.log.Info("Session joined", "session_id", cmd.SessionID, "name", name)

	// The joining session does not receive its own join event.
	c.broadcast(c.registry.SinksExcept(cmd.SessionID), event.UserJoined{Name: name})
	return nil
}

func (c *Coordinator) post(ctx context.Context, cmd domain.PostMessageCommand) error {
	author, err := c.registry.Name(cmd.SessionID)
	if err != nil {
		c.monitoring.MessageRejected()
		return err
	}

	// A stored message always carries text. Same trim-then-reject rule
	// as display names.
	trimmed := strings.TrimSpace(cmd.Body)
	if trimmed == "" {
		c.monitoring.MessageRejected()
		return errs.ErrInvalidBody
	}

	body, censoredWords := c.moderator.Censor(trimmed)
	if len(censoredWords) > 0 {
		info := whatlanggo.Detect(cmd.Body)
		c.monitoring.MessageCensored()
		c.log.Warn("Message censored",
			"author", author,
			"lang", info.Lang.Iso6391(),
			"words", len(censoredWords))
	}

	// Durability before visibility. Append runs with no lock held so
	// other sessions' events keep being processed meanwhile.
	message, err := c.repository.Append(ctx, author, body)
	if err != nil {
		c.monitoring.PersistenceFailure()
		c.log.Error("Message persistence failed", "author", author, "err", err)
		return err
	}
	c.monitoring.MessagePersisted()

	c.broadcast(c.registry.Sinks(), event.MessageBroadcast{Message: message})
	return nil
}

func (c *Coordinator) disconnect(cmd domain.DisconnectCommand) error {
	name, joined, err := c.registry.Unregister(cmd.SessionID)
	if err != nil {
		// Disconnect signals race: double-unregister is a no-op.
		c.log.Debug("Disconnect for unknown session", "session_id", cmd.SessionID)
		return nil
	}
	c.monitoring.SessionClosed()
	c.log.Debug("Session disconnected", "session_id", cmd.SessionID, "name", name)

	if joined {
		c.broadcast(c.registry.Sinks(), event.UserLeft{Name: name})
	}
	return nil
}

// broadcast delivers one event to a snapshot of sinks. A failing sink is
// logged and skipped; transport errors never propagate back into the
// coordinator.
func (c *Coordinator) broadcast(sinks []contract.EventSink, evt event.DomainEvent) {
	delivered := 0
	for _, sink := range append(sinks, c.permanentSinks...) {
		if err := sink.Consume(evt); err != nil {
			c.monitoring.EventDropped()
			c.log.Warn("Sink rejected event", "err", err)
			continue
		}
		delivered++
	}
	c.monitoring.EventsDelivered(delivered)
}
