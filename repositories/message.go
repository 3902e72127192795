package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"chat-relay/domain"
	errs "chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const keyPrefix = "msg:"

// seekTail is lexicographically greater than any zero-padded UnixNano,
// so a reverse iterator lands on the newest message first.
const seekTail = "9999999999999999999"

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

type diskMessage struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Append assigns identity and timestamp, durably stores the message and
// returns the full stored record. The key is formatted as
// "msg:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
//
// Any storage failure is wrapped in ErrPersistenceUnavailable so the
// coordinator can report it to the originating session only.
func (m MessageRepository) Append(ctx context.Context, author, body string) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errs.ErrPersistenceUnavailable, err)
	}

	message := domain.Message{
		ID:        uuid.New(),
		Author:    author,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	key := fmt.Sprintf("%s%019d:%s", keyPrefix, message.CreatedAt.UnixNano(), message.ID)
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errs.ErrPersistenceUnavailable, err)
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errs.ErrPersistenceUnavailable, err)
	}
	return message, nil
}

// Recent retrieves the most recent messages using a reverse prefix scan.
// Thanks to the padded timestamp in the key, messages are naturally sorted
// by time; the result is re-reversed so callers get them oldest-first,
// ready for direct display. Returns an empty slice when no message exists.
func (m MessageRepository) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrPersistenceUnavailable, err)
	}

	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(keyPrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Start just past the newest possible key and walk backwards.
		seekKey := append([]byte(keyPrefix), []byte(seekTail)...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(byteMessages) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrPersistenceUnavailable, err)
	}

	messages := make([]domain.Message, 0, len(byteMessages))
	// The scan collected newest-first; unmarshal tail-first to restore
	// chronological order.
	for i := len(byteMessages) - 1; i >= 0; i-- {
		var dm diskMessage
		if err = json.Unmarshal(byteMessages[i], &dm); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrPersistenceUnavailable, err)
		}
		message, err := toMessage(dm)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrPersistenceUnavailable, err)
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// Dump returns every stored message oldest-first, without a limit.
// Used by the inspector CLI, never on the message hot path.
func (m MessageRepository) Dump() ([]domain.Message, error) {
	var diskMessages []diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(keyPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var dm diskMessage
				if err := json.Unmarshal(value, &dm); err != nil {
					return err
				}
				diskMessages = append(diskMessages, dm)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(diskMessages, func(dm diskMessage, _ int) domain.Message {
		message, _ := toMessage(dm)
		return message
	}), nil
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:        message.ID.String(),
		Author:    message.Author,
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
	}
}

func toMessage(dm diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        parsedID,
		Author:    dm.Author,
		Body:      dm.Body,
		CreatedAt: dm.CreatedAt.UTC(),
	}, nil
}
