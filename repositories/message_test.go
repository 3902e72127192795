package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestRepository(t *testing.T) MessageRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMessageRepository(db, slog.Default())
}

func TestAppend_Assigns_Identity_And_Timestamp(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)
	before := time.Now().UTC()

	message, err := repository.Append(context.Background(), "alice", "hello")

	req.NoError(err)
	req.NotEqual(uuid.Nil, message.ID)
	req.Equal("alice", message.Author)
	req.Equal("hello", message.Body)
	req.False(message.CreatedAt.Before(before))
}

func TestRecent_Empty_Store(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	messages, err := repository.Recent(context.Background(), 50)

	req.NoError(err)
	req.Empty(messages)
}

func TestRecent_Returns_Oldest_First(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)
	ctx := context.Background()

	first, err := repository.Append(ctx, "alice", "first")
	req.NoError(err)
	second, err := repository.Append(ctx, "bob", "second")
	req.NoError(err)
	third, err := repository.Append(ctx, "alice", "third")
	req.NoError(err)

	messages, err := repository.Recent(ctx, 50)
	req.NoError(err)
	req.Len(messages, 3)
	req.Equal([]string{first.Body, second.Body, third.Body},
		[]string{messages[0].Body, messages[1].Body, messages[2].Body})

	// Timestamps are non-decreasing in insertion order
	req.False(messages[1].CreatedAt.Before(messages[0].CreatedAt))
	req.False(messages[2].CreatedAt.Before(messages[1].CreatedAt))
}

func TestRecent_Takes_The_Tail(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := repository.Append(ctx, "alice", fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	// The limit keeps the most recent messages, still oldest-first
	messages, err := repository.Recent(ctx, 3)
	req.NoError(err)
	req.Len(messages, 3)
	req.Equal("message 7", messages[0].Body)
	req.Equal("message 8", messages[1].Body)
	req.Equal("message 9", messages[2].Body)
}

func TestRecent_No_Duplicates_Within_Snapshot(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repository.Append(ctx, "bob", fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	messages, err := repository.Recent(ctx, 50)
	req.NoError(err)

	seen := make(map[string]struct{})
	for _, message := range messages {
		_, dup := seen[message.ID.String()]
		req.False(dup)
		seen[message.ID.String()] = struct{}{}
	}
}

func TestAppend_Round_Trips_Through_Storage(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)
	ctx := context.Background()

	stored, err := repository.Append(ctx, "clara", "this message will self destruct in 5 seconds")
	req.NoError(err)

	messages, err := repository.Recent(ctx, 1)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(stored.ID, messages[0].ID)
	req.Equal(stored.Author, messages[0].Author)
	req.Equal(stored.Body, messages[0].Body)
	req.True(stored.CreatedAt.Equal(messages[0].CreatedAt))
}

func TestDump_Returns_Everything(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := repository.Append(ctx, "alice", fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	messages, err := repository.Dump()
	req.NoError(err)
	req.Len(messages, 4)
	req.Equal("message 0", messages[0].Body)
}
