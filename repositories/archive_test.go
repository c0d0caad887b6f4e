package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"feedgram/domain/chat"
)

func newTestArchive(t *testing.T) *GroupArchive {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { _ = blugeWriter.Close() })

	return NewGroupArchive(db, blugeWriter, slog.Default())
}

func TestGroupArchive_StoreAndRecent(t *testing.T) {
	req := require.New(t)
	archive := newTestArchive(t)
	author := chat.UserSnapshot{ID: "alex", Name: "Alex Doe"}
	now := time.Now().UTC().Truncate(time.Millisecond)

	for i := 1; i <= 5; i++ {
		req.NoError(archive.Store(chat.GroupMessage{
			ID:        uuid.NewString(),
			User:      author,
			Text:      fmt.Sprintf("message %d", i),
			Timestamp: now.Add(time.Duration(i) * time.Minute),
		}))
	}

	// Newest window, oldest first inside it.
	recent, err := archive.Recent(2)
	req.NoError(err)
	req.Len(recent, 2)
	req.Equal("message 4", recent[0].Text)
	req.Equal("message 5", recent[1].Text)
	req.Equal("Alex Doe", recent[0].User.Name)

	all, err := archive.Recent(0)
	req.NoError(err)
	req.Len(all, 5)
	req.Equal("message 1", all[0].Text)
}

func TestGroupArchive_Search(t *testing.T) {
	req := require.New(t)
	archive := newTestArchive(t)
	now := time.Now().UTC()

	messages := []chat.GroupMessage{
		{ID: uuid.NewString(), User: chat.UserSnapshot{ID: "alex"}, Text: "the badger sleeps tonight", Timestamp: now},
		{ID: uuid.NewString(), User: chat.UserSnapshot{ID: "brian"}, Text: "anyone up for coffee", Timestamp: now.Add(time.Minute)},
		{ID: uuid.NewString(), User: chat.UserSnapshot{ID: "casey"}, Text: "coffee sounds great", Timestamp: now.Add(2 * time.Minute)},
	}
	for _, m := range messages {
		req.NoError(archive.Store(m))
	}

	hits, err := archive.Search(context.Background(), "coffee", 10)
	req.NoError(err)
	req.Len(hits, 2)
	for _, h := range hits {
		req.Contains(h.Text, "coffee")
	}

	none, err := archive.Search(context.Background(), "zebra", 10)
	req.NoError(err)
	req.Empty(none)
}
