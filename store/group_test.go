package store

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"feedgram/domain/chat"
	"feedgram/errors"
)

func TestGroupStore_AppendValidation(t *testing.T) {
	req := require.New(t)
	s := NewGroupStore(slog.Default())
	author := chat.UserSnapshot{ID: "alex", Name: "Alex Doe"}

	_, err := s.Append(author, "  ")
	req.ErrorIs(err, errors.ErrEmptyMessage)

	_, err = s.Append(chat.UserSnapshot{}, "hello")
	req.ErrorIs(err, errors.ErrUnknownAuthor)

	msg, err := s.Append(author, " hello group ")
	req.NoError(err)
	req.Equal("hello group", msg.Text)
	req.Equal(author, msg.User)
	req.NotEmpty(msg.ID)
	req.Equal(1, s.Len())
}

func TestGroupStore_MonotoneTimestamps(t *testing.T) {
	req := require.New(t)
	s := NewGroupStore(slog.Default())
	author := chat.UserSnapshot{ID: "alex"}

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base.Add(-time.Minute)}
	i := 0
	s.now = func() time.Time { ts := clock[i]; i++; return ts }

	first, err := s.Append(author, "one")
	req.NoError(err)
	second, err := s.Append(author, "two")
	req.NoError(err)
	req.False(second.Timestamp.Before(first.Timestamp))
}

func TestGroupStore_HistoryWindow(t *testing.T) {
	req := require.New(t)
	s := NewGroupStore(slog.Default())
	author := chat.UserSnapshot{ID: "alex"}

	for i := 1; i <= 5; i++ {
		_, err := s.Append(author, fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	// The window keeps the newest entries in chronological order.
	window := s.History(2)
	req.Len(window, 2)
	req.Equal("message 4", window[0].Text)
	req.Equal("message 5", window[1].Text)

	// No limit returns everything; appends never discard history.
	req.Len(s.History(0), 5)
	req.Len(s.History(100), 5)
}

func TestGroupStore_SeedKeepsOrder(t *testing.T) {
	req := require.New(t)
	s := NewGroupStore(slog.Default())

	s.Seed(chat.GroupMessage{ID: "g1", User: chat.UserSnapshot{ID: "brian"}, Text: "welcome"})
	s.Seed(chat.GroupMessage{ID: "g2", User: chat.UserSnapshot{ID: "casey"}, Text: "hi"})

	history := s.History(0)
	req.Len(history, 2)
	req.Equal("g1", history[0].ID)
	req.Equal("g2", history[1].ID)
}
