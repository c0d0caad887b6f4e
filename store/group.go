package store

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedgram/domain/chat"
	"feedgram/errors"
)

// GroupStore holds the single global message log. Append-only and
// unbounded; callers apply a retrieval window, the store never discards
// history.
type GroupStore struct {
	mu       sync.RWMutex
	messages []chat.GroupMessage
	log      *slog.Logger
	now      func() time.Time
}

func NewGroupStore(log *slog.Logger) *GroupStore {
	return &GroupStore{log: log, now: time.Now}
}

// Append adds a message authored by the given snapshot. Fails with
// ErrEmptyMessage on blank text and ErrUnknownAuthor when the snapshot
// was not resolved.
func (s *GroupStore) Append(author chat.UserSnapshot, text string) (chat.GroupMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.GroupMessage{}, errors.ErrEmptyMessage
	}
	if author.ID == "" {
		return chat.GroupMessage{}, errors.ErrUnknownAuthor
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.now().UTC()
	if n := len(s.messages); n > 0 && ts.Before(s.messages[n-1].Timestamp) {
		ts = s.messages[n-1].Timestamp
	}
	msg := chat.GroupMessage{
		ID:        uuid.NewString(),
		User:      author,
		Text:      text,
		Timestamp: ts,
	}
	s.messages = append(s.messages, msg)
	return msg, nil
}

// Seed installs a pre-built message at startup, keeping append order.
func (s *GroupStore) Seed(msg chat.GroupMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// History returns the most recent limit messages in chronological order;
// limit <= 0 returns the whole log.
func (s *GroupStore) History(limit int) []chat.GroupMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.messages) > limit {
		start = len(s.messages) - limit
	}
	out := make([]chat.GroupMessage, len(s.messages)-start)
	copy(out, s.messages[start:])
	return out
}

// Len returns the current log length.
func (s *GroupStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
