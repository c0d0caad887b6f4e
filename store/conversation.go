// Package store owns the server-side in-memory state: two-party
// conversations, the global group log, and the post glue. State is
// populated at startup and mutated only through the dispatcher; every
// store serializes its mutations under its own lock, which is what keeps
// per-conversation append order and readBy monotonicity without
// fine-grained locking.
package store

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedgram/domain/chat"
	"feedgram/errors"
)

// ConversationStore holds every two-party conversation. The unordered
// participant pair is indexed inside the store (sorted pair key), so
// lookup and create cannot race: Create is check-and-insert under one
// lock and is the tie-break authority for duplicates.
type ConversationStore struct {
	mu     sync.RWMutex
	byID   map[string]*chat.Conversation
	byPair map[string]string // sorted pair key -> conversation id
	log    *slog.Logger
	now    func() time.Time
}

func NewConversationStore(log *slog.Logger) *ConversationStore {
	return &ConversationStore{
		byID:   make(map[string]*chat.Conversation),
		byPair: make(map[string]string),
		log:    log,
		now:    time.Now,
	}
}

func pairKey(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return pair[0] + "\x00" + pair[1]
}

// Find returns the conversation for the unordered pair, if any. Argument
// order does not matter.
func (s *ConversationStore) Find(userA, userB string) (chat.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPair[pairKey(userA, userB)]
	if !ok {
		return chat.Conversation{}, false
	}
	return snapshot(s.byID[id]), true
}

// Get returns the conversation by id.
func (s *ConversationStore) Get(id string) (chat.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return chat.Conversation{}, false
	}
	return snapshot(c), true
}

// ForUser returns every conversation userID participates in.
func (s *ConversationStore) ForUser(userID string) []chat.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []chat.Conversation
	for _, c := range s.byID {
		if c.HasParticipant(userID) {
			out = append(out, snapshot(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Create registers a new empty conversation for the pair. Fails with
// ErrDuplicateConversation if one already exists, regardless of argument
// order. The storage order of participants is the argument order.
func (s *ConversationStore) Create(userA, userB string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(userA, userB)
	if _, ok := s.byPair[key]; ok {
		return chat.Conversation{}, errors.ErrDuplicateConversation
	}
	c := &chat.Conversation{
		ID:           "convo-" + uuid.NewString(),
		Participants: [2]string{userA, userB},
	}
	s.byID[c.ID] = c
	s.byPair[key] = c.ID
	s.log.Debug("conversation created", "id", c.ID, "participants", c.Participants)
	return snapshot(c), nil
}

// FindOrCreate resolves the pair to its conversation, creating one when
// none exists yet. Create is the tie-break authority, so losing the
// insert race to a concurrent creator just means re-resolving the pair.
func (s *ConversationStore) FindOrCreate(userA, userB string) (chat.Conversation, bool, error) {
	if c, ok := s.Find(userA, userB); ok {
		return c, false, nil
	}
	c, err := s.Create(userA, userB)
	if err == nil {
		return c, true, nil
	}
	// Lost the insert race to a concurrent creator: resolve again.
	if c, ok := s.Find(userA, userB); ok {
		return c, false, nil
	}
	return chat.Conversation{}, false, err
}

// Append adds a message to the conversation log. Timestamps are clamped to
// be monotonically non-decreasing within the conversation; the log is
// never reordered or truncated by any other operation.
func (s *ConversationStore) Append(conversationID, senderID, text string) (chat.ChatMessage, error) {
	text = strings.TrimSpace(text)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[conversationID]
	if !ok {
		return chat.ChatMessage{}, errors.ErrUnknownConversation
	}
	if !c.HasParticipant(senderID) {
		return chat.ChatMessage{}, errors.ErrNotParticipant
	}
	if text == "" {
		return chat.ChatMessage{}, errors.ErrEmptyMessage
	}
	ts := s.now().UTC()
	if n := len(c.Messages); n > 0 && ts.Before(c.Messages[n-1].Timestamp) {
		ts = c.Messages[n-1].Timestamp
	}
	msg := chat.ChatMessage{
		ID:        "m-" + uuid.NewString(),
		SenderID:  senderID,
		Text:      text,
		Timestamp: ts,
		ReadBy:    []string{},
	}
	c.Messages = append(c.Messages, msg)
	return cloneMessage(msg), nil
}

// MarkRead adds readerID to the readBy set of every message not already
// acknowledged by it. Idempotent; readBy sets only ever grow. Returns
// whether anything changed so callers can decide whether to broadcast.
func (s *ConversationStore) MarkRead(conversationID, readerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[conversationID]
	if !ok {
		return false, errors.ErrUnknownConversation
	}
	changed := false
	for i := range c.Messages {
		if !contains(c.Messages[i].ReadBy, readerID) {
			c.Messages[i].ReadBy = append(c.Messages[i].ReadBy, readerID)
			changed = true
		}
	}
	return changed, nil
}

// SeedConversation installs a pre-built conversation at startup. Fails
// with ErrDuplicateConversation like Create.
func (s *ConversationStore) SeedConversation(c chat.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(c.Participants[0], c.Participants[1])
	if _, ok := s.byPair[key]; ok {
		return errors.ErrDuplicateConversation
	}
	cp := snapshot(&c)
	s.byID[c.ID] = &cp
	s.byPair[key] = c.ID
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func cloneMessage(m chat.ChatMessage) chat.ChatMessage {
	m.ReadBy = append([]string{}, m.ReadBy...)
	return m
}

// snapshot deep-copies a conversation so callers never alias store-owned
// slices.
func snapshot(c *chat.Conversation) chat.Conversation {
	cp := *c
	cp.Messages = make([]chat.ChatMessage, len(c.Messages))
	for i, m := range c.Messages {
		cp.Messages[i] = cloneMessage(m)
	}
	return cp
}
