package sink

import (
	"context"
	"sync"

	"feedgram/domain/chat"
	"feedgram/domain/event"
)

// Timeline holds a simple local timeline of group messages and feed posts,
// in arrival order. Used by the viewer CLI and by tests observing the
// fan-out.
type Timeline struct {
	mu       sync.Mutex
	Messages []chat.GroupMessage
	Posts    []chat.EnrichedPost
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch evt := e.(type) {
	case event.NewGroupMessage:
		t.Messages = append(t.Messages, evt.GroupMessage)
	case event.NewPost:
		t.Posts = append(t.Posts, evt.EnrichedPost)
	}
	return nil
}

// SnapshotMessages copies the collected messages for safe reading while
// the dispatcher keeps appending.
func (t *Timeline) SnapshotMessages() []chat.GroupMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]chat.GroupMessage, len(t.Messages))
	copy(out, t.Messages)
	return out
}

// SnapshotPosts copies the collected posts.
func (t *Timeline) SnapshotPosts() []chat.EnrichedPost {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]chat.EnrichedPost, len(t.Posts))
	copy(out, t.Posts)
	return out
}
