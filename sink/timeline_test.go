package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"feedgram/domain/chat"
	"feedgram/domain/event"
)

func TestTimeline_PreservesReceiptOrder(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	ctx := context.Background()

	req.NoError(timeline.Consume(ctx, event.NewGroupMessage{
		GroupMessage: chat.GroupMessage{ID: "g1", Text: "first"},
	}))
	req.NoError(timeline.Consume(ctx, event.NewPost{
		EnrichedPost: chat.EnrichedPost{Post: chat.Post{ID: "p1", Content: "a post"}},
	}))
	req.NoError(timeline.Consume(ctx, event.NewGroupMessage{
		GroupMessage: chat.GroupMessage{ID: "g2", Text: "second"},
	}))

	messages := timeline.SnapshotMessages()
	req.Len(messages, 2)
	req.Equal("first", messages[0].Text)
	req.Equal("second", messages[1].Text)

	posts := timeline.SnapshotPosts()
	req.Len(posts, 1)
	req.Equal("p1", posts[0].ID)
}

func TestTimeline_SnapshotsAreSafeDuringConsume(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = timeline.Consume(ctx, event.NewGroupMessage{
				GroupMessage: chat.GroupMessage{Text: "hello"},
			})
		}
	}()
	for i := 0; i < 100; i++ {
		_ = timeline.SnapshotMessages()
	}
	<-done

	req.Len(timeline.SnapshotMessages(), 100)
}

func TestTimeline_IgnoresUnrelatedEvents(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()

	req.NoError(timeline.Consume(context.Background(), event.TypingStatus{
		ConversationID: "convo1", UserID: "alex", IsTyping: true,
	}))
	req.Empty(timeline.SnapshotMessages())
	req.Empty(timeline.SnapshotPosts())
}
