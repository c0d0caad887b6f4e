package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"feedgram/domain/event"
	"feedgram/errors"
)

func TestSession_DeliversInOrder(t *testing.T) {
	req := require.New(t)
	s := NewSession("alex", 4)
	ctx := context.Background()

	req.NoError(s.Consume(ctx, event.TypingStatus{ConversationID: "c1", UserID: "brian", IsTyping: true}))
	req.NoError(s.Consume(ctx, event.TypingStatus{ConversationID: "c1", UserID: "brian", IsTyping: false}))

	first := (<-s.Events()).(event.TypingStatus)
	second := (<-s.Events()).(event.TypingStatus)
	req.True(first.IsTyping)
	req.False(second.IsTyping)
}

func TestSession_FullBufferDropsForThisSessionOnly(t *testing.T) {
	req := require.New(t)
	s := NewSession("alex", 1)
	ctx := context.Background()

	req.NoError(s.Consume(ctx, event.MessagesRead{ConversationID: "c1", ReaderID: "brian"}))
	err := s.Consume(ctx, event.MessagesRead{ConversationID: "c1", ReaderID: "brian"})
	req.ErrorIs(err, errors.ErrBufferFull)
}

func TestSession_ConsumeAfterClose(t *testing.T) {
	req := require.New(t)
	s := NewSession("alex", 1)

	s.Close()
	s.Close() // safe to repeat

	err := s.Consume(context.Background(), event.MessagesRead{ConversationID: "c1", ReaderID: "brian"})
	req.ErrorIs(err, errors.ErrSessionClosed)

	select {
	case <-s.Done():
	default:
		req.Fail("Done should be closed")
	}
}
