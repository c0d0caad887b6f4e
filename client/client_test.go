package client

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"feedgram/domain/chat"
	"feedgram/domain/event"
	"feedgram/errors"
)

func TestClient_EndpointCarriesIdentity(t *testing.T) {
	req := require.New(t)
	c := New("ws://localhost:3001", "alex", Handlers{}, slog.Default())

	endpoint, err := c.endpoint()
	req.NoError(err)
	req.Equal("ws://localhost:3001/ws?userId=alex", endpoint)

	bad := New("://nope", "alex", Handlers{}, slog.Default())
	_, err = bad.endpoint()
	req.Error(err)
}

func TestClient_TypingDebouncer(t *testing.T) {
	req := require.New(t)
	c := New("ws://localhost:3001", "alex", Handlers{}, slog.Default())

	// First keystroke arms the idle timer; repeats only push it back.
	c.Keystroke("convo1")
	c.Keystroke("convo1")
	c.mu.Lock()
	req.Len(c.typingIn, 1)
	c.mu.Unlock()

	// An explicit stop clears the pending state immediately.
	c.StopTyping("convo1")
	c.mu.Lock()
	req.Empty(c.typingIn)
	c.mu.Unlock()

	// Stopping when not typing is a no-op.
	c.StopTyping("convo1")
}

func TestClient_OpenConversationEmitsReadReceiptOnlyWhenUnread(t *testing.T) {
	req := require.New(t)
	c := New("ws://localhost:3001", "alex", Handlers{}, slog.Default())

	unread := chat.Conversation{
		ID:           "convo1",
		Participants: [2]string{"alex", "brian"},
		Messages: []chat.ChatMessage{
			{ID: "m1", SenderID: "brian", Text: "hello", ReadBy: []string{"brian"}},
		},
	}
	// The client is not connected, so an attempted emit surfaces as
	// ErrNotConnected. That is how we observe the decision.
	req.ErrorIs(c.OpenConversation(unread), errors.ErrNotConnected)

	read := unread
	read.Messages = []chat.ChatMessage{
		{ID: "m1", SenderID: "brian", Text: "hello", ReadBy: []string{"brian", "alex"}},
	}
	req.NoError(c.OpenConversation(read))

	empty := chat.Conversation{ID: "convo2", Participants: [2]string{"alex", "casey"}}
	req.NoError(c.OpenConversation(empty))
}

func TestClient_HandleRoutesByEventName(t *testing.T) {
	req := require.New(t)

	var messages []event.NewGroupMessage
	var typing []event.TypingStatus
	c := New("ws://localhost:3001", "alex", Handlers{
		OnGroupMessage: func(e event.NewGroupMessage) { messages = append(messages, e) },
		OnTyping:       func(e event.TypingStatus) { typing = append(typing, e) },
	}, slog.Default())

	c.handle(frame{
		Event: "new_group_message",
		Data:  json.RawMessage(`{"id":"g1","user":{"id":"brian","name":"Brian Smith"},"text":"hello"}`),
	})
	c.handle(frame{
		Event: "typing_status",
		Data:  json.RawMessage(`{"conversationId":"convo1","userId":"brian","isTyping":true}`),
	})
	// Unknown events are ignored, not fatal.
	c.handle(frame{Event: "mystery", Data: json.RawMessage(`{}`)})

	req.Len(messages, 1)
	req.Equal("hello", messages[0].Text)
	req.Equal("Brian Smith", messages[0].User.Name)

	req.Len(typing, 1)
	req.Equal("convo1", typing[0].ConversationID)
	req.True(typing[0].IsTyping)
}
