// Package event defines the closed set of server-to-client events. Each
// variant carries its own fixed payload shape; the gateway encodes it as the
// data part of a wire frame under the name returned by Name().
package event

import "feedgram/domain/chat"

type DomainEvent interface {
	// Name is the wire event name, e.g. "new_group_message".
	Name() string
}

// NewGroupMessage is broadcast to the group-chat room, including the
// sender's own sessions.
type NewGroupMessage struct {
	chat.GroupMessage
}

func (NewGroupMessage) Name() string { return "new_group_message" }

// TypingStatus is relayed to the other participant's private room only,
// never echoed back to the originator.
type TypingStatus struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	IsTyping       bool   `json:"isTyping"`
}

func (TypingStatus) Name() string { return "typing_status" }

// MessagesRead is sent to the other participant's private room when a
// mark-read actually changed at least one readBy set.
type MessagesRead struct {
	ConversationID string `json:"conversationId"`
	ReaderID       string `json:"readerId"`
}

func (MessagesRead) Name() string { return "messages_read" }

// NewPost fans out to every connected session after the post collaborator
// persisted a post.
type NewPost struct {
	chat.EnrichedPost
}

func (NewPost) Name() string { return "new_post" }
