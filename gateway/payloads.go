package gateway

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"feedgram/domain/event"
)

var validate = validator.New()

// Frame is the socket envelope, both directions: an event name plus its
// JSON payload. Inbound data stays raw until the event name selects the
// payload type.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Inbound event names.
const (
	EventSendGroupMessage = "send_group_message"
	EventTypingStatus     = "typing_status"
	EventMessagesRead     = "messages_read"
)

// Payload userId fields mirror the wire format. The handler falls back to
// the handshake identity when the field is empty.
type SendGroupMessagePayload struct {
	UserID string `json:"userId"`
	Text   string `json:"text" validate:"required,max=2000"`
}

type TypingStatusPayload struct {
	ConversationID string `json:"conversationId" validate:"required"`
	UserID         string `json:"userId"`
	IsTyping       bool   `json:"isTyping"`
}

type MessagesReadPayload struct {
	ConversationID string `json:"conversationId" validate:"required"`
	UserID         string `json:"userId"`
}

// outboundFrame wraps a domain event for the write pump. Marshalling the
// event value directly keeps the payload shapes defined in one place.
func outboundFrame(e event.DomainEvent) (Frame, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: e.Name(), Data: data}, nil
}

// REST request bodies.

type TokenRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type CreateConversationRequest struct {
	PeerID string `json:"peerId" validate:"required"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type CreatePostRequest struct {
	Content  string `json:"content" validate:"required,max=4000"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
	VideoURL string `json:"videoUrl" validate:"omitempty,url"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
