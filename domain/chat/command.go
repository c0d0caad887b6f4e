package chat

// Command is an inbound intent submitted to the dispatcher. One variant per
// client-to-server wire event, plus the pass-through post fan-out.
type Command interface {
	// Sender is the identity the command claims to act for. The dispatcher
	// validates the claim against the stores before mutating anything.
	Sender() string
}

type SendGroupMessage struct {
	UserID string
	Text   string
}

func (c SendGroupMessage) Sender() string { return c.UserID }

type TypingStatus struct {
	ConversationID string
	UserID         string
	IsTyping       bool
}

func (c TypingStatus) Sender() string { return c.UserID }

type MessagesRead struct {
	ConversationID string
	UserID         string
}

func (c MessagesRead) Sender() string { return c.UserID }

// BroadcastPost originates from the post-creation collaborator, not from a
// socket. It carries an already enriched post and fans out to every session.
type BroadcastPost struct {
	Post EnrichedPost
}

func (c BroadcastPost) Sender() string { return c.Post.UserID }
