// Package chat holds the core entities of the realtime messaging layer.
// Entities are plain values; all mutation goes through the stores and the
// dispatcher, never through these types directly.
package chat

import "time"

// GroupRoom is the single global chat room every identified session joins.
// Every other room is a private room named after a user id.
const GroupRoom = "group-chat"

// UserSnapshot is the display-safe projection of a user, denormalized onto
// group messages and posts at send time. It must never carry credentials or
// contact details.
type UserSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Bio       string `json:"bio,omitempty"`
}

// ChatMessage is one entry of a two-party conversation log. Immutable after
// append except for ReadBy, which only grows.
type ChatMessage struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	ReadBy    []string  `json:"readBy"`
}

// Conversation is an append-only message log between exactly two
// participants. Storage order of the pair is stable; lookups are
// order-independent.
type Conversation struct {
	ID           string        `json:"id"`
	Participants [2]string     `json:"participants"`
	Messages     []ChatMessage `json:"messages"`
}

// Other returns the participant that is not userID, or "" if userID is not
// a participant.
func (c Conversation) Other(userID string) string {
	switch userID {
	case c.Participants[0]:
		return c.Participants[1]
	case c.Participants[1]:
		return c.Participants[0]
	}
	return ""
}

// HasParticipant reports whether userID is one of the two participants.
func (c Conversation) HasParticipant(userID string) bool {
	return c.Participants[0] == userID || c.Participants[1] == userID
}

// HasUnreadFor reports whether any message was not yet acknowledged by
// userID. The session controller uses this to decide whether opening the
// conversation should emit a read receipt.
func (c Conversation) HasUnreadFor(userID string) bool {
	for _, m := range c.Messages {
		read := false
		for _, r := range m.ReadBy {
			if r == userID {
				read = true
				break
			}
		}
		if !read {
			return true
		}
	}
	return false
}

// GroupMessage is one entry of the global group-chat log. The author is a
// denormalized snapshot taken at send time, no per-message read tracking.
type GroupMessage struct {
	ID        string       `json:"id"`
	User      UserSnapshot `json:"user"`
	Text      string       `json:"text"`
	Timestamp time.Time    `json:"timestamp"`
}

// Post is feed content owned by an external collaborator; the core only
// fans it out after creation.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	VideoURL  string    `json:"videoUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EnrichedPost is a Post with the author snapshot resolved, the shape that
// goes on the wire.
type EnrichedPost struct {
	Post
	User UserSnapshot `json:"user"`
}
