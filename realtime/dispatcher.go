package realtime

import (
	"context"
	"fmt"
	"log/slog"

	"feedgram/contract"
	"feedgram/domain/chat"
	"feedgram/domain/event"
	"feedgram/errors"
	"feedgram/moderation"
	"feedgram/store"
)

// SnapshotResolver is the user-profile collaborator contract: resolve an
// identity to its display-safe snapshot.
type SnapshotResolver interface {
	Snapshot(userID string) (chat.UserSnapshot, bool)
}

// Dispatcher is the protocol state machine. Inbound wire events arrive as
// commands on a buffered channel and are processed to completion, one at a
// time, by a single supervised worker: store mutation first, then the
// room-addressed broadcast. That sequencing (plus the store locks) is what
// keeps per-conversation append order and readBy monotonicity.
//
// Validation failures are dropped with a server log only. The wire
// protocol has no per-event acknowledgment channel, so there is no one to
// report them to.
type Dispatcher struct {
	log        *slog.Logger
	convos     *store.ConversationStore
	group      *store.GroupStore
	posts      *store.PostStore
	users      SnapshotResolver
	registry   contract.IRegistry
	moderator  *moderation.Moderator
	commands   chan chat.Command
	sinks      []contract.EventSink // permanent sinks: timeline, archive
	monitoring Monitoring
}

// Monitoring is the subset of the observability manager the dispatcher
// records into.
type Monitoring interface {
	IncrBroadcast()
	IncrDroppedEvent()
	IncrDroppedCommand()
}

func NewDispatcher(log *slog.Logger, convos *store.ConversationStore,
	group *store.GroupStore, posts *store.PostStore, users SnapshotResolver,
	registry contract.IRegistry, moderator *moderation.Moderator,
	bufferSize int, monitoring Monitoring) *Dispatcher {
	return &Dispatcher{
		log:        log,
		convos:     convos,
		group:      group,
		posts:      posts,
		users:      users,
		registry:   registry,
		moderator:  moderator,
		commands:   make(chan chat.Command, bufferSize),
		monitoring: monitoring,
	}
}

// AddSinks registers permanent sinks that observe every broadcast event
// (projections, archive). Call before the worker starts.
func (d *Dispatcher) AddSinks(sinks ...contract.EventSink) {
	d.sinks = append(d.sinks, sinks...)
}

// Dispatch enqueues a command without blocking the transport. A full
// queue drops the command; the transport offers no delivery guarantee to
// report it on anyway.
func (d *Dispatcher) Dispatch(cmd chat.Command) {
	select {
	case d.commands <- cmd:
	default:
		d.monitoring.IncrDroppedCommand()
		d.log.Warn("command queue full, dropping", "sender", cmd.Sender())
	}
}

// Run consumes the command queue until the context is canceled. Intended
// to run under the supervisor as the single dispatcher worker.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.log.Debug("stopping dispatcher worker")
			return nil
		case cmd, ok := <-d.commands:
			if !ok {
				return nil
			}
			d.process(ctx, cmd)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, cmd chat.Command) {
	switch c := cmd.(type) {
	case chat.SendGroupMessage:
		d.handleGroupMessage(ctx, c)
	case chat.TypingStatus:
		d.handleTyping(ctx, c)
	case chat.MessagesRead:
		d.handleMessagesRead(ctx, c)
	case chat.BroadcastPost:
		d.broadcast(ctx, d.registry.AllSinks(), event.NewPost{EnrichedPost: c.Post})
	default:
		d.log.Warn(fmt.Sprintf("unknown command %T, dropping", cmd))
	}
}

// handleGroupMessage appends to the global log and broadcasts to the
// group-chat room, the sender's own sessions included. An unresolvable
// sender drops the event silently (no ack channel in this protocol).
func (d *Dispatcher) handleGroupMessage(ctx context.Context, c chat.SendGroupMessage) {
	author, ok := d.users.Snapshot(c.UserID)
	if !ok {
		d.drop("unknown author", "user_id", c.UserID)
		return
	}
	text := c.Text
	if d.moderator != nil {
		text, _ = d.moderator.Censor(text)
	}
	msg, err := d.group.Append(author, text)
	if err != nil {
		d.drop("group append rejected", "user_id", c.UserID, "error", err)
		return
	}
	d.broadcast(ctx, d.registry.SinksForRoom(chat.GroupRoom), event.NewGroupMessage{GroupMessage: msg})
}

// handleTyping relays typing state to the other participant's private room
// only. Nothing is stored: typing is ephemeral and the sender owns the
// idle timeout.
func (d *Dispatcher) handleTyping(ctx context.Context, c chat.TypingStatus) {
	convo, ok := d.convos.Get(c.ConversationID)
	if !ok {
		d.drop("typing for unknown conversation", "conversation_id", c.ConversationID)
		return
	}
	other := convo.Other(c.UserID)
	if other == "" {
		d.drop("typing from non-participant", "conversation_id", c.ConversationID, "user_id", c.UserID)
		return
	}
	d.broadcast(ctx, d.registry.SinksForUser(other), event.TypingStatus{
		ConversationID: c.ConversationID,
		UserID:         c.UserID,
		IsTyping:       c.IsTyping,
	})
}

// handleMessagesRead marks the whole conversation read for the reader and
// notifies the other participant, but only when a readBy set actually
// changed.
func (d *Dispatcher) handleMessagesRead(ctx context.Context, c chat.MessagesRead) {
	convo, ok := d.convos.Get(c.ConversationID)
	if !ok {
		d.drop("mark-read for unknown conversation", "conversation_id", c.ConversationID)
		return
	}
	if !convo.HasParticipant(c.UserID) {
		d.drop("mark-read from non-participant", "conversation_id", c.ConversationID, "user_id", c.UserID)
		return
	}
	changed, err := d.convos.MarkRead(c.ConversationID, c.UserID)
	if err != nil {
		d.drop("mark-read rejected", "conversation_id", c.ConversationID, "error", err)
		return
	}
	if !changed {
		return
	}
	other := convo.Other(c.UserID)
	if other == "" {
		return
	}
	d.broadcast(ctx, d.registry.SinksForUser(other), event.MessagesRead{
		ConversationID: c.ConversationID,
		ReaderID:       c.UserID,
	})
}

// broadcast fans an event out to the targeted session sinks plus the
// permanent sinks. Per-sink failures (full buffer, closed session) affect
// that sink only.
func (d *Dispatcher) broadcast(ctx context.Context, targets []contract.EventSink, e event.DomainEvent) {
	for _, sink := range append(targets, d.sinks...) {
		if err := sink.Consume(ctx, e); err != nil {
			d.monitoring.IncrDroppedEvent()
			d.log.Debug("sink delivery failed", "event", e.Name(), "error", err)
			continue
		}
		d.monitoring.IncrBroadcast()
	}
}

func (d *Dispatcher) drop(reason string, args ...any) {
	d.monitoring.IncrDroppedEvent()
	d.log.Warn("dropping inbound event: "+reason, args...)
}

// The REST mutations below run synchronously on the caller's goroutine so
// the HTTP handler can return the result, then hand any fan-out to the
// worker through Dispatch.

// OpenConversation finds or creates the 1:1 conversation between the two
// identities. Both must resolve in the user directory.
func (d *Dispatcher) OpenConversation(userID, peerID string) (chat.Conversation, error) {
	if _, ok := d.users.Snapshot(userID); !ok {
		return chat.Conversation{}, errors.ErrUnknownAuthor
	}
	if _, ok := d.users.Snapshot(peerID); !ok {
		return chat.Conversation{}, errors.ErrUnknownAuthor
	}
	convo, _, err := d.convos.FindOrCreate(userID, peerID)
	return convo, err
}

// SendDirectMessage appends to a 1:1 conversation. Direct messages are not
// pushed over the socket; the recipient refreshes the conversation to see
// them.
func (d *Dispatcher) SendDirectMessage(conversationID, senderID, text string) (chat.ChatMessage, error) {
	return d.convos.Append(conversationID, senderID, text)
}

// CreatePost stores a feed post and fans the enriched version out to every
// live session.
func (d *Dispatcher) CreatePost(userID, content, imageURL, videoURL string) (chat.EnrichedPost, error) {
	author, ok := d.users.Snapshot(userID)
	if !ok {
		return chat.EnrichedPost{}, errors.ErrUnknownAuthor
	}
	post := d.posts.Create(userID, content, imageURL, videoURL)
	enriched := chat.EnrichedPost{Post: post, User: author}
	d.Dispatch(chat.BroadcastPost{Post: enriched})
	return enriched, nil
}
