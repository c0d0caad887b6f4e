// Package realtime holds the server-side presence/room model: sessions,
// the membership registry, and the dispatcher that turns validated inbound
// commands into room-addressed broadcasts.
package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"feedgram/domain/event"
	"feedgram/errors"
)

// Session is one live transport connection. Delivery is decoupled from the
// broadcaster through a buffered channel: Consume never blocks the
// dispatcher, the transport write pump drains Events. A full buffer drops
// the event for this session only (backpressure, not an error for the
// room).
type Session struct {
	id        string
	userID    string
	events    chan event.DomainEvent
	closeChan chan struct{}
	closeOnce sync.Once
}

func NewSession(userID string, buffer int) *Session {
	return &Session{
		id:        uuid.NewString(),
		userID:    userID,
		events:    make(chan event.DomainEvent, buffer),
		closeChan: make(chan struct{}),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) UserID() string { return s.userID }

// Consume queues an event for delivery to this session's transport.
func (s *Session) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-s.closeChan:
		return errors.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case s.events <- e:
		return nil
	default:
		return errors.ErrBufferFull
	}
}

// Events is drained by the transport write pump, in receipt order.
func (s *Session) Events() <-chan event.DomainEvent { return s.events }

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} { return s.closeChan }

// Close tears the session down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.closeChan) })
}
