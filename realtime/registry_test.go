package realtime

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"feedgram/domain/chat"
	"feedgram/domain/event"
	"feedgram/errors"
)

// captureSink records everything consumed, for observing fan-out.
type captureSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
	fail   error
}

func (c *captureSink) Consume(_ context.Context, e event.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.events = append(c.events, e)
	return nil
}

func (c *captureSink) all() []event.DomainEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event.DomainEvent, len(c.events))
	copy(out, c.events)
	return out
}

func TestRegistry_ConnectJoinsPrivateAndGroupRooms(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(slog.Default())
	sink := &captureSink{}

	req.NoError(r.Connect("s1", "alex", sink))

	req.Len(r.SinksForUser("alex"), 1)
	req.Len(r.SinksForRoom(chat.GroupRoom), 1)
	req.Equal([]string{"alex"}, r.OnlineIDs())
}

func TestRegistry_RejectsEmptyIdentity(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(slog.Default())

	err := r.Connect("s1", "", &captureSink{})
	req.ErrorIs(err, errors.ErrIdentityMissing)
	req.Empty(r.OnlineIDs())
	req.Zero(r.SessionCount())
}

func TestRegistry_PresenceTransitions(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(slog.Default())

	var transitions []string
	r.OnPresence = func(userID string, online bool) {
		state := "offline"
		if online {
			state = "online"
		}
		transitions = append(transitions, userID+":"+state)
	}

	// Two sessions for one user: only the first flips presence.
	req.NoError(r.Connect("s1", "alex", &captureSink{}))
	req.NoError(r.Connect("s2", "alex", &captureSink{}))
	req.Equal([]string{"alex:online"}, transitions)
	req.Len(r.SinksForUser("alex"), 2)

	// Only the last disconnect flips it back.
	r.Disconnect("s1")
	req.Equal([]string{"alex:online"}, transitions)
	r.Disconnect("s2")
	req.Equal([]string{"alex:online", "alex:offline"}, transitions)
	req.Empty(r.OnlineIDs())
}

func TestRegistry_DisconnectIsIdempotent(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(slog.Default())
	req.NoError(r.Connect("s1", "alex", &captureSink{}))

	r.Disconnect("s1")
	r.Disconnect("s1")
	r.Disconnect("never-existed")

	req.Zero(r.SessionCount())
	req.Empty(r.SinksForRoom(chat.GroupRoom))
}

func TestRegistry_ReconnectRejoinsRoomsExactlyOnce(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(slog.Default())

	req.NoError(r.Connect("s1", "alex", &captureSink{}))
	r.Disconnect("s1")

	// The replacement session holds exactly one membership per room, no
	// leftovers from the dropped one.
	req.NoError(r.Connect("s2", "alex", &captureSink{}))
	req.Len(r.SinksForUser("alex"), 1)
	req.Len(r.SinksForRoom(chat.GroupRoom), 1)
	req.Equal([]string{"alex"}, r.OnlineIDs())
	req.Equal(1, r.SessionCount())
}

func TestRegistry_OnlineIDsSorted(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(slog.Default())
	req.NoError(r.Connect("s1", "casey", &captureSink{}))
	req.NoError(r.Connect("s2", "alex", &captureSink{}))
	req.NoError(r.Connect("s3", "brian", &captureSink{}))

	req.Equal([]string{"alex", "brian", "casey"}, r.OnlineIDs())
	req.Len(r.AllSinks(), 3)
}
