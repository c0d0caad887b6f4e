package realtime

import (
	"log/slog"
	"sort"
	"sync"

	"feedgram/contract"
	"feedgram/domain/chat"
	"feedgram/errors"
)

type set map[string]struct{}

type sessionEntry struct {
	userID string
	sink   contract.EventSink
	rooms  set
}

// Registry is the room membership manager. It keeps the explicit mapping
// from identity to session-set; "online" is derived as having at least one
// registered session. Connect joins the session to its private room (the
// user id) and to the shared group-chat room in one step.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry // sessionID -> entry
	rooms    map[string]set           // room -> sessionIDs
	users    map[string]set           // userID -> sessionIDs
	log      *slog.Logger

	// OnPresence, when set, observes online/offline transitions. Called
	// outside the lock.
	OnPresence func(userID string, online bool)
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*sessionEntry),
		rooms:    make(map[string]set),
		users:    make(map[string]set),
		log:      log,
	}
}

// Connect registers a session for userID and joins it to room=userID and
// room=group-chat. Fails with ErrIdentityMissing on an empty identity; the
// transport may keep such a connection open, but realtime features stay
// inert for it.
func (r *Registry) Connect(sessionID, userID string, sink contract.EventSink) error {
	if userID == "" {
		return errors.ErrIdentityMissing
	}

	r.mu.Lock()
	entry := &sessionEntry{userID: userID, sink: sink, rooms: make(set)}
	r.sessions[sessionID] = entry

	wasOnline := len(r.users[userID]) > 0
	if _, ok := r.users[userID]; !ok {
		r.users[userID] = make(set)
	}
	r.users[userID][sessionID] = struct{}{}

	r.joinLocked(sessionID, entry, userID)
	r.joinLocked(sessionID, entry, chat.GroupRoom)
	r.mu.Unlock()

	if !wasOnline {
		r.log.Info("user online", "user_id", userID)
		if r.OnPresence != nil {
			r.OnPresence(userID, true)
		}
	}
	return nil
}

// Disconnect removes a session and its room memberships. Idempotent:
// disconnecting an unknown or already removed session is a no-op.
func (r *Registry) Disconnect(sessionID string) {
	r.mu.Lock()
	entry, ok := r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.sessions, sessionID)
	for room := range entry.rooms {
		r.leaveLocked(sessionID, room)
	}

	wentOffline := false
	if members, ok := r.users[entry.userID]; ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(r.users, entry.userID)
			wentOffline = true
		}
	}
	r.mu.Unlock()

	if wentOffline {
		r.log.Info("user offline", "user_id", entry.userID)
		if r.OnPresence != nil {
			r.OnPresence(entry.userID, false)
		}
	}
}

func (r *Registry) joinLocked(sessionID string, entry *sessionEntry, room string) {
	if _, ok := r.rooms[room]; !ok {
		r.rooms[room] = make(set)
	}
	r.rooms[room][sessionID] = struct{}{}
	entry.rooms[room] = struct{}{}
}

// leaveLocked cleans the room set, removing empty rooms entirely to avoid
// leaking entries over time.
func (r *Registry) leaveLocked(sessionID, room string) {
	if members, ok := r.rooms[room]; ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
}

// SinksForRoom resolves every session currently joined to the room into
// its sink. Includes the sender's own sessions; callers wanting "others
// only" address the peer's private room instead.
func (r *Registry) SinksForRoom(room string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.rooms[room]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(members))
	for sessionID := range members {
		if entry, ok := r.sessions[sessionID]; ok {
			sinks = append(sinks, entry.sink)
		}
	}
	return sinks
}

// SinksForUser resolves every live session of one identity (its private
// room) for targeted delivery.
func (r *Registry) SinksForUser(userID string) []contract.EventSink {
	return r.SinksForRoom(userID)
}

// AllSinks returns every registered session sink, for whole-server
// fan-out such as new_post.
func (r *Registry) AllSinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, entry := range r.sessions {
		sinks = append(sinks, entry.sink)
	}
	return sinks
}

// OnlineIDs returns the identities with at least one live session, sorted
// for stable output.
func (r *Registry) OnlineIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SessionCount returns the number of live sessions.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
