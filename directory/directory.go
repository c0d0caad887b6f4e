// Package directory is the user-profile lookup collaborator. The realtime
// core only ever sees the display-safe snapshot; credentials and contact
// details stay inside this package.
package directory

import (
	"sort"
	"sync"

	"feedgram/domain/chat"
)

// User is the full profile record. Email, Phone and Password must never
// leave the package through Snapshot.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Password  string
	AvatarURL string
	Bio       string
	Friends   []string
}

type Directory struct {
	mu    sync.RWMutex
	users map[string]User
}

func New() *Directory {
	return &Directory{users: make(map[string]User)}
}

// Add registers or replaces a profile.
func (d *Directory) Add(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

// Snapshot resolves a user id to its public projection. The second return
// is false when the id is unknown.
func (d *Directory) Snapshot(userID string) (chat.UserSnapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	if !ok {
		return chat.UserSnapshot{}, false
	}
	return chat.UserSnapshot{
		ID:        u.ID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
	}, true
}

// All returns the public projection of every registered profile, sorted
// by id for stable listings.
func (d *Directory) All() []chat.UserSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]chat.UserSnapshot, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, chat.UserSnapshot{
			ID:        u.ID,
			Name:      u.Name,
			AvatarURL: u.AvatarURL,
			Bio:       u.Bio,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Exists reports whether a profile is registered for userID.
func (d *Directory) Exists(userID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[userID]
	return ok
}
