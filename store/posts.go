package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedgram/domain/chat"
)

// PostStore is collaborator-grade glue: it exists so the post-creation
// flow has something to persist into before asking the dispatcher to fan
// out new_post. Feed rendering proper is out of scope.
type PostStore struct {
	mu    sync.RWMutex
	posts map[string]chat.Post
	now   func() time.Time
}

func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[string]chat.Post), now: time.Now}
}

// Create stores a new post for userID and returns it.
func (s *PostStore) Create(userID, content, imageURL, videoURL string) chat.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := chat.Post{
		ID:        "post-" + uuid.NewString(),
		UserID:    userID,
		Content:   content,
		ImageURL:  imageURL,
		VideoURL:  videoURL,
		Timestamp: s.now().UTC(),
	}
	s.posts[p.ID] = p
	return p
}

// Feed returns all posts, newest first.
func (s *PostStore) Feed() []chat.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]chat.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}
