package inmemory

import (
	"slices"
	"sync"

	"feedctl/internal/model"
	"feedctl/internal/service"
)

// PostStorage keeps the last fetched feed snapshot. It is only ever replaced
// as a whole; readers always get copies.
type PostStorage struct {
	mu    sync.RWMutex
	posts []model.Post
	byID  map[model.PostID]int
}

var _ service.PostStore = (*PostStorage)(nil)

func NewPostStorage() *PostStorage {
	return &PostStorage{
		byID: make(map[model.PostID]int),
	}
}

func (s *PostStorage) Replace(posts []model.Post) {
	next := make([]model.Post, len(posts))
	byID := make(map[model.PostID]int, len(posts))
	for i, p := range posts {
		next[i] = clonePost(p)
		byID[p.ID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = next
	s.byID = byID
}

func (s *PostStorage) List() []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Post, len(s.posts))
	for i, p := range s.posts {
		out[i] = clonePost(p)
	}
	return out
}

func (s *PostStorage) GetByID(id model.PostID) (model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.byID[id]; ok {
		return clonePost(s.posts[i]), nil
	}
	return model.Post{}, service.ErrNotFound
}

func (s *PostStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.posts)
}

func clonePost(p model.Post) model.Post {
	p.Tags = slices.Clone(p.Tags)
	return p
}
