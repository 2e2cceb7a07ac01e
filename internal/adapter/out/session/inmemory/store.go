package inmemory

import (
	"context"
	"sync"

	"feedctl/internal/model"
	"feedctl/internal/service"
)

// Store keeps the session for the lifetime of the process only.
type Store struct {
	mu   sync.RWMutex
	sess model.Session
}

var _ service.TokenStore = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) AccessToken(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.AccessToken, nil
}

func (s *Store) Session(_ context.Context) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess, nil
}

func (s *Store) SaveSession(_ context.Context, sess model.Session) error {
	s.mu.Lock()
	s.sess = sess
	s.mu.Unlock()
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	s.sess = model.Session{}
	s.mu.Unlock()
	return nil
}
