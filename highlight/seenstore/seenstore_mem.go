package seenstore

import (
	"context"
	"sync"
	"time"
)

type MemSeenStore struct {
	mu        sync.Mutex
	deadlines map[string]time.Time
}

func NewMemSeenStore() *MemSeenStore {
	return &MemSeenStore{
		deadlines: make(map[string]time.Time),
	}
}

func (s *MemSeenStore) Seen(ctx context.Context, postID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unexpired(postID), nil
}

func (s *MemSeenStore) MarkSeen(ctx context.Context, postID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadlines[postID] = time.Now().Add(ttl)
	return nil
}

func (s *MemSeenStore) MarkSeenOnce(ctx context.Context, postID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unexpired(postID) {
		return false, nil
	}
	s.deadlines[postID] = time.Now().Add(ttl)
	return true, nil
}

func (s *MemSeenStore) Clear(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deadlines, postID)
	return nil
}

// caller must hold mu
func (s *MemSeenStore) unexpired(postID string) bool {
	d, ok := s.deadlines[postID]
	if !ok {
		return false
	}
	if time.Now().After(d) {
		delete(s.deadlines, postID)
		return false
	}
	return true
}
