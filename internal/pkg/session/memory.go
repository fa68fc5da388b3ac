package session

import (
	"context"
	"sync"
	"time"

	"github.com/yigit/altklausuren/internal/pkg/logger"
)

// MemoryStore holds sessions in process memory. Expired entries are
// dropped lazily on Get and periodically by a janitor goroutine.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates a store; a positive sweepInterval starts the janitor
func NewMemoryStore(ttl, sweepInterval time.Duration, opts ...MemoryOption) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if sweepInterval > 0 {
		s.wg.Add(1)
		go s.janitor(sweepInterval)
	}
	return s
}

// Create starts a new session for the user
func (s *MemoryStore) Create(ctx context.Context, userID int64, username string) (*Session, error) {
	sess := newSession(userID, username, s.now(), s.ttl)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	copied := *sess
	return &copied, nil
}

// Get returns a live session or ErrNotFound
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if sess.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	copied := *sess
	return &copied, nil
}

// Delete removes a session; deleting an unknown id is not an error
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were dropped
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Close stops the janitor
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) janitor(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Debug().Int("removed", n).Msg("Expired sessions swept")
			}
		case <-s.stop:
			return
		}
	}
}
