package cache

import (
	"context"
	"sync"
	"time"

	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InMemoryStore keeps idempotency keys and generation locks in process memory.
// It serves single-instance deployments and tests; replicas do not share it.
type InMemoryStore struct {
	mu        sync.Mutex
	keys      map[string]time.Time
	locks     map[string]lockEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// NewInMemoryStore creates a store and starts its cleanup loop
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{
		keys:     make(map[string]time.Time),
		locks:    make(map[string]lockEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

// MarkProcessed returns true when key was newly marked
func (s *InMemoryStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.keys[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether key is marked and unexpired
func (s *InMemoryStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.keys[key]
	return ok && s.now().Before(exp), nil
}

// TryLock acquires key unless an unexpired holder owns it
func (s *InMemoryStore) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if held, ok := s.locks[key]; ok && now.Before(held.expiresAt) {
		return nil, false, nil
	}
	token := uuid.NewString()
	s.locks[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if held, ok := s.locks[key]; ok && held.token == token {
				delete(s.locks, key)
			}
		})
	}
	return release, true, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, exp := range s.keys {
		if now.After(exp) {
			delete(s.keys, k)
		}
	}
	for k, l := range s.locks {
		if now.After(l.expiresAt) {
			delete(s.locks, k)
		}
	}
}

// Size returns the number of idempotency keys held
func (s *InMemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

var (
	_ shared.IdempotencyStore = (*InMemoryStore)(nil)
	_ shared.Locker           = (*InMemoryStore)(nil)
)
