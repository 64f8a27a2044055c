package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no session exists for the given ID.
var ErrNotFound = errors.New("session: not found")

// Store persists sessions between conversation turns. The booking machine
// never touches the store; the hosting layer loads, advances, and saves.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions as JSON under a TTL so abandoned conversations
// expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Get loads a session by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: failed to load %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: failed to decode %s: %w", id, err)
	}
	return &sess, nil
}

// Save persists a session, refreshing its TTL.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: failed to marshal %s: %w", sess.ID, err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: failed to persist %s: %w", sess.ID, err)
	}
	return nil
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("session: failed to delete %s: %w", id, err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests and single-process setups.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Get returns a deep copy so callers cannot mutate stored state in place.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(sess)
}

// Save stores a deep copy of the session.
func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	cp, err := cloneSession(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[sess.ID] = cp
	s.mu.Unlock()
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func cloneSession(sess *Session) (*Session, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("session: failed to clone %s: %w", sess.ID, err)
	}
	var cp Session
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("session: failed to clone %s: %w", sess.ID, err)
	}
	return &cp, nil
}

// Ensure interface compliance
var _ Store = (*RedisStore)(nil)
var _ Store = (*MemoryStore)(nil)
