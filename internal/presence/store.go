// Package presence tracks the transient per-ticket typing flags. Flags are
// ephemeral: clients debounce and clear them, and the Redis implementation
// expires them server-side as a backstop against abandoned sessions.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Side identifies which party a typing flag belongs to.
type Side string

const (
	SideUser       Side = "user"
	SideTechnician Side = "technician"
)

// IsValid reports whether the side is a known value.
func (s Side) IsValid() bool {
	return s == SideUser || s == SideTechnician
}

// Typing holds both flags for one ticket.
type Typing struct {
	User       bool
	Technician bool
}

// Store reads and writes typing flags. Setting is idempotent and accepted
// regardless of ticket status.
type Store interface {
	SetTyping(ctx context.Context, ticketID string, side Side, typing bool) error
	GetTyping(ctx context.Context, ticketID string) (Typing, error)
	Clear(ctx context.Context, ticketID string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed store with the given flag TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func typingKey(ticketID string, side Side) string {
	return "helpdesk:typing:" + ticketID + ":" + string(side)
}

func (s *redisStore) SetTyping(ctx context.Context, ticketID string, side Side, typing bool) error {
	key := typingKey(ticketID, side)
	if typing {
		return s.client.Set(ctx, key, "1", s.ttl).Err()
	}
	return s.client.Del(ctx, key).Err()
}

func (s *redisStore) GetTyping(ctx context.Context, ticketID string) (Typing, error) {
	values, err := s.client.MGet(ctx,
		typingKey(ticketID, SideUser),
		typingKey(ticketID, SideTechnician),
	).Result()
	if err != nil {
		return Typing{}, err
	}
	return Typing{
		User:       len(values) > 0 && values[0] != nil,
		Technician: len(values) > 1 && values[1] != nil,
	}, nil
}

func (s *redisStore) Clear(ctx context.Context, ticketID string) error {
	return s.client.Del(ctx,
		typingKey(ticketID, SideUser),
		typingKey(ticketID, SideTechnician),
	).Err()
}

type memoryStore struct {
	mu    sync.RWMutex
	flags map[string]Typing
}

// NewMemoryStore builds an in-process store, used in tests and when Redis
// is not configured.
func NewMemoryStore() Store {
	return &memoryStore{flags: make(map[string]Typing)}
}

func (s *memoryStore) SetTyping(_ context.Context, ticketID string, side Side, typing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.flags[ticketID]
	switch side {
	case SideUser:
		current.User = typing
	case SideTechnician:
		current.Technician = typing
	}
	s.flags[ticketID] = current
	return nil
}

func (s *memoryStore) GetTyping(_ context.Context, ticketID string) (Typing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[ticketID], nil
}

func (s *memoryStore) Clear(_ context.Context, ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flags, ticketID)
	return nil
}
