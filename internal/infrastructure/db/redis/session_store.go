package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/infrastructure/sessionstore"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// SessionStore keeps session slots in Redis.
// Key format: ecivil:session:<client_id>
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore wraps client. Slots expire ttl after their last Save;
// ttl <= 0 selects thirty days.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, slot string, user *domain.User) error {
	raw, err := sessionstore.Encode(user)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(slot), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, slot string) (*domain.User, error) {
	raw, err := s.client.Get(ctx, s.key(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}
	return sessionstore.Decode(raw)
}

func (s *SessionStore) Clear(ctx context.Context, slot string) error {
	if err := s.client.Del(ctx, s.key(slot)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

func (s *SessionStore) key(slot string) string {
	return "ecivil:session:" + slot
}
