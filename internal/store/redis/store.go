package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultFeedBuffer is the per-subscription queue depth between Redis and the consumer.
const DefaultFeedBuffer = 64

// Store handles Redis operations for the change feed and session revocation
type Store struct {
	client     *redis.Client
	feedBuffer int
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client:     client,
		feedBuffer: DefaultFeedBuffer,
	}
}

// Ping checks Redis is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Revoke marks a session ID as revoked until ttl elapses
func (s *Store) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, nothing to remember.
		return nil
	}
	if err := s.client.Set(ctx, RevokedKey(sessionID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether a session ID was revoked
func (s *Store) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, RevokedKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return n > 0, nil
}
