package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked:"

// SessionStore tracks revoked token IDs in redis. Entries expire together
// with the token itself, so the set never grows unbounded.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err()
}

func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := s.rdb.Get(ctx, revokedPrefix+tokenID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
