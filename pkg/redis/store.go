package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/otpfill/pkg/kvstore"
)

// Store implements kvstore.AtomicStore on top of a go-redis client.
// Values never expire.
type Store struct {
	db     redis.UniversalClient
	prefix string
}

// NewStore wraps a connected client. Every key is stored as prefix+key.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{db: client, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, kvstore.ErrEmptyKey
	}
	val, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kvstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return kvstore.ErrEmptyKey
	}
	return s.db.Set(ctx, s.prefix+key, value, 0).Err()
}

// SetNX maps to the Redis SETNX command.
func (s *Store) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	if key == "" {
		return false, kvstore.ErrEmptyKey
	}
	return s.db.SetNX(ctx, s.prefix+key, value, 0).Result()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return kvstore.ErrEmptyKey
	}
	return s.db.Del(ctx, s.prefix+key).Err()
}

// Close terminates the Redis connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Conn returns the underlying Redis client.
func (s *Store) Conn() redis.UniversalClient {
	return s.db
}

var _ kvstore.AtomicStore = (*Store)(nil)
