// Package redisstore keeps the encoded ledger in a single Redis key, so that
// several hosts can share one ledger.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/holdings"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis key used when none is configured.
const DefaultKey = "holdings:ledger"

// Store is a holdings.ByteStore in a Redis string value.
type Store struct {
	client redis.UniversalClient
	key    string
}

// New returns a store over client using key.
func New(client redis.UniversalClient, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// Dial connects to the Redis server at addr and checks it answers.
func Dial(ctx context.Context, addr, key string) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cannot connect to redis %s: %w", addr, err)
	}
	return New(client, key), nil
}

// Key returns the Redis key holding the ledger.
func (s *Store) Key() string { return s.key }

// ReadAll returns the ledger document, or holdings.ErrNotFound if the key does not exist.
func (s *Store) ReadAll(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis key %q: %w", s.key, holdings.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot get redis key %q: %w", s.key, err)
	}
	return data, nil
}

// WriteAll replaces the ledger document. A single SET is atomic.
func (s *Store) WriteAll(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("cannot set redis key %q: %w", s.key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error { return s.client.Close() }
