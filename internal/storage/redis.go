package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores documents as plain string keys in Redis.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend uses client and namespaces every key with prefix.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

// OpenRedis connects to addr and verifies the server answers.
func OpenRedis(ctx context.Context, addr, prefix string) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not reach redis at %s: %w", addr, err)
	}
	return NewRedisBackend(client, prefix), nil
}

// Get returns the document for key, or ErrNotFound.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Put replaces the document for key. Documents never expire.
func (b *RedisBackend) Put(ctx context.Context, key string, data []byte) error {
	if err := b.client.Set(ctx, b.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Quarantine renames a corrupt document to the first free
// "<key>.corrupt[.N]" key. RENAMENX never replaces an earlier backup.
func (b *RedisBackend) Quarantine(ctx context.Context, key string) (string, error) {
	for n := 0; n < maxBackups; n++ {
		backup := backupName(key, n)
		ok, err := b.client.RenameNX(ctx, b.prefix+key, b.prefix+backup).Result()
		if err != nil {
			return "", fmt.Errorf("redis rename %s: %w", key, err)
		}
		if ok {
			return backup, nil
		}
	}
	return "", fmt.Errorf("redis rename %s: %w", key, errNoBackupSlot)
}

// Close closes the client connection pool.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
