package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"phrasecounter/internal/config"
	"phrasecounter/internal/storage"
)

// Store implements storage.Backend using Redis, one hash per collection.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

// Open creates a new Redis-backed storage instance
func Open(cfg config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Ping to verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client, keyPrefix: cfg.KeyPrefix}, nil
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Collection returns the hash-backed collection with the given name
func (s *Store) Collection(name string) storage.Collection {
	return &collection{client: s.client, key: s.keyPrefix + name}
}

type collection struct {
	client *redis.Client
	key    string
}

func (c *collection) List(ctx context.Context) ([]storage.Record, error) {
	data, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", c.key, err)
	}

	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]storage.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, storage.Record{ID: id, Data: []byte(data[id])})
	}
	return records, nil
}

func (c *collection) Put(ctx context.Context, id string, data []byte) error {
	if err := c.client.HSet(ctx, c.key, id, data).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", c.key, err)
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id string) error {
	n, err := c.client.HDel(ctx, c.key, id).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("hdel %s: %w", c.key, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
