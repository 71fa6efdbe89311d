// Package storage provides persistent chunk store implementations.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/karu-dev/chunkplay/pkg/keyframe"
)

// RedisStore implements the Store interface using Redis as a backend.
// It lets multiple player instances replay the same persisted trajectories
// and keeps chunk sets alive across process restarts, with optional TTL-based
// expiration.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.Mutex
}

// NewRedisStore creates a new Redis-backed chunk store.
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string for no auth)
//   - db: Redis database number (typically 0)
//   - ttl: Chunk record expiration (0 keeps records indefinitely)
//
// Returns an error if the connection to Redis fails or if parameters are invalid.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	if db < 0 {
		return nil, errors.New("redis database number must be >= 0")
	}
	if ttl < 0 {
		return nil, errors.New("redis ttl must be >= 0")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
	}, nil
}

// chunkKey namespaces the composite chunk id in the shared keyspace.
// The key format is "chunkplay:chunk:{object_id}_{index}".
func chunkKey(id string) string {
	return fmt.Sprintf("chunkplay:chunk:%s", id)
}

// PutBatch writes chunk records in pipelined groups of BatchSize so a long
// trajectory never turns into one oversized round trip. Each group executes
// as a single pipeline; a failed group does not roll back groups already
// committed. Chunks with no keyframes are skipped.
func (r *RedisStore) PutBatch(ctx context.Context, chunks []keyframe.Chunk) error {
	records := make([]keyframe.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.ID == "" {
			return errors.New("chunk id required")
		}
		if c.Empty() {
			continue
		}
		records = append(records, c)
	}

	for start := 0; start < len(records); start += BatchSize {
		end := start + BatchSize
		if end > len(records) {
			end = len(records)
		}

		pipe := r.client.TxPipeline()
		for _, c := range records[start:end] {
			data, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("failed to marshal chunk %s: %w", c.ID, err)
			}
			pipe.Set(ctx, chunkKey(c.ID), data, r.ttl)
		}

		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to store chunk batch in redis: %w", err)
		}
	}

	return nil
}

// GetChunk retrieves one chunk record by owning object and bucket index.
//
// Returns:
//   - chunk: The chunk record (zero value if not found)
//   - found: true if the record exists, false if not found
//   - error: non-nil if an error occurred (excluding "not found")
//
// A record that fails to deserialize is reported as an error, not as absent:
// callers treat it like any other store failure and may retry.
func (r *RedisStore) GetChunk(ctx context.Context, objectID string, index int) (keyframe.Chunk, bool, error) {
	if objectID == "" {
		return keyframe.Chunk{}, false, errors.New("object id required")
	}
	if index < 0 {
		return keyframe.Chunk{}, false, fmt.Errorf("chunk index must be >= 0, got %d", index)
	}

	key := chunkKey(keyframe.ChunkID(objectID, index))

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return keyframe.Chunk{}, false, nil
		}
		return keyframe.Chunk{}, false, fmt.Errorf("failed to get chunk from redis: %w", err)
	}

	var chunk keyframe.Chunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return keyframe.Chunk{}, false, fmt.Errorf("failed to unmarshal chunk %s: %w", key, err)
	}

	return chunk, true, nil
}

// Close closes the Redis client connection.
// It is safe to call multiple times (idempotent).
func (r *RedisStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}

	err := r.client.Close()
	r.client = nil
	if err != nil && err.Error() == "redis: client is closed" {
		return nil
	}

	return err
}

// Ping checks the Redis connection health.
// Returns an error if the connection is unavailable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
