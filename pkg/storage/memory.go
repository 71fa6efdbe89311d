package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/karu-dev/chunkplay/pkg/keyframe"
)

// MemoryStore implements an in-memory chunk store.
// It is safe for concurrent use by multiple goroutines.
//
// MemoryStore keeps every written chunk record keyed by its composite id.
// It backs single-process runs and tests; deployments that need persistence
// across restarts or shared trajectories should use RedisStore instead.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks map[string]keyframe.Chunk
}

// NewMemoryStore creates a new in-memory chunk store.
// The store is ready to use immediately with no additional configuration.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks: make(map[string]keyframe.Chunk),
	}
}

// PutBatch stores chunk records, replacing any existing record with the same
// id. Chunks with no keyframes are skipped. The batch-size contract is
// trivially met here since map writes do not block on I/O.
//
// Returns an error if a chunk carries an empty id or if the context is
// canceled. This operation is safe for concurrent use.
func (s *MemoryStore) PutBatch(ctx context.Context, chunks []keyframe.Chunk) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if c.ID == "" {
			return fmt.Errorf("chunk id cannot be empty")
		}
		if c.Empty() {
			continue
		}
		s.chunks[c.ID] = c
	}
	return nil
}

// GetChunk retrieves the chunk for an object's bucket index.
//
// Returns:
//   - chunk: The stored chunk (zero value if not found)
//   - found: true if a record exists for this key, false otherwise
//   - error: Context error if context is canceled, nil otherwise
//
// This operation is safe for concurrent use.
func (s *MemoryStore) GetChunk(ctx context.Context, objectID string, index int) (keyframe.Chunk, bool, error) {
	select {
	case <-ctx.Done():
		return keyframe.Chunk{}, false, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	chunk, found := s.chunks[keyframe.ChunkID(objectID, index)]
	return chunk, found, nil
}

// Len returns the number of chunk records currently stored.
// This method is primarily useful for testing and metrics.
//
// This operation is safe for concurrent use.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Delete removes the record for an object's bucket index.
// This method is primarily useful for testing and cleanup.
// Returns true if a record was deleted, false if none existed.
//
// This operation is safe for concurrent use.
func (s *MemoryStore) Delete(objectID string, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyframe.ChunkID(objectID, index)
	_, existed := s.chunks[key]
	delete(s.chunks, key)
	return existed
}
