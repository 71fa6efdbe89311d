// Package playback implements the bounded per-object chunk cache that
// streams trajectory chunks from the persistent store as playback time
// advances.
//
// A Cache holds a small resident window of an object's chunks. Misses are
// filled asynchronously: EnsureResident starts a fetch goroutine and the
// result comes back through a completion channel owned by the scheduler,
// which applies it with Admit. All cache state is therefore mutated from a
// single goroutine and needs no locking.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/karu-dev/chunkplay/pkg/keyframe"
	"github.com/karu-dev/chunkplay/pkg/storage"
)

// FetchResult is the outcome of one asynchronous chunk fetch. It travels
// from the fetch goroutine back to the scheduler goroutine, which routes it
// to the owning cache's Admit.
type FetchResult struct {
	ObjectID string
	Index    int
	Chunk    keyframe.Chunk
	Found    bool
	Err      error
}

// Cache is a bounded per-object chunk cache.
//
// Per chunk index the lifecycle is absent -> loading -> resident -> evicted.
// The persistent store remains the source of truth; an evicted index is
// simply fetched again when needed.
//
// Except for the fetch goroutines started by EnsureResident, a Cache must
// only be used from the scheduler goroutine that owns it.
type Cache struct {
	objectID  string
	chunkDur  float64
	totalDur  float64
	maxChunks int

	store   storage.Store
	results chan<- FetchResult
	logger  *slog.Logger

	resident map[int]*keyframe.Chunk
	loading  map[int]struct{}
}

// NewCache creates a cache for one object's trajectory.
//
// chunkDur is the object's fixed chunk duration, totalDur the loop period
// (the last raw sample's timestamp). maxChunks bounds the resident set and
// must be at least 2 so the current chunk and its lookahead can coexist.
// Completed fetches are delivered on results.
func NewCache(objectID string, chunkDur, totalDur float64, maxChunks int, store storage.Store, results chan<- FetchResult, logger *slog.Logger) (*Cache, error) {
	if objectID == "" {
		return nil, fmt.Errorf("object id required")
	}
	if chunkDur <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", chunkDur)
	}
	if totalDur <= 0 {
		return nil, fmt.Errorf("total duration must be positive, got %v", totalDur)
	}
	if maxChunks < 2 {
		return nil, fmt.Errorf("max chunks must be at least 2, got %d", maxChunks)
	}
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if results == nil {
		return nil, fmt.Errorf("results channel required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{
		objectID:  objectID,
		chunkDur:  chunkDur,
		totalDur:  totalDur,
		maxChunks: maxChunks,
		store:     store,
		results:   results,
		logger:    logger,
		resident:  make(map[int]*keyframe.Chunk),
		loading:   make(map[int]struct{}),
	}, nil
}

// ObjectID returns the owning object's identifier.
func (c *Cache) ObjectID() string { return c.objectID }

// ChunkDuration returns the fixed per-object chunk duration.
func (c *Cache) ChunkDuration() float64 { return c.chunkDur }

// TotalDuration returns the loop period.
func (c *Cache) TotalDuration() float64 { return c.totalDur }

// wrap maps any playback time into [0, totalDur).
func (c *Cache) wrap(t float64) float64 {
	m := math.Mod(t, c.totalDur)
	if m < 0 {
		m += c.totalDur
	}
	return m
}

// Index returns the chunk index covering playback time t (loop-wrapped).
func (c *Cache) Index(t float64) int {
	return keyframe.ChunkIndex(c.wrap(t), c.chunkDur)
}

// EnsureResident makes sure the chunk covering t is resident or on its way.
// A resident or already-loading index is a no-op. Otherwise the index is
// marked loading and a goroutine fetches it from the store; the FetchResult
// arrives on the results channel and must be applied with Admit.
//
// EnsureResident never blocks on store I/O.
func (c *Cache) EnsureResident(ctx context.Context, t float64) {
	idx := c.Index(t)
	if _, ok := c.resident[idx]; ok {
		return
	}
	if _, ok := c.loading[idx]; ok {
		return
	}
	c.loading[idx] = struct{}{}

	go func() {
		chunk, found, err := c.store.GetChunk(ctx, c.objectID, idx)
		res := FetchResult{
			ObjectID: c.objectID,
			Index:    idx,
			Chunk:    chunk,
			Found:    found,
			Err:      err,
		}
		select {
		case c.results <- res:
		case <-ctx.Done():
		}
	}()
}

// Admit applies a completed fetch. On a store error the index is left absent
// so a later EnsureResident retries; on not-found an empty chunk with the
// expected bounds is synthesized, since a never-written index just covers a
// quiet interval. After insertion the resident set is trimmed back to
// maxChunks by evicting the index farthest from the requested one; on equal
// distance the lower index is evicted.
//
// The evicted indices are returned for instrumentation.
func (c *Cache) Admit(res FetchResult) []int {
	if res.ObjectID != c.objectID {
		c.logger.Warn("dropping fetch result for foreign object",
			"cache_object", c.objectID, "result_object", res.ObjectID)
		return nil
	}

	delete(c.loading, res.Index)

	if res.Err != nil {
		c.logger.Warn("chunk fetch failed, leaving index absent",
			"object", c.objectID, "index", res.Index, "error", res.Err)
		return nil
	}

	chunk := res.Chunk
	if !res.Found {
		chunk = keyframe.Chunk{
			ID:        keyframe.ChunkID(c.objectID, res.Index),
			StartTime: float64(res.Index) * c.chunkDur,
			EndTime:   float64(res.Index+1) * c.chunkDur,
		}
	}
	c.resident[res.Index] = &chunk

	var evicted []int
	for len(c.resident) > c.maxChunks {
		victim := c.farthestFrom(res.Index)
		delete(c.resident, victim)
		evicted = append(evicted, victim)
		c.logger.Debug("evicted chunk",
			"object", c.objectID, "index", victim, "playhead_index", res.Index)
	}
	return evicted
}

// farthestFrom picks the resident index with the greatest absolute distance
// from idx. Ties go to the lower index. Playback moves forward through time,
// so the farthest chunk is the one least likely to be needed again soon.
func (c *Cache) farthestFrom(idx int) int {
	victim := idx
	best := -1
	for k := range c.resident {
		d := k - idx
		if d < 0 {
			d = -d
		}
		if d > best || (d == best && k < victim) {
			best = d
			victim = k
		}
	}
	return victim
}

// Position returns the interpolated position at playback time t.
//
// This is the synchronous lookup on the render path: it only answers from
// the resident chunk covering t and never touches the store. It returns
// false when that chunk is absent (EnsureResident has not caught up) or
// empty (no data for the interval).
func (c *Cache) Position(t float64) (keyframe.Vec2, bool) {
	idx := c.Index(t)
	chunk, ok := c.resident[idx]
	if !ok {
		return keyframe.Vec2{}, false
	}
	return chunk.Interpolate(c.wrap(t))
}

// ResidentCount returns the number of resident chunks.
func (c *Cache) ResidentCount() int { return len(c.resident) }

// IsResident reports whether the given chunk index is resident.
func (c *Cache) IsResident(index int) bool {
	_, ok := c.resident[index]
	return ok
}

// Resident returns a copy of the resident chunk at index, if any.
func (c *Cache) Resident(index int) (keyframe.Chunk, bool) {
	chunk, ok := c.resident[index]
	if !ok {
		return keyframe.Chunk{}, false
	}
	return *chunk, true
}

// IsLoading reports whether a fetch for the given index is in flight.
func (c *Cache) IsLoading(index int) bool {
	_, ok := c.loading[index]
	return ok
}
