package scene

import (
	"fmt"
	"log/slog"

	"github.com/karu-dev/chunkplay/pkg/keyframe"
	"github.com/karu-dev/chunkplay/pkg/playback"
	"github.com/karu-dev/chunkplay/pkg/storage"
)

// ObjectConfig holds the creation parameters for one animated object.
type ObjectConfig struct {
	ID            string
	Size          float64
	Color         string
	ChunkDuration float64
	Keyframes     []keyframe.Keyframe
}

// Registry creates and tracks the scene's objects. It owns the object index
// counter, so indices are assigned explicitly at creation instead of through
// hidden process-wide state.
type Registry struct {
	nextIndex int
	maxChunks int
	store     storage.Store
	results   chan<- playback.FetchResult
	logger    *slog.Logger
	objects   []*Object
}

// NewRegistry creates a registry whose objects share one store, one fetch
// completion channel and one resident-window bound.
func NewRegistry(store storage.Store, results chan<- playback.FetchResult, maxChunks int, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		maxChunks: maxChunks,
		store:     store,
		results:   results,
		logger:    logger,
	}
}

// Add validates the creation parameters, partitions the raw trajectory into
// chunks and creates the object with its playback cache. The partitioned
// chunks are returned so the caller can persist them; the object itself never
// holds the full trajectory.
//
// Degenerate input is rejected and the object is not created: an empty
// keyframe sequence, a non-positive chunk duration or size, NaN sample
// fields, or a trajectory whose last sample sits at time zero (which would
// make the loop period empty).
func (r *Registry) Add(cfg ObjectConfig) (*Object, []keyframe.Chunk, error) {
	if cfg.ID == "" {
		cfg.ID = fmt.Sprintf("object-%d", r.nextIndex)
	}
	if cfg.Size <= 0 {
		return nil, nil, fmt.Errorf("object %s: size must be positive, got %v", cfg.ID, cfg.Size)
	}
	if len(cfg.Keyframes) == 0 {
		return nil, nil, fmt.Errorf("object %s: keyframe sequence is empty", cfg.ID)
	}
	for i, k := range cfg.Keyframes {
		if !k.Valid() {
			return nil, nil, fmt.Errorf("object %s: keyframe %d has NaN fields", cfg.ID, i)
		}
		if k.Time < 0 {
			return nil, nil, fmt.Errorf("object %s: keyframe %d has negative time %v", cfg.ID, i, k.Time)
		}
	}

	totalDur := keyframe.TotalDuration(cfg.Keyframes)
	if totalDur <= 0 {
		return nil, nil, fmt.Errorf("object %s: trajectory ends at time %v, loop period would be empty", cfg.ID, totalDur)
	}

	chunks, err := keyframe.Partition(cfg.ID, cfg.Keyframes, cfg.ChunkDuration)
	if err != nil {
		return nil, nil, fmt.Errorf("object %s: %w", cfg.ID, err)
	}

	cache, err := playback.NewCache(cfg.ID, cfg.ChunkDuration, totalDur, r.maxChunks, r.store, r.results, r.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("object %s: %w", cfg.ID, err)
	}

	obj := &Object{
		index: r.nextIndex,
		id:    cfg.ID,
		size:  cfg.Size,
		color: cfg.Color,
		cache: cache,
	}
	r.nextIndex++
	r.objects = append(r.objects, obj)

	r.logger.Debug("registered object",
		"object", obj.id,
		"index", obj.index,
		"chunks", len(chunks),
		"chunk_duration_ms", cfg.ChunkDuration,
		"total_duration_ms", totalDur,
	)

	return obj, chunks, nil
}

// Objects returns the registered objects in creation order.
func (r *Registry) Objects() []*Object {
	return r.objects
}

// Lookup returns the object with the given id, or nil.
func (r *Registry) Lookup(id string) *Object {
	for _, o := range r.objects {
		if o.id == id {
			return o
		}
	}
	return nil
}
