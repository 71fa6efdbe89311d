package storage

import (
	"context"

	"github.com/karu-dev/chunkplay/pkg/keyframe"
)

// BatchSize is the number of chunk records written per backend call.
// Bulk persistence of a long trajectory is split into groups of this size so
// no single write blocks for the whole chunk set; each group commits as one
// atomic unit.
const BatchSize = 200

// Store is the persistent chunk store boundary. The store is the source of
// truth for every object's full trajectory; the in-memory playback cache only
// ever holds a small resident window of it.
type Store interface {
	// PutBatch persists chunk records in groups of BatchSize. Chunks with no
	// keyframes are skipped: a missing record and a quiet interval are
	// indistinguishable to readers, which synthesize an empty chunk either way.
	PutBatch(ctx context.Context, chunks []keyframe.Chunk) error

	// GetChunk retrieves one chunk by owning object and bucket index.
	// A never-written chunk returns found=false with a nil error; errors are
	// reserved for transport and decoding failures.
	GetChunk(ctx context.Context, objectID string, index int) (keyframe.Chunk, bool, error)
}
