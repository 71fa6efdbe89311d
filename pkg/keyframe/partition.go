package keyframe

import (
	"fmt"
	"math"
	"sort"
)

// ChunkIndex returns the time-bucket index for t under chunk duration d.
func ChunkIndex(t, d float64) int {
	return int(math.Floor(t / d))
}

// ChunkID returns the composite store key for an object's chunk index.
func ChunkID(objectID string, index int) string {
	return fmt.Sprintf("%s_%d", objectID, index)
}

// Partition buckets an ordered-by-time sample sequence into chunks of
// duration d, covering every index from 0 through the last occupied bucket
// with no gaps. Indices that received no samples yield empty chunks.
//
// Each chunk gets id "{objectID}_{index}" and bounds [index*d, (index+1)*d].
// Samples within a bucket are sorted ascending by time so the chunk invariant
// holds even when the input ordering is only approximate.
//
// An empty input yields an empty chunk list. The only failure mode is d <= 0.
func Partition(objectID string, frames []Keyframe, d float64) ([]Chunk, error) {
	if d <= 0 || math.IsNaN(d) {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", d)
	}
	if len(frames) == 0 {
		return nil, nil
	}

	buckets := make(map[int][]Keyframe)
	last := 0
	for _, k := range frames {
		idx := ChunkIndex(k.Time, d)
		buckets[idx] = append(buckets[idx], k)
		if idx > last {
			last = idx
		}
	}

	chunks := make([]Chunk, 0, last+1)
	for idx := 0; idx <= last; idx++ {
		ks := buckets[idx]
		sort.Slice(ks, func(i, j int) bool { return ks[i].Time < ks[j].Time })
		chunks = append(chunks, Chunk{
			ID:        ChunkID(objectID, idx),
			StartTime: float64(idx) * d,
			EndTime:   float64(idx+1) * d,
			Keyframes: ks,
		})
	}

	return chunks, nil
}

// TotalDuration returns the loop period for a raw sample sequence: the last
// sample's timestamp. Zero for an empty sequence.
func TotalDuration(frames []Keyframe) float64 {
	max := 0.0
	for _, k := range frames {
		if k.Time > max {
			max = k.Time
		}
	}
	return max
}
