// Package scene holds the animated object model: objects with a size, a
// color and a streaming trajectory, the registry that creates and tracks
// them, and the scene-file loading that describes them.
package scene

import (
	"context"
	"math"

	"github.com/karu-dev/chunkplay/pkg/keyframe"
	"github.com/karu-dev/chunkplay/pkg/playback"
)

// Object is one animated square. Its trajectory lives in the persistent
// store and streams through a bounded playback cache; the object itself only
// carries playback time and the last successfully interpolated position.
//
// Objects are driven from the scheduler goroutine and are not safe for
// concurrent use.
type Object struct {
	index int
	id    string
	size  float64
	color string

	currentTime float64
	cached      keyframe.Vec2

	cache *playback.Cache
}

// Index returns the registry-assigned index reported by hit testing.
func (o *Object) Index() int { return o.index }

// ID returns the object identifier used in store keys.
func (o *Object) ID() string { return o.id }

// Size returns the square's edge length in world units.
func (o *Object) Size() float64 { return o.size }

// Color returns the draw color.
func (o *Object) Color() string { return o.color }

// CurrentTime returns the current playback time in milliseconds.
func (o *Object) CurrentTime() float64 { return o.currentTime }

// Position returns the last successfully interpolated position. It keeps the
// previous value across lookup misses so a slow store degrades to a frozen
// object instead of a vanishing one.
func (o *Object) Position() keyframe.Vec2 { return o.cached }

// Cache returns the object's playback cache.
func (o *Object) Cache() *playback.Cache { return o.cache }

// Prefetch asks the playback cache to have the chunk covering the current
// playback time resident, plus the following chunk. The lookahead covers the
// boundary case where the bracketing next sample lives in the next chunk,
// and gives fetches a head start before the playhead crosses over.
//
// Prefetch never blocks on store I/O; results surface through the cache's
// completion channel.
func (o *Object) Prefetch(ctx context.Context) {
	o.cache.EnsureResident(ctx, o.currentTime)
	o.cache.EnsureResident(ctx, o.currentTime+o.cache.ChunkDuration())
}

// Admit applies a completed chunk fetch for this object.
// It returns the evicted chunk indices for instrumentation.
func (o *Object) Admit(res playback.FetchResult) []int {
	return o.cache.Admit(res)
}

// Advance moves playback time forward by delta milliseconds, wrapping at the
// trajectory's loop period, and refreshes the cached position. It reports
// whether the position lookup hit resident data.
func (o *Object) Advance(delta float64) bool {
	o.currentTime = math.Mod(o.currentTime+delta, o.cache.TotalDuration())
	pos, ok := o.cache.Position(o.currentTime)
	if ok {
		o.cached = pos
	}
	return ok
}

// Bounds returns the object's bounding box at its cached position.
func (o *Object) Bounds() AABB {
	return AABB{
		MinX: o.cached.X,
		MinY: o.cached.Y,
		MaxX: o.cached.X + o.size,
		MaxY: o.cached.Y + o.size,
	}
}

// Hit reports whether the point (x, y) falls inside the object at its cached
// position.
func (o *Object) Hit(x, y float64) bool {
	return o.Bounds().Contains(x, y)
}
