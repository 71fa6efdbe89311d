// Package keyframe defines the sampled-trajectory data model: time-stamped
// position samples, fixed-duration chunks of them, and the partitioning and
// interpolation operations that the playback cache is built on.
package keyframe

import "math"

// Keyframe is a single time-stamped 2D position sample.
// Keyframes are immutable once created.
type Keyframe struct {
	Time float64 `json:"time"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Valid reports whether the keyframe carries no NaN fields.
func (k Keyframe) Valid() bool {
	return !math.IsNaN(k.Time) && !math.IsNaN(k.X) && !math.IsNaN(k.Y)
}

// Vec2 is a 2D position.
type Vec2 struct {
	X float64
	Y float64
}

// Lerp returns the component-wise linear blend of a and b at factor t.
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}
