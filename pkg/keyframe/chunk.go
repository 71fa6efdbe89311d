package keyframe

// Chunk is a contiguous, fixed-duration run of keyframes addressed by an
// owning object and a time-bucket index. The ID is the composite store key
// "{objectID}_{index}".
//
// Keyframes must be sorted ascending by time before insertion; the chunk
// never re-sorts. A chunk with no keyframes represents a quiet interval.
type Chunk struct {
	ID        string     `json:"id"`
	StartTime float64    `json:"start_time"`
	EndTime   float64    `json:"end_time"`
	Keyframes []Keyframe `json:"keyframes"`
}

// Empty reports whether the chunk holds no keyframes.
func (c *Chunk) Empty() bool {
	return len(c.Keyframes) == 0
}

// Interpolate returns the linearly interpolated position at time t.
// t is clamped into [StartTime, EndTime] before lookup.
//
// Returns false when the chunk is empty: an empty chunk has no data and the
// result is never guessed. A t past the last keyframe returns that keyframe's
// position unmodified; there is no extrapolation and the lookup never crosses
// into a neighboring chunk.
func (c *Chunk) Interpolate(t float64) (Vec2, bool) {
	if len(c.Keyframes) == 0 {
		return Vec2{}, false
	}

	if t < c.StartTime {
		t = c.StartTime
	}
	if t > c.EndTime {
		t = c.EndTime
	}

	if len(c.Keyframes) == 1 {
		k := c.Keyframes[0]
		return Vec2{X: k.X, Y: k.Y}, true
	}

	// prev is the last keyframe at or before t, next the first at or after.
	prev := c.Keyframes[0]
	next := c.Keyframes[len(c.Keyframes)-1]
	found := false
	for _, k := range c.Keyframes {
		if k.Time <= t {
			prev = k
		}
		if k.Time >= t {
			next = k
			found = true
			break
		}
	}
	if !found {
		// t is past every keyframe; hold the last sample.
		last := c.Keyframes[len(c.Keyframes)-1]
		return Vec2{X: last.X, Y: last.Y}, true
	}

	span := next.Time - prev.Time
	factor := 0.0
	if span != 0 {
		factor = (t - prev.Time) / span
	}

	return Lerp(Vec2{X: prev.X, Y: prev.Y}, Vec2{X: next.X, Y: next.Y}, factor), true
}
