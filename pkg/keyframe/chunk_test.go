package keyframe

import (
	"math"
	"testing"
)

func TestChunkInterpolate_Empty(t *testing.T) {
	c := Chunk{ID: "obj_0", StartTime: 0, EndTime: 1000}

	if _, ok := c.Interpolate(500); ok {
		t.Error("Interpolate() on empty chunk should report no data")
	}
}

func TestChunkInterpolate_SingleKeyframe(t *testing.T) {
	c := Chunk{
		ID:        "obj_0",
		StartTime: 0,
		EndTime:   1000,
		Keyframes: []Keyframe{{Time: 300, X: 7, Y: -2}},
	}

	for _, tt := range []float64{0, 300, 999} {
		pos, ok := c.Interpolate(tt)
		if !ok {
			t.Fatalf("Interpolate(%v) reported no data", tt)
		}
		if pos.X != 7 || pos.Y != -2 {
			t.Errorf("Interpolate(%v) = %+v, want (7,-2)", tt, pos)
		}
	}
}

func TestChunkInterpolate_Bracketing(t *testing.T) {
	c := Chunk{
		ID:        "obj_0",
		StartTime: 0,
		EndTime:   1000,
		Keyframes: []Keyframe{
			{Time: 0, X: 0, Y: 0},
			{Time: 500, X: 10, Y: 10},
		},
	}

	tests := []struct {
		name  string
		t     float64
		wantX float64
		wantY float64
	}{
		{"midpoint", 250, 5, 5},
		{"at first keyframe", 0, 0, 0},
		{"at second keyframe", 500, 10, 10},
		{"quarter", 125, 2.5, 2.5},
		{"past last keyframe holds last sample", 900, 10, 10},
		{"clamped below start", -50, 0, 0},
		{"clamped above end", 5000, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := c.Interpolate(tt.t)
			if !ok {
				t.Fatalf("Interpolate(%v) reported no data", tt.t)
			}
			if pos.X != tt.wantX || pos.Y != tt.wantY {
				t.Errorf("Interpolate(%v) = %+v, want (%v,%v)", tt.t, pos, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestChunkInterpolate_ZeroSpan(t *testing.T) {
	// Two keyframes with identical timestamps must not divide by zero; the
	// factor is forced to 0 so the earlier sample wins.
	c := Chunk{
		ID:        "obj_0",
		StartTime: 0,
		EndTime:   1000,
		Keyframes: []Keyframe{
			{Time: 100, X: 1, Y: 2},
			{Time: 100, X: 9, Y: 9},
		},
	}

	pos, ok := c.Interpolate(100)
	if !ok {
		t.Fatal("Interpolate() reported no data")
	}
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) {
		t.Fatalf("Interpolate() produced NaN: %+v", pos)
	}
	if pos.X != 1 || pos.Y != 2 {
		t.Errorf("Interpolate() = %+v, want (1,2)", pos)
	}
}

func TestChunkInterpolate_Boundedness(t *testing.T) {
	// Every result must stay inside the bounding box of the chunk's keyframes.
	c := Chunk{
		ID:        "obj_0",
		StartTime: 0,
		EndTime:   1000,
		Keyframes: []Keyframe{
			{Time: 0, X: -3, Y: 12},
			{Time: 200, X: 8, Y: 4},
			{Time: 640, X: 1, Y: -7},
			{Time: 1000, X: 5, Y: 0},
		},
	}

	minX, maxX := -3.0, 8.0
	minY, maxY := -7.0, 12.0

	for tt := -100.0; tt <= 1200; tt += 13 {
		pos, ok := c.Interpolate(tt)
		if !ok {
			t.Fatalf("Interpolate(%v) reported no data", tt)
		}
		if pos.X < minX || pos.X > maxX || pos.Y < minY || pos.Y > maxY {
			t.Errorf("Interpolate(%v) = %+v escapes keyframe bounding box", tt, pos)
		}
	}
}

func TestKeyframeValid(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		k    Keyframe
		want bool
	}{
		{"all finite", Keyframe{Time: 1, X: 2, Y: 3}, true},
		{"NaN time", Keyframe{Time: nan, X: 2, Y: 3}, false},
		{"NaN x", Keyframe{Time: 1, X: nan, Y: 3}, false},
		{"NaN y", Keyframe{Time: 1, X: 2, Y: nan}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.k.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
