package scene

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/karu-dev/chunkplay/pkg/keyframe"
	"github.com/karu-dev/chunkplay/pkg/playback"
	"github.com/karu-dev/chunkplay/pkg/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry() (*Registry, *storage.MemoryStore, chan playback.FetchResult) {
	store := storage.NewMemoryStore()
	results := make(chan playback.FetchResult, 16)
	return NewRegistry(store, results, 3, discardLogger()), store, results
}

func validConfig(id string) ObjectConfig {
	return ObjectConfig{
		ID:            id,
		Size:          5,
		Color:         "#FF6B6B",
		ChunkDuration: 1000,
		Keyframes: []keyframe.Keyframe{
			{Time: 0, X: 0, Y: 0},
			{Time: 500, X: 10, Y: 10},
			{Time: 1500, X: 20, Y: 20},
		},
	}
}

func TestRegistry_Add(t *testing.T) {
	reg, _, _ := newTestRegistry()

	obj, chunks, err := reg.Add(validConfig("ball"))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if obj.ID() != "ball" || obj.Index() != 0 {
		t.Errorf("object = (%q, %d), want (ball, 0)", obj.ID(), obj.Index())
	}
	if len(chunks) != 2 {
		t.Errorf("Add() returned %d chunks, want 2", len(chunks))
	}

	// Indices come from the registry counter, in creation order.
	obj2, _, err := reg.Add(validConfig("cube"))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if obj2.Index() != 1 {
		t.Errorf("second object index = %d, want 1", obj2.Index())
	}
	if len(reg.Objects()) != 2 {
		t.Errorf("Objects() has %d entries, want 2", len(reg.Objects()))
	}
	if reg.Lookup("cube") != obj2 {
		t.Error("Lookup(cube) did not return the registered object")
	}
	if reg.Lookup("ghost") != nil {
		t.Error("Lookup() of unknown id should return nil")
	}
}

func TestRegistry_Add_RejectsDegenerateInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ObjectConfig)
	}{
		{"empty keyframes", func(c *ObjectConfig) { c.Keyframes = nil }},
		{"zero chunk duration", func(c *ObjectConfig) { c.ChunkDuration = 0 }},
		{"negative chunk duration", func(c *ObjectConfig) { c.ChunkDuration = -10 }},
		{"zero size", func(c *ObjectConfig) { c.Size = 0 }},
		{"NaN sample", func(c *ObjectConfig) { c.Keyframes[1].X = math.NaN() }},
		{"negative sample time", func(c *ObjectConfig) { c.Keyframes[0].Time = -5 }},
		{"loop period empty", func(c *ObjectConfig) {
			c.Keyframes = []keyframe.Keyframe{{Time: 0, X: 1, Y: 1}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _, _ := newTestRegistry()
			cfg := validConfig("bad")
			tt.mutate(&cfg)

			if _, _, err := reg.Add(cfg); err == nil {
				t.Error("Add() should reject degenerate input")
			}
			if len(reg.Objects()) != 0 {
				t.Error("rejected object must not be registered")
			}
		})
	}
}

func TestObject_AdvanceAndGracefulDegradation(t *testing.T) {
	reg, store, results := newTestRegistry()

	obj, chunks, err := reg.Add(validConfig("ball"))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	ctx := context.Background()
	if err := store.PutBatch(ctx, chunks); err != nil {
		t.Fatalf("PutBatch() error: %v", err)
	}

	// Nothing resident yet: position lookups miss, cached position holds.
	if ok := obj.Advance(100); ok {
		t.Error("Advance() hit before any prefetch round")
	}
	if obj.Position() != (keyframe.Vec2{}) {
		t.Errorf("Position() = %+v before first hit, want zero value", obj.Position())
	}

	// One prefetch-and-admit round makes the current chunk resident.
	obj.Prefetch(ctx)
	for i := 0; i < 2; i++ {
		obj.Admit(<-results)
	}

	if ok := obj.Advance(150); !ok {
		t.Fatal("Advance() missed after prefetch round")
	}
	pos := obj.Position()
	if pos.X != 5 || pos.Y != 5 {
		t.Errorf("Position() at t=250 = %+v, want (5,5)", pos)
	}

	if obj.CurrentTime() != 250 {
		t.Errorf("CurrentTime() = %v, want 250", obj.CurrentTime())
	}
}

func TestObject_AdvanceWrapsLoopPeriod(t *testing.T) {
	reg, _, _ := newTestRegistry()

	obj, _, err := reg.Add(validConfig("ball")) // total duration 1500
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	obj.Advance(1400)
	obj.Advance(200) // 1600 wraps to 100
	if obj.CurrentTime() != 100 {
		t.Errorf("CurrentTime() = %v, want 100", obj.CurrentTime())
	}
}

func TestObject_HitTesting(t *testing.T) {
	reg, store, results := newTestRegistry()

	obj, chunks, err := reg.Add(validConfig("ball"))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	ctx := context.Background()
	if err := store.PutBatch(ctx, chunks); err != nil {
		t.Fatalf("PutBatch() error: %v", err)
	}
	obj.Prefetch(ctx)
	for i := 0; i < 2; i++ {
		obj.Admit(<-results)
	}
	obj.Advance(250) // cached position (5,5), size 5

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 7, 7, true},
		{"top-left corner", 5, 5, true},
		{"bottom-right corner", 10, 10, true},
		{"outside right", 10.5, 7, false},
		{"outside above", 7, 4.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := obj.Hit(tt.x, tt.y); got != tt.want {
				t.Errorf("Hit(%v,%v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestAABB_Intersects(t *testing.T) {
	a := AABB{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	tests := []struct {
		name  string
		other AABB
		want  bool
	}{
		{"overlapping", AABB{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}, true},
		{"touching edge", AABB{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}, true},
		{"disjoint right", AABB{MinX: 11, MinY: 0, MaxX: 20, MaxY: 10}, false},
		{"disjoint below", AABB{MinX: 0, MinY: 11, MaxX: 10, MaxY: 20}, false},
		{"contained", AABB{MinX: 2, MinY: 2, MaxX: 8, MaxY: 8}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
		})
	}
}
