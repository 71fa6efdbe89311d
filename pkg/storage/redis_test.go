//go:build integration

package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/karu-dev/chunkplay/pkg/keyframe"
)

// setupRedisContainer starts a Redis container for testing
func setupRedisContainer(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	redisContainer, err := redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	endpoint, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	// Strip "redis://" prefix if present
	addr := endpoint
	if len(endpoint) > 8 && endpoint[:8] == "redis://" {
		addr = endpoint[8:]
	}

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return addr
}

func TestRedisStore_NewRedisStore(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestRedisStore_InvalidParams(t *testing.T) {
	if _, err := NewRedisStore("", "", 0, 0); err == nil {
		t.Error("NewRedisStore() with empty addr should fail")
	}
	if _, err := NewRedisStore("localhost:6379", "", -1, 0); err == nil {
		t.Error("NewRedisStore() with negative db should fail")
	}
}

func TestRedisStore_PutBatch_GetChunk(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	chunks := []keyframe.Chunk{
		testChunk("drone", 0,
			keyframe.Keyframe{Time: 0, X: 0, Y: 0},
			keyframe.Keyframe{Time: 500, X: 10, Y: 10},
		),
		testChunk("drone", 1, keyframe.Keyframe{Time: 1500, X: 20, Y: 20}),
		testChunk("drone", 2), // empty, must be skipped
	}

	if err := store.PutBatch(ctx, chunks); err != nil {
		t.Fatalf("PutBatch() error: %v", err)
	}

	got, found, err := store.GetChunk(ctx, "drone", 0)
	if err != nil {
		t.Fatalf("GetChunk() error: %v", err)
	}
	if !found {
		t.Fatal("GetChunk() found = false, want true")
	}
	if got.ID != "drone_0" || len(got.Keyframes) != 2 {
		t.Errorf("GetChunk() = %+v, want drone_0 with 2 keyframes", got)
	}
	if got.StartTime != 0 || got.EndTime != 1000 {
		t.Errorf("chunk bounds = [%v,%v), want [0,1000)", got.StartTime, got.EndTime)
	}

	// Empty chunk reads back as not found, same as a never-written index.
	_, found, err = store.GetChunk(ctx, "drone", 2)
	if err != nil {
		t.Fatalf("GetChunk() error: %v", err)
	}
	if found {
		t.Error("empty chunk should read back as not found")
	}
}

func TestRedisStore_GetChunk_NotFound(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	defer store.Close()

	_, found, err := store.GetChunk(context.Background(), "ghost", 7)
	if err != nil {
		t.Fatalf("GetChunk() on missing key should not error, got %v", err)
	}
	if found {
		t.Error("GetChunk() found = true for never-written chunk")
	}
}

func TestRedisStore_PutBatch_LargeSet(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	defer store.Close()

	// More than two full batches to exercise the batch split.
	const n = BatchSize*2 + 17
	chunks := make([]keyframe.Chunk, 0, n)
	for i := 0; i < n; i++ {
		chunks = append(chunks, testChunk("swarm", i, keyframe.Keyframe{Time: float64(i) * 1000}))
	}

	ctx := context.Background()
	if err := store.PutBatch(ctx, chunks); err != nil {
		t.Fatalf("PutBatch() error: %v", err)
	}

	for _, idx := range []int{0, BatchSize, BatchSize * 2, n - 1} {
		_, found, err := store.GetChunk(ctx, "swarm", idx)
		if err != nil {
			t.Fatalf("GetChunk(%d) error: %v", idx, err)
		}
		if !found {
			t.Errorf("chunk %d missing after batched write", idx)
		}
	}
}

func TestRedisStore_Close_Idempotent(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.Close(); err != nil {
			t.Errorf("Close() call %d error: %v", i+1, err)
		}
	}
}

func TestRedisStore_MalformedRecord(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	key := fmt.Sprintf("chunkplay:chunk:%s", keyframe.ChunkID("bad", 0))
	if err := store.client.Set(ctx, key, "not json{", 0).Err(); err != nil {
		t.Fatalf("failed to plant malformed record: %v", err)
	}

	_, found, err := store.GetChunk(ctx, "bad", 0)
	if err == nil {
		t.Error("GetChunk() on malformed record should error")
	}
	if found {
		t.Error("GetChunk() on malformed record reported found")
	}
}
