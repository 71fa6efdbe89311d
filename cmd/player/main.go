// Command player implements the chunkplay streaming keyframe player.
//
// The player runs a cooperative playback loop that:
//  1. Partitions object trajectories into fixed-duration keyframe chunks
//  2. Seeds the chunk store (memory or Redis) with the partitioned chunks
//  3. Streams chunks back through bounded per-object caches ahead of the playhead
//  4. Advances and renders every object each frame without blocking on the store
//  5. Freezes playback and reports hit objects while a mouse button is held
//
// The player serves an HTTP API on port 8082 (configurable) providing:
//   - GET /chunks/current?object=<id>&index=<n> - Retrieve a stored chunk
//   - GET /healthz - Health check endpoint
//   - GET /metrics - Prometheus metrics endpoint
//
// Usage:
//
//	player \
//	  -scene=examples/scene.yaml \
//	  -storage=redis \
//	  -redis-addr=localhost:6379 \
//	  -max-chunks=3 \
//	  -display=terminal -log-file=player.log
//
// Environment variables:
//
//	SCENE             - Scene YAML file (empty generates a demo scene)
//	DEMO_OBJECTS      - Number of generated demo objects (default: 6)
//	STORAGE           - Storage backend: memory or redis (default: memory)
//	REDIS_ADDR        - Redis server address
//	MAX_CHUNKS        - Resident chunk budget per object (default: 3)
//	PREFETCH_INTERVAL - Prefetch pass interval (default: 250ms)
//	FRAME_INTERVAL    - Render frame interval (default: 16ms)
//	DISPLAY_MODE      - Display backend: terminal or none (default: terminal)
//	LOG_LEVEL         - Logging level: debug, info, warn, error (default: info)
//	LOG_FORMAT        - Logging format: text, json (default: text)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/karu-dev/chunkplay/cmd/player/config"
	"github.com/karu-dev/chunkplay/cmd/player/logger"
	"github.com/karu-dev/chunkplay/cmd/player/metrics"
	"github.com/karu-dev/chunkplay/cmd/player/router"
	"github.com/karu-dev/chunkplay/pkg/display"
	"github.com/karu-dev/chunkplay/pkg/httpx"
	"github.com/karu-dev/chunkplay/pkg/playback"
	"github.com/karu-dev/chunkplay/pkg/scene"
	"github.com/karu-dev/chunkplay/pkg/scheduler"
	"github.com/karu-dev/chunkplay/pkg/storage"
	"github.com/karu-dev/chunkplay/pkg/tls"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.ParseFlags()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	log.Info("starting chunkplay player",
		"version", version,
		"storage", cfg.Storage,
		"display", cfg.Display,
		"max_chunks", cfg.MaxChunks,
	)

	store, err := newStore(cfg, log)
	if err != nil {
		return err
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Error("failed to close store", "error", err)
			}
		}()
	}

	objectConfigs, err := loadScene(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan playback.FetchResult, 256)
	registry := scene.NewRegistry(store, results, cfg.MaxChunks, log)

	// Registration is sequential; seeding the store runs one writer per
	// object since batches for different objects are independent.
	g, gctx := errgroup.WithContext(ctx)
	for _, oc := range objectConfigs {
		obj, chunks, err := registry.Add(oc)
		if err != nil {
			return fmt.Errorf("register object %q: %w", oc.ID, err)
		}
		log.Info("registered object", "object", obj.ID(), "chunks", len(chunks))

		g.Go(func() error {
			if err := store.PutBatch(gctx, chunks); err != nil {
				return fmt.Errorf("seed object %q: %w", obj.ID(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	renderer, input, done, cleanup, err := newDisplay(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sched, err := scheduler.New(registry, results, renderer, input, metrics.New(), log, scheduler.Options{
		PrefetchInterval: cfg.PrefetchInterval,
		FrameInterval:    cfg.FrameInterval,
	})
	if err != nil {
		return err
	}

	go func() {
		if err := sched.Run(ctx); err != nil && err != context.Canceled {
			log.Error("playback loop failed", "error", err)
		}
	}()

	mux := router.SetupRoutes(store, log)
	handler := httpx.LoggingMiddleware(log)(httpx.RecoveryMiddleware(log)(mux))
	httpServer := httpx.NewServer(cfg.Listen, handler, log)

	serverErr := make(chan error, 1)
	go func() {
		if cfg.TLS.Enabled {
			tlsConfig, err := tls.NewServerTLSConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.CAFile)
			if err != nil {
				serverErr <- err
				return
			}
			httpServer.SetTLSConfig(tlsConfig)
			serverErr <- httpServer.StartTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
			return
		}
		serverErr <- httpServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig)
	case <-done:
		log.Info("quit requested from display")
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", "error", err)
		}
	}

	log.Info("shutting down")
	cancel()

	if err := httpServer.Stop(10 * time.Second); err != nil {
		log.Error("server shutdown failed", "error", err)
		return err
	}

	log.Info("shutdown complete")
	return nil
}

// newStore selects the chunk store backend from configuration.
func newStore(cfg *config.Config, log *slog.Logger) (storage.Store, error) {
	switch cfg.Storage {
	case "redis":
		store, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.Info("using redis store", "addr", cfg.RedisAddr, "db", cfg.RedisDB, "ttl", cfg.RedisTTL)
		return store, nil
	default:
		log.Info("using in-memory store")
		return storage.NewMemoryStore(), nil
	}
}

// loadScene loads object configurations from the scene file, or generates a
// demo scene when none is configured.
func loadScene(cfg *config.Config, log *slog.Logger) ([]scene.ObjectConfig, error) {
	if cfg.SceneFile != "" {
		configs, err := scene.Load(cfg.SceneFile)
		if err != nil {
			return nil, fmt.Errorf("load scene: %w", err)
		}
		log.Info("loaded scene", "file", cfg.SceneFile, "objects", len(configs))
		return configs, nil
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	configs := scene.Demo(cfg.DemoObjects, cfg.WorldWidth, cfg.WorldHeight, rng)
	log.Info("generated demo scene", "objects", len(configs), "seed", seed)
	return configs, nil
}

// newDisplay selects the render and input backend from configuration.
func newDisplay(cfg *config.Config) (scheduler.Renderer, scheduler.Input, <-chan struct{}, func(), error) {
	switch cfg.Display {
	case "terminal":
		term, err := display.NewTerminal(cfg.WorldWidth, cfg.WorldHeight)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("initialize terminal: %w", err)
		}
		return term, term, term.Done(), term.Close, nil
	default:
		null := display.NewNull()
		return null, null, nil, func() {}, nil
	}
}
