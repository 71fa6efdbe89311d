// Package config provides configuration parsing and management for the player.
//
// It handles both command-line flags and environment variables, with flags taking
// precedence over environment variables. The Config struct contains all runtime
// configuration for the player including:
//   - Scene definition (scene file or generated demo objects)
//   - Cache policy (resident chunk budget per object)
//   - Loop timing (prefetch interval, frame interval)
//   - Storage backend settings (memory or Redis)
//   - Display backend (terminal or headless)
//   - Logging configuration (level, format, file)
//   - TLS configuration for the HTTP endpoints
//
// Supported configuration sources (in order of precedence):
//  1. Command-line flags
//  2. Environment variables
//  3. Default values
//
// Example usage:
//
//	cfg := config.ParseFlags()
//	if err := cfg.Validate(); err != nil { ... }
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/karu-dev/chunkplay/pkg/tls"
)

// Config holds all player configuration.
type Config struct {
	Listen    string
	LogFormat string
	LogLevel  string
	LogFile   string

	Storage       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	TLS tls.Config

	SceneFile   string
	DemoObjects int
	Seed        int64
	WorldWidth  float64
	WorldHeight float64

	MaxChunks        int
	PrefetchInterval time.Duration
	FrameInterval    time.Duration

	Display string
}

// ParseFlags parses command-line flags and environment variables into a Config.
// Environment variables are used as fallbacks when flags are not provided.
func ParseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.Listen, "listen", getEnv("LISTEN", ":8082"), "HTTP listen address")

	flag.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	flag.StringVar(&cfg.LogFile, "log-file", getEnv("LOG_FILE", ""), "Log file path (default stderr; required with -display=terminal to keep the screen clean)")

	flag.StringVar(&cfg.Storage, "storage", getEnv("STORAGE", "memory"), "Storage backend: memory or redis")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("REDIS_ADDR", "localhost:6379"), "Redis server address")
	flag.StringVar(&cfg.RedisPassword, "redis-password", getEnv("REDIS_PASSWORD", ""), "Redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", getEnvInt("REDIS_DB", 0), "Redis database number")
	flag.DurationVar(&cfg.RedisTTL, "redis-ttl", getEnvDuration("REDIS_TTL", 30*time.Minute), "Redis chunk TTL")

	flag.BoolVar(&cfg.TLS.Enabled, "tls-enabled", getEnvBool("TLS_ENABLED", false), "Enable TLS for HTTP server")
	flag.StringVar(&cfg.TLS.CertFile, "tls-cert-file", getEnv("TLS_CERT_FILE", ""), "TLS certificate file")
	flag.StringVar(&cfg.TLS.KeyFile, "tls-key-file", getEnv("TLS_KEY_FILE", ""), "TLS private key file")
	flag.StringVar(&cfg.TLS.CAFile, "tls-ca-file", getEnv("TLS_CA_FILE", ""), "TLS CA certificate file for client verification")

	flag.StringVar(&cfg.SceneFile, "scene", getEnv("SCENE", ""), "Scene YAML file (empty generates a demo scene)")
	flag.IntVar(&cfg.DemoObjects, "demo-objects", getEnvInt("DEMO_OBJECTS", 6), "Number of generated demo objects when no scene file is given")
	flag.Int64Var(&cfg.Seed, "seed", getEnvInt64("SEED", 0), "Demo scene random seed (0 uses current time)")
	flag.Float64Var(&cfg.WorldWidth, "world-width", getEnvFloat("WORLD_WIDTH", 800), "World coordinate space width")
	flag.Float64Var(&cfg.WorldHeight, "world-height", getEnvFloat("WORLD_HEIGHT", 600), "World coordinate space height")

	flag.IntVar(&cfg.MaxChunks, "max-chunks", getEnvInt("MAX_CHUNKS", 3), "Resident chunk budget per object (2 to 5)")
	flag.DurationVar(&cfg.PrefetchInterval, "prefetch-interval", getEnvDuration("PREFETCH_INTERVAL", 250*time.Millisecond), "Prefetch pass interval")
	flag.DurationVar(&cfg.FrameInterval, "frame-interval", getEnvDuration("FRAME_INTERVAL", 16*time.Millisecond), "Render frame interval")

	flag.StringVar(&cfg.Display, "display", getEnv("DISPLAY_MODE", "terminal"), "Display backend: terminal or none")

	flag.Parse()

	return cfg
}

// Validate checks the configuration for inconsistent or unusable values.
func (c *Config) Validate() error {
	if c.Storage != "memory" && c.Storage != "redis" {
		return fmt.Errorf("invalid storage %q (must be memory or redis)", c.Storage)
	}
	if c.Display != "terminal" && c.Display != "none" {
		return fmt.Errorf("invalid display %q (must be terminal or none)", c.Display)
	}
	if c.MaxChunks < 2 || c.MaxChunks > 5 {
		return fmt.Errorf("max-chunks must be between 2 and 5, got %d", c.MaxChunks)
	}
	if c.PrefetchInterval <= 0 {
		return errors.New("prefetch-interval must be > 0")
	}
	if c.FrameInterval <= 0 {
		return errors.New("frame-interval must be > 0")
	}
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return fmt.Errorf("world dimensions must be positive, got %gx%g", c.WorldWidth, c.WorldHeight)
	}
	if c.SceneFile == "" && c.DemoObjects < 1 {
		return fmt.Errorf("demo-objects must be at least 1, got %d", c.DemoObjects)
	}
	if c.SceneFile != "" {
		if _, err := os.Stat(c.SceneFile); err != nil {
			return fmt.Errorf("scene file %q: %w", c.SceneFile, err)
		}
	}

	return c.TLS.Validate()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		var i int64
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
