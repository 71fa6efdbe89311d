package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "environment variable set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "from-env",
			want:         "from-env",
		},
		{
			name:         "environment variable not set",
			key:          "NONEXISTENT_VAR",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		want         int
	}{
		{
			name:         "valid integer",
			key:          "TEST_INT",
			defaultValue: 10,
			envValue:     "42",
			want:         42,
		},
		{
			name:         "invalid integer",
			key:          "TEST_INT",
			defaultValue: 10,
			envValue:     "not-a-number",
			want:         10,
		},
		{
			name:         "not set",
			key:          "NONEXISTENT_INT",
			defaultValue: 99,
			envValue:     "",
			want:         99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue time.Duration
		envValue     string
		want         time.Duration
	}{
		{
			name:         "valid duration",
			key:          "TEST_DURATION",
			defaultValue: time.Second,
			envValue:     "250ms",
			want:         250 * time.Millisecond,
		},
		{
			name:         "invalid duration",
			key:          "TEST_DURATION",
			defaultValue: 5 * time.Second,
			envValue:     "soon",
			want:         5 * time.Second,
		},
		{
			name:         "not set",
			key:          "NONEXISTENT_DURATION",
			defaultValue: time.Minute,
			envValue:     "",
			want:         time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvDuration(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		want         bool
	}{
		{name: "true", key: "TEST_BOOL", defaultValue: false, envValue: "true", want: true},
		{name: "one", key: "TEST_BOOL", defaultValue: false, envValue: "1", want: true},
		{name: "false", key: "TEST_BOOL", defaultValue: true, envValue: "false", want: false},
		{name: "not set", key: "NONEXISTENT_BOOL", defaultValue: true, envValue: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Listen:           ":8082",
		Storage:          "memory",
		Display:          "none",
		DemoObjects:      3,
		WorldWidth:       800,
		WorldHeight:      600,
		MaxChunks:        3,
		PrefetchInterval: 250 * time.Millisecond,
		FrameInterval:    16 * time.Millisecond,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "unknown storage backend",
			mutate:  func(c *Config) { c.Storage = "dynamo" },
			wantErr: true,
		},
		{
			name:    "unknown display backend",
			mutate:  func(c *Config) { c.Display = "sdl" },
			wantErr: true,
		},
		{
			name:    "chunk budget below minimum",
			mutate:  func(c *Config) { c.MaxChunks = 1 },
			wantErr: true,
		},
		{
			name:    "chunk budget above maximum",
			mutate:  func(c *Config) { c.MaxChunks = 6 },
			wantErr: true,
		},
		{
			name:    "zero prefetch interval",
			mutate:  func(c *Config) { c.PrefetchInterval = 0 },
			wantErr: true,
		},
		{
			name:    "zero frame interval",
			mutate:  func(c *Config) { c.FrameInterval = 0 },
			wantErr: true,
		},
		{
			name:    "negative world width",
			mutate:  func(c *Config) { c.WorldWidth = -1 },
			wantErr: true,
		},
		{
			name:    "no demo objects without scene file",
			mutate:  func(c *Config) { c.DemoObjects = 0 },
			wantErr: true,
		},
		{
			name:    "missing scene file",
			mutate:  func(c *Config) { c.SceneFile = "/nonexistent/scene.yaml" },
			wantErr: true,
		},
		{
			name:    "tls enabled without cert files",
			mutate:  func(c *Config) { c.TLS.Enabled = true },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidate_SceneFilePresent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte("objects: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := validConfig(t)
	cfg.SceneFile = path
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with existing scene file returned %v", err)
	}
}
