package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
cache:
  ways: 32
  way_capacity: 512
  resize_to: 128
workload:
  duration: 3s
  max_age: 250ms
log_level: debug
`)
	cfg, err := Load(path, Default(16))
	require.NoError(t, err)

	require.Equal(t, 32, cfg.Cache.Ways)
	require.Equal(t, 512, cfg.Cache.WayCapacity)
	require.Equal(t, 128, cfg.Cache.ResizeTo)
	require.Equal(t, 3*time.Second, cfg.Workload.Duration)
	require.Equal(t, 250*time.Millisecond, cfg.Workload.MaxAge)
	require.Equal(t, "debug", cfg.LogLevel)

	// Untouched fields keep their defaults.
	require.Equal(t, 80, cfg.Workload.ReadPct)
	require.Equal(t, ":8080", cfg.Metrics.Addr)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), Default(1))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeFile(t, "cache: [unterminated"), Default(1))
		require.Error(t, err)
	})

	t.Run("zero ways", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeFile(t, "cache:\n  ways: 0\n"), Default(1))
		require.ErrorIs(t, err, ErrInvalid)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Default(4).Validate())

	cases := map[string]func(*Config){
		"negative capacity": func(c *Config) { c.Cache.WayCapacity = -1 },
		"read pct":          func(c *Config) { c.Workload.ReadPct = 101 },
		"keys":              func(c *Config) { c.Workload.Keys = 0 },
		"zipf s":            func(c *Config) { c.Workload.ZipfS = 1 },
		"zipf v":            func(c *Config) { c.Workload.ZipfV = 0.5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := Default(4)
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
