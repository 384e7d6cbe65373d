package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/matzehuels/modelviz/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		c := New(io.Discard, LogInfo)
		c.Config.Cache.Dir = "/tmp/modelviz-cache"

		dir, err := c.cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if dir != "/tmp/modelviz-cache" {
			t.Errorf("cacheDir() = %q, want %q", dir, "/tmp/modelviz-cache")
		}
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", t.TempDir())
		c := New(io.Discard, LogInfo)

		dir, err := c.cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if filepath.Base(dir) != appName {
			t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
		}
	})
}

func TestNewCacheBackends(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		noCache bool
		want    string
	}{
		{"disabled by flag", config.CacheFile, true, "cache.NullCache"},
		{"none", config.CacheNone, false, "cache.NullCache"},
		{"file", config.CacheFile, false, "*cache.FileCache"},
		{"redis unreachable", config.CacheRedis, false, "cache.NullCache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(io.Discard, LogInfo)
			c.Config.Cache.Backend = tt.backend
			c.Config.Cache.Dir = t.TempDir()
			c.Config.Cache.RedisURL = "redis://127.0.0.1:1/0"

			ch, err := c.newCache(t.Context(), tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer ch.Close()
			if got := fmt.Sprintf("%T", ch); got != tt.want {
				t.Errorf("newCache() = %s, want %s", got, tt.want)
			}
		})
	}
}
