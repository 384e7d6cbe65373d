package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fastBackoff keeps retry tests quick.
var fastBackoff = Backoff{Attempts: 3, Delay: time.Millisecond}

var errTransient = errors.New("connection reset")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return miss")
	}
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get(k) = %q, %v, %v; want v, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry = %v, %v; want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	type stats struct{ Methods, Calls int }
	if err := SetJSON(ctx, c, "stats", stats{3, 7}, 0); err != nil {
		t.Fatal(err)
	}
	var got stats
	if err := GetJSON(ctx, c, "stats", &got); err != nil {
		t.Fatalf("GetJSON error: %v", err)
	}
	if got != (stats{3, 7}) {
		t.Errorf("GetJSON = %+v", got)
	}

	if err := GetJSON(ctx, c, "missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON(missing) = %v, want ErrCacheMiss", err)
	}

	_ = c.Set(ctx, "bad", []byte("not json"), 0)
	if err := GetJSON(ctx, c, "bad", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON(bad) = %v, want ErrCacheMiss", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.json")
	if err := os.WriteFile(file, []byte(`{"name":"app"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	fh, err := HashPath(file)
	if err != nil {
		t.Fatal(err)
	}
	if fh != Hash([]byte(`{"name":"app"}`)) {
		t.Error("HashPath(file) should hash the file content")
	}

	d1, err := HashPath(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other.go"), []byte("package x"), 0o644); err != nil {
		t.Fatal(err)
	}
	d2, _ := HashPath(dir)
	if d1 == d2 {
		t.Error("HashPath(dir) should change when a file is added")
	}

	if _, err := HashPath(filepath.Join(dir, "missing")); err == nil {
		t.Error("HashPath(missing) should fail")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	e1 := k.EntitiesKey("h", EntitiesKeyOpts{Include: "Models"})
	e2 := k.EntitiesKey("h", EntitiesKeyOpts{Include: "models"})
	if e1 == e2 {
		t.Error("Different EntitiesKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(e1, "entities:") {
		t.Errorf("EntitiesKey prefix: %s", e1)
	}

	c1 := k.CallsKey("h", CallsKeyOpts{Entry: "Main", MaxDepth: 1})
	c2 := k.CallsKey("h", CallsKeyOpts{Entry: "Main", MaxDepth: 2})
	if c1 == c2 {
		t.Error("Different CallsKeyOpts should produce different keys")
	}

	a1 := k.ArtifactKey("g", ArtifactKeyOpts{Format: "svg"})
	a2 := k.ArtifactKey("g", ArtifactKeyOpts{Format: "png"})
	if a1 == a2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if k.EntitiesKey("h1", EntitiesKeyOpts{}) == k.EntitiesKey("h2", EntitiesKeyOpts{}) {
		t.Error("Different module hashes should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "staging:")
	key := scoped.CallsKey("h", CallsKeyOpts{})
	if !strings.HasPrefix(key, "staging:calls:") {
		t.Errorf("ScopedKeyer CallsKey should be prefixed: %s", key)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got, want := nilInner.EntitiesKey("h", EntitiesKeyOpts{}), "p:"+NewDefaultKeyer().EntitiesKey("h", EntitiesKeyOpts{}); got != want {
		t.Errorf("nil inner key = %s, want %s", got, want)
	}
}

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should return nil")
	}
	err := Transient(errTransient)
	if !IsTransient(err) {
		t.Error("IsTransient should return true for a marked error")
	}
	if err.Error() != errTransient.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), errTransient.Error())
	}
	if !errors.Is(err, errTransient) {
		t.Error("marked error should unwrap")
	}
	if IsTransient(ErrCacheMiss) {
		t.Error("IsTransient should return false for an unmarked error")
	}
	if !IsTransient(fmt.Errorf("get: %w", err)) {
		t.Error("IsTransient should see through wrapping")
	}
}

func TestBackoffDo(t *testing.T) {
	tests := []struct {
		name      string
		failures  int // transient failures before success; -1 fails permanently
		wantCalls int
		wantErr   error
	}{
		{"success", 0, 1, nil},
		{"retry once", 1, 2, nil},
		{"exhausted", 5, 3, errTransient},
		{"permanent", -1, 1, ErrCacheMiss},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := fastBackoff.Do(context.Background(), func() error {
				calls++
				if tt.failures < 0 {
					return ErrCacheMiss
				}
				if calls <= tt.failures {
					return Transient(errTransient)
				}
				return nil
			})
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("Do() error = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("Do() calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffDoContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fastBackoff.Do(ctx, func() error { return Transient(errTransient) })
	if err != context.Canceled {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestBackoffZeroAttempts(t *testing.T) {
	calls := 0
	_ = Backoff{}.Do(context.Background(), func() error { calls++; return Transient(errTransient) })
	if calls != 1 {
		t.Errorf("Do() calls = %d, want 1", calls)
	}
}

func TestNewRedisCacheUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, RedisConfig{URL: "redis://127.0.0.1:1/0"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewRedisCache() error = %v, want ErrUnavailable", err)
	}

	if _, err := NewRedisCache(ctx, RedisConfig{URL: "http://nope"}); err == nil {
		t.Error("NewRedisCache() should reject a non-redis URL")
	}
}
