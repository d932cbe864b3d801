package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func writeRaw(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestMapKeyDeterministic(t *testing.T) {
	a := MapKey("seed", "rules-fp")
	b := MapKey("seed", "rules-fp")
	if a != b {
		t.Error("same inputs produced different map keys")
	}
	if !strings.HasPrefix(a, KeyTypeMap+":") {
		t.Errorf("map key %q missing %q prefix", a, KeyTypeMap)
	}
}

func TestMapKeyDistinct(t *testing.T) {
	base := MapKey("seed", "rules-fp")
	if MapKey("other", "rules-fp") == base {
		t.Error("different seeds collided")
	}
	if MapKey("seed", "other-fp") == base {
		t.Error("different rules fingerprints collided")
	}
}

func TestArtifactKey(t *testing.T) {
	a := ArtifactKey("maphash", "svg")
	if !strings.HasPrefix(a, KeyTypeArtifact+":") {
		t.Errorf("artifact key %q missing %q prefix", a, KeyTypeArtifact)
	}
	if ArtifactKey("maphash", "png") == a {
		t.Error("different formats collided")
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("content"))
	if len(h) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h))
	}
	if Hash([]byte("content")) != h {
		t.Error("Hash is not deterministic")
	}
	if Hash([]byte("other")) == h {
		t.Error("different content collided")
	}
}

func TestFileCacheSetGet(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	key := MapKey("seed", "fp")

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get() on empty cache = (ok=%v, err=%v), want miss", ok, err)
	}

	if err := c.Set(ctx, key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get() after Set = (ok=%v, err=%v)", ok, err)
	}
	if string(data) != "payload" {
		t.Errorf("Get() = %q, want %q", data, "payload")
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	key := MapKey("seed", "fp")

	if err := c.Set(ctx, key, []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, key); ok {
		t.Error("Get() after Delete still hits")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, MapKey("never", "stored")); err != nil {
		t.Errorf("Delete() of missing key: %v", err)
	}
}

func TestFileCacheTTLExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	key := ArtifactKey("hash", "svg")

	if err := c.Set(ctx, key, []byte("short-lived"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, key); ok {
		t.Error("expired entry still hits")
	}
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	key := MapKey("seed", "fp")
	if err := c.Set(ctx, key, []byte("x"), 0); err != nil {
		t.Fatal(err)
	}

	// Corrupt the entry on disk.
	fc := c.(*FileCache)
	path := fc.path(key)
	if err := writeRaw(path, "not json"); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Errorf("corrupt entry = (ok=%v, err=%v), want silent miss", ok, err)
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Error("null cache should always miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}
