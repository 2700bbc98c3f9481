package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Errorf("Get(missing) = (hit=%v, err=%v), want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "payload" {
		t.Errorf("Get(k) = (%q, %v, %v), want (payload, true, nil)", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete reported a hit")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Errorf("expired entry = (hit=%v, err=%v), want miss", hit, err)
	}
}

func TestNullCacheNeverStores(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Errorf("NullCache Get = (hit=%v, err=%v), want miss", hit, err)
	}
}

func TestDefaultKeyerIsDeterministic(t *testing.T) {
	k := NewDefaultKeyer()

	a := k.DrawingKey("abc", DrawingKeyOpts{OptionsHash: "h1", Seed: 7})
	b := k.DrawingKey("abc", DrawingKeyOpts{OptionsHash: "h1", Seed: 7})
	if a != b {
		t.Errorf("equal inputs produced different keys: %q vs %q", a, b)
	}

	// Any varied input must change the key.
	variants := []string{
		k.DrawingKey("abd", DrawingKeyOpts{OptionsHash: "h1", Seed: 7}),
		k.DrawingKey("abc", DrawingKeyOpts{OptionsHash: "h2", Seed: 7}),
		k.DrawingKey("abc", DrawingKeyOpts{OptionsHash: "h1", Seed: 8}),
		k.GraphKey("abc", GraphKeyOpts{Format: "json"}),
		k.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg", Engine: "neato"}),
	}
	seen := map[string]bool{a: true}
	for i, v := range variants {
		if seen[v] {
			t.Errorf("variant %d collided with an earlier key: %q", i, v)
		}
		seen[v] = true
	}
}

func TestScopedKeyerPrefixes(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:42:")

	got := scoped.GraphKey("abc", GraphKeyOpts{})
	want := "tenant:42:" + inner.GraphKey("abc", GraphKeyOpts{})
	if got != want {
		t.Errorf("scoped key = %q, want %q", got, want)
	}
}

func TestHashIsStable(t *testing.T) {
	a, b := Hash([]byte("x")), Hash([]byte("x"))
	if a != b {
		t.Errorf("Hash not deterministic: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Hash length = %d, want 64 hex chars", len(a))
	}
	if Hash([]byte("y")) == a {
		t.Error("different inputs hashed identically")
	}
}
