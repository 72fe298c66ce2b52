package transport

import (
	"context"
	"testing"
	"time"

	"github.com/argus-ci/argus/internal/analysis"
)

func TestCache_PutGet(t *testing.T) {
	cache, err := NewCache(true, t.TempDir(), 3600)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	if _, ok := cache.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	if err := cache.Put("key1", "cached response"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := cache.Get("key1")
	if !ok || got != "cached response" {
		t.Errorf("Get = (%q, %v)", got, ok)
	}
}

func TestCache_Expiry(t *testing.T) {
	cache, err := NewCache(true, t.TempDir(), 1)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	if err := cache.Put("key", "stale"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)
	if _, ok := cache.Get("key"); ok {
		t.Error("expired entry should miss")
	}
}

func TestCache_Disabled(t *testing.T) {
	cache, err := NewCache(false, "", 0)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	if err := cache.Put("key", "value"); err != nil {
		t.Fatalf("Put on disabled cache: %v", err)
	}
	if _, ok := cache.Get("key"); ok {
		t.Error("disabled cache should always miss")
	}
}

func TestCache_Clear(t *testing.T) {
	cache, err := NewCache(true, t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	cache.Put("a", "1")
	cache.Put("b", "2")

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("entry survived Clear")
	}
}

func TestWithCache_ServesRepeatsFromCache(t *testing.T) {
	cache, err := NewCache(true, t.TempDir(), 3600)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	inner := &flakyCaller{failures: 0}
	c := WithCache(inner, cache)

	req := Request{UserPrompt: "same prompt", Payload: analysis.Request{Kind: analysis.KindReview}}
	for i := 0; i < 3; i++ {
		resp, err := c.Call(context.Background(), req)
		if err != nil {
			t.Fatalf("Call %d: %v", i, err)
		}
		if resp.Content != "ok" {
			t.Errorf("content = %q", resp.Content)
		}
	}
	if inner.calls != 1 {
		t.Errorf("endpoint calls = %d, want 1", inner.calls)
	}

	// A different kind misses.
	req.Payload.Kind = analysis.KindSecurity
	if _, err := c.Call(context.Background(), req); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("endpoint calls = %d, want 2", inner.calls)
	}
}

func TestBuildCacheKey_Distinct(t *testing.T) {
	a := BuildCacheKey("review", "prompt one")
	b := BuildCacheKey("review", "prompt two")
	c := BuildCacheKey("security", "prompt one")
	if a == b || a == c {
		t.Error("cache keys should differ by kind and prompt")
	}
}
