package transport

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// CacheEntry is one stored model response.
type CacheEntry struct {
	Key       string    `json:"key"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	TTL       int       `json:"ttl"`
}

// Cache provides file-based caching of model responses, keyed by analysis
// kind and prompt.
type Cache struct {
	dir        string
	ttlSeconds int
	enabled    bool
}

// NewCache creates a Cache. If dir is empty, the default cache directory is used.
func NewCache(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir, ttlSeconds: ttlSeconds, enabled: true}, nil
}

// Get retrieves a cached response by key. Returns ("", false) on miss.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if c.ttlSeconds > 0 && time.Since(entry.CreatedAt) > time.Duration(c.ttlSeconds)*time.Second {
		os.Remove(path)
		return "", false
	}
	return entry.Content, true
}

// Put stores a response in the cache.
func (c *Cache) Put(key, content string) error {
	if !c.enabled {
		return nil
	}
	entry := CacheEntry{
		Key:       HashKey(key),
		Content:   content,
		CreatedAt: time.Now(),
		TTL:       c.ttlSeconds,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.entryPath(key), data, 0o644)
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled || c.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
	return nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string { return c.dir }

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool { return c.enabled }

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// BuildCacheKey creates a cache key from one call's inputs.
func BuildCacheKey(kind, prompt string) string {
	return HashKey(fmt.Sprintf("%s:%s", kind, prompt))
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, HashKey(key)+".json")
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "argus"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "argus"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "argus", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "argus", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "argus"), nil
	}
}

// WithCache wraps a caller so that identical kind+prompt calls are served
// from the cache. Only text content is cached; structured bodies always go
// to the endpoint.
func WithCache(c Caller, cache *Cache) Caller {
	if cache == nil || !cache.Enabled() {
		return c
	}
	return &cachingCaller{inner: c, cache: cache}
}

type cachingCaller struct {
	inner Caller
	cache *Cache
}

func (cc *cachingCaller) Name() string { return cc.inner.Name() }

func (cc *cachingCaller) Call(ctx context.Context, req Request) (Response, error) {
	key := BuildCacheKey(string(req.Payload.Kind), req.UserPrompt)
	if content, ok := cc.cache.Get(key); ok {
		return Response{Content: content}, nil
	}
	resp, err := cc.inner.Call(ctx, req)
	if err != nil {
		return resp, err
	}
	if resp.Structured == nil && resp.Content != "" {
		_ = cc.cache.Put(key, resp.Content)
	}
	return resp, nil
}
