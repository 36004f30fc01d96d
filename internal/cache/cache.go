// Package cache memoizes rendered resource bodies in Redis or in process.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/storage/redis/v3"

	"corysite/internal/logger"
	"corysite/internal/markdown"
	"corysite/internal/metrics"
)

// Storage is the subset of fiber.Storage the cache needs.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
}

// NewRedisStorage connects to Redis at url. It panics if the server is
// unreachable, matching the storage driver.
func NewRedisStorage(url string) *redis.Storage {
	return redis.New(redis.Config{URL: url})
}

// RenderCache renders Markdown through a renderer, caching the HTML by a
// digest of the options and source.
type RenderCache struct {
	store    Storage
	renderer *markdown.Renderer
	ttl      time.Duration
	log      logger.Logger
}

// NewRenderCache wraps renderer with store. A nil store disables caching.
func NewRenderCache(store Storage, renderer *markdown.Renderer, ttl time.Duration, log logger.Logger) *RenderCache {
	return &RenderCache{store: store, renderer: renderer, ttl: ttl, log: log}
}

// Key derives the cache key for source under the renderer's options.
func (c *RenderCache) Key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return "render:" + strconv.FormatBool(c.renderer.Options().InlineCode) + ":" + hex.EncodeToString(sum[:])
}

// Render returns the HTML for source. Storage errors fall back to rendering.
func (c *RenderCache) Render(source string) string {
	if c.store == nil {
		metrics.MarkdownRenders.WithLabelValues("disabled").Inc()
		return c.renderer.Render(source)
	}

	key := c.Key(source)
	cached, err := c.store.Get(key)
	if err != nil {
		c.log.WithError(err).Warn("render cache read failed", nil)
	}
	if err == nil && cached != nil {
		metrics.MarkdownRenders.WithLabelValues("hit").Inc()
		return string(cached)
	}

	metrics.MarkdownRenders.WithLabelValues("miss").Inc()
	html := c.renderer.Render(source)
	if err := c.store.Set(key, []byte(html), c.ttl); err != nil {
		c.log.WithError(err).Warn("render cache write failed", nil)
	}
	return html
}

// Invalidate drops the cached rendering of source.
func (c *RenderCache) Invalidate(source string) {
	if c.store == nil {
		return
	}
	if err := c.store.Delete(c.Key(source)); err != nil {
		c.log.WithError(err).Warn("render cache delete failed", nil)
	}
}

// MemoryStorage is an in-process Storage with per-key expiry.
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	val     []byte
	expires time.Time // zero means no expiry
}

// NewMemoryStorage creates an empty in-process store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]memoryItem), now: time.Now}
}

// Get returns nil, nil for missing or expired keys.
func (m *MemoryStorage) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key]
	if !ok {
		return nil, nil
	}
	if !it.expires.IsZero() && !m.now().Before(it.expires) {
		delete(m.items, key)
		return nil, nil
	}
	return it.val, nil
}

func (m *MemoryStorage) Set(key string, val []byte, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	it := memoryItem{val: append([]byte(nil), val...)}
	if exp > 0 {
		it.expires = m.now().Add(exp)
	}
	m.items[key] = it
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}
