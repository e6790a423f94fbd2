package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// promptCache is a bounded map from prompt hash to generated text.
//
// This is an approximate cache, not an LRU: when full, a random entry
// is evicted. A miss is always safe (just costs an extra model call),
// so no stricter consistency is needed. The guarantee is at most one
// cached entry per key, best-effort hit.
type promptCache struct {
	mu      sync.Mutex
	entries map[string]string
	maxSize int
	hits    int
	misses  int
}

func newPromptCache(maxSize int) *promptCache {
	if maxSize <= 0 {
		maxSize = 200
	}
	return &promptCache{
		entries: make(map[string]string),
		maxSize: maxSize,
	}
}

func (c *promptCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

func (c *promptCache) set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		// Evict one random key. Map iteration order is already
		// randomized, so the first key visited is a uniform-enough pick.
		n := rand.Intn(len(c.entries))
		for k := range c.entries {
			if n == 0 {
				delete(c.entries, k)
				break
			}
			n--
		}
	}
	c.entries[key] = value
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Size    int     `json:"size"`
	MaxSize int     `json:"max_size"`
	Hits    int     `json:"hits"`
	Misses  int     `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

func (c *promptCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return CacheStats{
		Size:    len(c.entries),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: rate,
	}
}

// CachedClientConfig configures a CachedClient.
type CachedClientConfig struct {
	// CacheSize bounds the prompt cache (default 200 entries).
	CacheSize int

	// MinDelay is the minimum spacing between backend calls (default 1s).
	MinDelay time.Duration

	// MaxDelay caps the error-driven pacing growth (default 5s).
	MaxDelay time.Duration
}

// DefaultCachedClientConfig returns production defaults.
func DefaultCachedClientConfig() CachedClientConfig {
	return CachedClientConfig{
		CacheSize: 200,
		MinDelay:  time.Second,
		MaxDelay:  5 * time.Second,
	}
}

// CachedClient decorates any LLMClient with a bounded prompt cache and
// call pacing. Identical prompts are served from memory; backend calls
// are spaced at least MinDelay apart, growing exponentially while the
// backend keeps failing and resetting on the first success.
//
// Thread Safety: CachedClient is safe for concurrent use. Pacing is
// global across callers by design: the quota being protected is shared.
type CachedClient struct {
	inner LLMClient
	cache *promptCache
	cfg   CachedClientConfig

	mu                sync.Mutex
	lastCall          time.Time
	consecutiveErrors int
	totalCalls        int
	successfulCalls   int
}

// NewCachedClient wraps inner with caching and pacing.
func NewCachedClient(inner LLMClient, cfg CachedClientConfig) *CachedClient {
	def := DefaultCachedClientConfig()
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = def.MinDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	return &CachedClient{
		inner: inner,
		cache: newPromptCache(cfg.CacheSize),
		cfg:   cfg,
	}
}

// Generate implements the LLMClient interface.
func (c *CachedClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	key := cacheKey(prompt, params)
	if text, ok := c.cache.get(key); ok {
		slog.Debug("Serving LLM response from cache")
		cacheHits.Inc()
		return text, nil
	}
	cacheMisses.Inc()

	if err := c.pace(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	text, err := c.inner.Generate(ctx, prompt, params)
	modelCallDuration.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	c.totalCalls++
	c.lastCall = time.Now()
	if err != nil {
		c.consecutiveErrors++
	} else {
		c.consecutiveErrors = 0
		c.successfulCalls++
	}
	c.mu.Unlock()

	if err != nil {
		return "", err
	}
	c.cache.set(key, text)
	return text, nil
}

// pace sleeps until the inter-call spacing is satisfied. The spacing
// doubles per consecutive error, capped at MaxDelay.
func (c *CachedClient) pace(ctx context.Context) error {
	c.mu.Lock()
	delay := c.cfg.MinDelay << c.consecutiveErrors
	if delay > c.cfg.MaxDelay || delay <= 0 {
		delay = c.cfg.MaxDelay
	}
	wait := delay - time.Since(c.lastCall)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	slog.Debug("Rate limiting LLM call", "wait", wait)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// ModelInfo reports call and cache statistics for diagnostics.
func (c *CachedClient) ModelInfo() map[string]any {
	c.mu.Lock()
	total := c.totalCalls
	successful := c.successfulCalls
	consecutive := c.consecutiveErrors
	c.mu.Unlock()

	successRate := 0.0
	if total > 0 {
		successRate = float64(successful) / float64(total)
	}
	return map[string]any{
		"total_calls":        total,
		"successful_calls":   successful,
		"success_rate":       successRate,
		"consecutive_errors": consecutive,
		"cache_stats":        c.cache.stats(),
	}
}

func cacheKey(prompt string, params GenerationParams) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	if params.Temperature != nil {
		h.Write([]byte{byte(*params.Temperature * 100)})
	}
	if params.MaxTokens != nil {
		h.Write([]byte{byte(*params.MaxTokens), byte(*params.MaxTokens >> 8)})
	}
	return hex.EncodeToString(h.Sum(nil))
}
