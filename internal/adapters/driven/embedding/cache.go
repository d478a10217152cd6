package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru"

	"github.com/netest/netest-core/internal/core/ports/driven"
)

// CachedEmbedder wraps another Embedder with an LRU cache keyed on
// model_version + "|" + sha256(text), per spec.md §4.2/§6's
// embedder.cache_capacity option. A repeated Embed call for the same text
// under the same model returns the identical cached vector without a
// second inference pass.
type CachedEmbedder struct {
	inner driven.Embedder
	cache *lru.Cache
}

var _ driven.Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner with an LRU cache of the given capacity.
// A non-positive capacity disables caching and Embed calls pass straight
// through.
func NewCachedEmbedder(inner driven.Embedder, capacity int) (*CachedEmbedder, error) {
	if capacity <= 0 {
		return &CachedEmbedder{inner: inner}, nil
	}
	cache, err := lru.New(capacity)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.inner.Model() + "|" + hex.EncodeToString(sum[:])
}

// Embed returns cached vectors where available and only calls the inner
// embedder for the remaining texts, preserving input order.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.cache == nil {
		return c.inner.Embed(ctx, texts)
	}

	result := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		if v, ok := c.cache.Get(c.cacheKey(text)); ok {
			result[i] = v.([]float32)
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return result, nil
	}

	embedded, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for j, idx := range missIdx {
		result[idx] = embedded[j]
		c.cache.Add(c.cacheKey(texts[idx]), embedded[j])
	}

	return result, nil
}

func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

func (c *CachedEmbedder) Model() string { return c.inner.Model() }

func (c *CachedEmbedder) HealthCheck(ctx context.Context) error { return c.inner.HealthCheck(ctx) }

func (c *CachedEmbedder) Close() error { return c.inner.Close() }
