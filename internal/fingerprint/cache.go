package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/clausewatch/clausewatch/internal/model"
)

// Computer is the part of the engine the cache wraps.
type Computer interface {
	Compute(text string) model.Fingerprint
}

// Cache memoizes fingerprints keyed by the exact-content hash of the
// normalized text. Fingerprints are deterministic derived data, so a cached
// entry is always valid for its key. The underlying LRU is safe for
// concurrent use; comparisons for different contracts share one cache.
type Cache struct {
	next  Computer
	cache *expirable.LRU[string, model.Fingerprint]
}

// NewCache wraps a computer with an expiring LRU. A non-positive size or
// ttl disables caching and returns a pass-through.
func NewCache(next Computer, size int, ttl time.Duration) *Cache {
	c := &Cache{next: next}
	if size > 0 && ttl > 0 {
		c.cache = expirable.NewLRU[string, model.Fingerprint](size, nil, ttl)
	}
	return c
}

func (c *Cache) Compute(text string) model.Fingerprint {
	if c.cache == nil {
		return c.next.Compute(text)
	}
	digest := sha256.Sum256([]byte(NormalizeForHash(text)))
	key := hex.EncodeToString(digest[:])
	if cached, ok := c.cache.Get(key); ok {
		return cloneFingerprint(cached)
	}
	fp := c.next.Compute(text)
	c.cache.Add(key, cloneFingerprint(fp))
	return fp
}

func cloneFingerprint(fp model.Fingerprint) model.Fingerprint {
	clone := fp
	clone.Keywords = make(map[string]float64, len(fp.Keywords))
	for term, weight := range fp.Keywords {
		clone.Keywords[term] = weight
	}
	return clone
}
