package embedding

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEncoder fronts query encoding with an LRU cache. The vocabulary is
// frozen, so a cached vector never goes stale. Vectors are copied on the
// way out to keep cached entries immutable.
type CachedEncoder struct {
	vocab *Vocabulary
	cache *lru.Cache[string, []float32]
}

// NewCachedEncoder wraps a fitted vocabulary with an LRU of the given
// capacity. Capacities below 1 fall back to a single-entry cache.
func NewCachedEncoder(vocab *Vocabulary, capacity int) *CachedEncoder {
	if capacity < 1 {
		capacity = 1
	}
	// lru.New only fails on non-positive sizes, which are clamped above.
	cache, _ := lru.New[string, []float32](capacity)
	return &CachedEncoder{
		vocab: vocab,
		cache: cache,
	}
}

// Encode returns the embedding for text, serving repeated queries from the
// cache.
func (e *CachedEncoder) Encode(text string) []float32 {
	if vec, ok := e.cache.Get(text); ok {
		out := make([]float32, len(vec))
		copy(out, vec)
		return out
	}
	vec := e.vocab.Encode(text)
	e.cache.Add(text, vec)
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}

// Vocabulary returns the underlying frozen vocabulary.
func (e *CachedEncoder) Vocabulary() *Vocabulary {
	return e.vocab
}

// Len returns the number of cached query embeddings.
func (e *CachedEncoder) Len() int {
	return e.cache.Len()
}
