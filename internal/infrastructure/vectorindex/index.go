// Package vectorindex provides the in-memory similarity index over the
// recipe corpus: parallel sequences of (id, text, metadata, embedding)
// searched with a linear cosine scan. The corpus is small and bounded, so
// no inverted index or ANN structure is carried.
package vectorindex

import (
	"sort"

	"github.com/google/uuid"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/embedding"
)

// Entry is one indexed document.
type Entry struct {
	ID        string
	Text      string
	Metadata  Metadata
	Embedding []float32
}

// Hit is one search result, ordered by descending similarity.
type Hit struct {
	ID         string
	Text       string
	Metadata   Metadata
	Similarity float64
	Distance   float64
}

// Index is the append-only in-memory store. All mutation happens during
// the pipeline build phase; Search is read-only and safe for concurrent
// use once building has completed.
type Index struct {
	dimension int
	entries   []Entry
}

// New creates an empty index with a fixed embedding dimension.
func New(dimension int) *Index {
	if dimension <= 0 {
		dimension = 1
	}
	return &Index{dimension: dimension}
}

// Add appends documents to the index, assigning a fresh id per entry.
// Embeddings are conformed to the index dimension by truncation or
// zero-padding; missing metadata entries become empty maps. This layer
// never reorders or deduplicates.
func (x *Index) Add(texts []string, metadatas []Metadata, embeddings [][]float32) []string {
	ids := make([]string, len(texts))
	for i, text := range texts {
		var meta Metadata
		if i < len(metadatas) && metadatas[i] != nil {
			meta = metadatas[i]
		} else {
			meta = Metadata{}
		}

		var vec []float32
		if i < len(embeddings) {
			vec = embedding.Conform(embeddings[i], x.dimension)
		} else {
			vec = make([]float32, x.dimension)
		}

		id := uuid.NewString()
		ids[i] = id
		x.entries = append(x.entries, Entry{
			ID:        id,
			Text:      text,
			Metadata:  meta,
			Embedding: vec,
		})
	}
	return ids
}

// Search scans every stored embedding, applies the filter, and returns up
// to k hits sorted by descending similarity with Distance = 1-similarity.
// An empty index or an empty filtered set yields an empty slice, never an
// error.
func (x *Index) Search(query []float32, k int, filter Filter) []Hit {
	if k <= 0 || len(x.entries) == 0 {
		return []Hit{}
	}

	query = embedding.Conform(query, x.dimension)

	hits := make([]Hit, 0, len(x.entries))
	for _, entry := range x.entries {
		if !filter.Matches(entry.Metadata) {
			continue
		}
		sim := embedding.Cosine(query, entry.Embedding)
		hits = append(hits, Hit{
			ID:         entry.ID,
			Text:       entry.Text,
			Metadata:   entry.Metadata,
			Similarity: sim,
			Distance:   1 - sim,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Size returns the number of indexed documents.
func (x *Index) Size() int {
	return len(x.entries)
}

// Dimension returns the fixed embedding dimension.
func (x *Index) Dimension() int {
	return x.dimension
}
