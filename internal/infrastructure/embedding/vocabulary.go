// Package embedding implements the bag-of-words text embedder behind the
// recipe search index. The lifecycle is two-phase: Fit builds an immutable
// frequency-ranked vocabulary from the corpus once, then Encode is a pure
// function over that frozen vocabulary. A pipeline instance must never
// re-fit after the build phase.
package embedding

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Vocabulary is a frozen frequency-ranked word index. The embedding
// dimension equals the configured maximum vocabulary size; corpora with
// fewer distinct words produce trailing zero components.
type Vocabulary struct {
	dimension int
	index     map[string]int
	words     []string
}

// Fit builds a vocabulary from the corpus, keeping the top-dimension most
// frequent tokens. Ties are broken alphabetically so identical corpora
// always yield identical vocabularies.
func Fit(texts []string, dimension int) *Vocabulary {
	if dimension <= 0 {
		dimension = 1
	}

	freq := make(map[string]int)
	for _, text := range texts {
		for _, word := range Tokenize(text) {
			freq[word]++
		}
	}

	words := make([]string, 0, len(freq))
	for word := range freq {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > dimension {
		words = words[:dimension]
	}

	index := make(map[string]int, len(words))
	for i, word := range words {
		index[word] = i
	}

	return &Vocabulary{
		dimension: dimension,
		index:     index,
		words:     words,
	}
}

// Dimension returns the fixed embedding dimension.
func (v *Vocabulary) Dimension() int {
	return v.dimension
}

// Size returns the number of words actually held, at most Dimension.
func (v *Vocabulary) Size() int {
	return len(v.words)
}

// Encode converts text into an L2-normalized term-count vector over the
// vocabulary. Out-of-vocabulary words are silently ignored; text with no
// known words encodes to the zero vector.
func (v *Vocabulary) Encode(text string) []float32 {
	vec := make([]float32, v.dimension)
	for _, word := range Tokenize(text) {
		if i, ok := v.index[word]; ok {
			vec[i]++
		}
	}

	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		inv := 1 / math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) * inv)
		}
	}
	return vec
}

// EncodeBatch encodes each text in order.
func (v *Vocabulary) EncodeBatch(texts []string) [][]float32 {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = v.Encode(text)
	}
	return vecs
}

// Tokenize lowercases text and splits it into alphanumeric tokens.
// Every non-alphanumeric rune acts as a separator.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Cosine returns the cosine similarity of two equal-length vectors,
// defined as 0 when either vector has zero norm. Callers reconcile
// dimension mismatches with Conform before comparing.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, x := range a {
		normA += float64(x) * float64(x)
	}
	for _, x := range b {
		normB += float64(x) * float64(x)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Conform reconciles a vector to the given dimension by truncating or
// zero-padding. Mismatched dimensions are never an error.
func Conform(vec []float32, dimension int) []float32 {
	if len(vec) == dimension {
		return vec
	}
	out := make([]float32, dimension)
	copy(out, vec)
	return out
}
