// Package hashing implements a local, fully deterministic embedder based on
// signed feature hashing. It needs no external model or corpus pass, which
// makes it the default for offline runs and tests. Texts sharing vocabulary
// land close in cosine space, which is all the recommendation core needs.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"recommender/internal/domain"
)

// DefaultDimensions matches the footprint of small sentence-transformer
// models so either embedder can back the same schema.
const DefaultDimensions = 384

// Embedder hashes term frequencies into a fixed number of signed buckets
// and L2-normalizes the result. It is stateless per call and safe for
// concurrent use.
type Embedder struct {
	dimensions   int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates a hashing embedder with the given dimensionality.
// Non-positive values fall back to DefaultDimensions.
func NewEmbedder(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{
		dimensions:   dimensions,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Dimensions returns the dimensionality of the produced vectors.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Embed computes the signed-hashing embedding for the given text.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrEncoding)
	}
	tokens := e.tokenize(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens in %q", domain.ErrEncoding, text)
	}

	vec := make([]float64, e.dimensions)
	total := float64(len(tokens))
	for _, tok := range tokens {
		bucket, sign := e.hash(tok)
		vec[bucket] += sign / total
	}

	// L2 normalize
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// hash maps a token to a bucket index and a sign. The sign bit halves the
// chance that two colliding tokens reinforce each other.
func (e *Embedder) hash(token string) (int, float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	sum := h.Sum64()
	bucket := int(sum % uint64(e.dimensions))
	if sum&(1<<63) != 0 {
		return bucket, -1
	}
	return bucket, 1
}

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
