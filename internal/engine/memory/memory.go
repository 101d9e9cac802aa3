// Package memory is an in-process DocumentStore with brute-force cosine
// scoring. It backs tests and offline runs where no Elasticsearch is
// around; scores are exact cosine similarity rather than an engine scale.
package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"recommender/internal/domain"
)

type index struct {
	schema domain.IndexSchema
	docs   map[string]map[string]any
}

// Store holds documents per index behind a mutex. Documents are stored by
// reference; callers must not mutate a document after handing it over.
type Store struct {
	mu      sync.RWMutex
	indices map[string]*index
}

func NewStore() *Store {
	return &Store{indices: make(map[string]*index)}
}

// EnsureIndex creates the index if missing. Re-creating with a different
// dimensionality is a schema conflict, matching engine behavior.
func (s *Store) EnsureIndex(_ context.Context, schema domain.IndexSchema) error {
	if schema.Dimensions <= 0 {
		return fmt.Errorf("%w: invalid dimensions %d for %s", domain.ErrSchemaConflict, schema.Dimensions, schema.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.indices[schema.Name]; ok {
		if existing.schema.Dimensions != schema.Dimensions {
			return fmt.Errorf("%w: index %s exists with %d dims, requested %d",
				domain.ErrSchemaConflict, schema.Name, existing.schema.Dimensions, schema.Dimensions)
		}
		return nil
	}
	s.indices[schema.Name] = &index{schema: schema, docs: make(map[string]map[string]any)}
	return nil
}

// DeleteIndex removes an index and all its documents; absent is a no-op.
func (s *Store) DeleteIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indices, name)
	return nil
}

// Upsert stores a document with full-replace semantics.
func (s *Store) Upsert(_ context.Context, indexName, id string, doc map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indices[indexName]
	if !ok {
		return fmt.Errorf("%w: index %s does not exist", domain.ErrEngineUnavailable, indexName)
	}
	if vec, ok := doc[idx.schema.VectorField].([]float64); ok {
		if len(vec) != idx.schema.Dimensions {
			return fmt.Errorf("vector dimension mismatch in %s: got %d, want %d",
				indexName, len(vec), idx.schema.Dimensions)
		}
	}
	idx.docs[id] = doc
	return nil
}

// Get returns a stored document, reporting absence via the found flag.
func (s *Store) Get(_ context.Context, indexName, id string) (map[string]any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indices[indexName]
	if !ok {
		return nil, false, nil
	}
	doc, ok := idx.docs[id]
	return doc, ok, nil
}

// VectorSearch scores every matching document against the query vector and
// returns the top K, score descending. The candidate pool is irrelevant
// here because scoring is exhaustive, not approximate.
func (s *Store) VectorSearch(_ context.Context, q domain.VectorQuery) ([]domain.Hit, error) {
	if len(q.Vector) == 0 {
		return nil, errors.New("empty query vector")
	}
	k := q.K
	if k <= 0 {
		k = 5
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indices[q.Index]
	if !ok {
		return nil, fmt.Errorf("%w: index %s does not exist", domain.ErrEngineUnavailable, q.Index)
	}

	hits := make([]domain.Hit, 0, len(idx.docs))
	for id, doc := range idx.docs {
		if !matchesFilters(doc, q.Filters) {
			continue
		}
		vec, ok := doc[q.Field].([]float64)
		if !ok {
			continue
		}
		hits = append(hits, domain.Hit{ID: id, Score: cosine(q.Vector, vec), Source: doc})
	}
	// Ties break on id for deterministic ordering.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func matchesFilters(doc map[string]any, filters []domain.Filter) bool {
	for _, f := range filters {
		v, ok := doc[f.Field].(string)
		if !ok || v != f.Value {
			return false
		}
	}
	return true
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	dot, na, nb := 0.0, 0.0, 0.0
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
