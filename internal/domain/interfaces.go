package domain

import "context"

// Embedder converts free text into a fixed-length numeric vector.
// Implementations are initialized once at startup and are safe for
// concurrent use afterwards.
type Embedder interface {
	Name() string
	Dimensions() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// IndexSchema declares the stored shape of one entity type, including the
// dense vector field and its dimensionality. The mapping is engine-specific
// configuration passed through on index creation.
type IndexSchema struct {
	Name        string
	VectorField string
	Dimensions  int
	Mapping     map[string]any
}

// Filter is an exact-match constraint applied after the vector search.
type Filter struct {
	Field string
	Value string
}

// VectorQuery describes one approximate nearest-neighbor search.
// NumCandidates is the over-fetched pool considered before filters and
// truncation narrow the result down to K.
type VectorQuery struct {
	Index         string
	Field         string
	Vector        []float64
	K             int
	NumCandidates int
	Filters       []Filter
}

// Hit is a single search result with the engine's similarity score.
type Hit struct {
	ID     string
	Score  float64
	Source map[string]any
}

// DocumentStore is the external document/vector search engine.
//
// EnsureIndex is a no-op when the index already exists; DeleteIndex is a
// no-op when it does not. Upsert has full-replace semantics keyed by id.
// Get reports absence via the found flag rather than an error. VectorSearch
// returns hits sorted by score descending.
type DocumentStore interface {
	EnsureIndex(ctx context.Context, schema IndexSchema) error
	DeleteIndex(ctx context.Context, name string) error
	Upsert(ctx context.Context, index, id string, doc map[string]any) error
	Get(ctx context.Context, index, id string) (map[string]any, bool, error)
	VectorSearch(ctx context.Context, q VectorQuery) ([]Hit, error)
}
