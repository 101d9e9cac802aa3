package memory

import (
	"context"
	"errors"
	"testing"

	"recommender/internal/domain"
)

func testSchema(name string, dims int) domain.IndexSchema {
	return domain.IndexSchema{Name: name, VectorField: "vec", Dimensions: dims}
}

func TestEnsureIndexIdempotent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := s.EnsureIndex(ctx, testSchema("items", 3)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.EnsureIndex(ctx, testSchema("items", 3)); err != nil {
		t.Fatalf("re-create same schema: %v", err)
	}
	if err := s.EnsureIndex(ctx, testSchema("items", 4)); !errors.Is(err, domain.ErrSchemaConflict) {
		t.Fatalf("expected ErrSchemaConflict on dims change, got %v", err)
	}
}

func TestUpsertReplacesDocument(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := s.EnsureIndex(ctx, testSchema("items", 2)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Upsert(ctx, "items", "a", map[string]any{"vec": []float64{1, 0}, "language": "en"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert(ctx, "items", "a", map[string]any{"vec": []float64{0, 1}, "language": "fr"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	doc, found, err := s.Get(ctx, "items", "a")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if doc["language"] != "fr" {
		t.Errorf("expected full replace, got %v", doc)
	}
}

func TestUpsertRejectsWrongDimensions(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := s.EnsureIndex(ctx, testSchema("items", 2)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Upsert(ctx, "items", "a", map[string]any{"vec": []float64{1, 2, 3}}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestGetAbsent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := s.EnsureIndex(ctx, testSchema("items", 2)); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, found, err := s.Get(ctx, "items", "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Error("expected found=false")
	}
}

func TestDeleteIndexAbsentIsNoop(t *testing.T) {
	s := NewStore()
	if err := s.DeleteIndex(context.Background(), "nothing"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}

func TestVectorSearchOrderingAndFilters(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := s.EnsureIndex(ctx, testSchema("items", 2)); err != nil {
		t.Fatalf("create: %v", err)
	}
	docs := map[string]map[string]any{
		"close-en":   {"vec": []float64{1, 0.1}, "language": "en"},
		"far-en":     {"vec": []float64{0.1, 1}, "language": "en"},
		"closest-fr": {"vec": []float64{1, 0}, "language": "fr"},
	}
	for id, doc := range docs {
		if err := s.Upsert(ctx, "items", id, doc); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	hits, err := s.VectorSearch(ctx, domain.VectorQuery{
		Index:   "items",
		Field:   "vec",
		Vector:  []float64{1, 0},
		K:       10,
		Filters: []domain.Filter{{Field: "language", Value: "en"}},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 filtered hits, got %d", len(hits))
	}
	if hits[0].ID != "close-en" {
		t.Errorf("expected close-en ranked first, got %s", hits[0].ID)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("scores not non-increasing: %v", hits)
		}
	}
}

func TestVectorSearchTruncatesToK(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := s.EnsureIndex(ctx, testSchema("items", 2)); err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		if err := s.Upsert(ctx, "items", id, map[string]any{"vec": []float64{1, 0}}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	hits, err := s.VectorSearch(ctx, domain.VectorQuery{Index: "items", Field: "vec", Vector: []float64{1, 0}, K: 2})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("expected 2 hits, got %d", len(hits))
	}
}
