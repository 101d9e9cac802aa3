// Package elastic is a minimal REST client for Elasticsearch 8, covering
// the five operations the recommender needs: idempotent index create,
// index delete, document upsert, point lookup, and knn search with term
// filters.
package elastic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"recommender/internal/domain"
)

// Store talks to a single Elasticsearch cluster over HTTP.
type Store struct {
	url      string
	username string
	password string
	apiKey   string
	client   *http.Client
}

// Config contains connection details for an Elasticsearch cluster.
// APIKey takes precedence over basic auth when both are set.
type Config struct {
	URL      string
	Username string
	Password string
	APIKey   string
	Timeout  time.Duration
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Store{
		url:      strings.TrimRight(cfg.URL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// EnsureIndex creates the index with its mapping. An index that already
// exists is fine; any other creation failure is a schema conflict and the
// caller must not continue with a missing index.
func (s *Store) EnsureIndex(ctx context.Context, schema domain.IndexSchema) error {
	status, body, err := s.do(ctx, http.MethodPut, fmt.Sprintf("%s/%s", s.url, schema.Name), schema.Mapping)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	if status < 300 {
		return nil
	}
	if bytes.Contains(body, []byte("resource_already_exists_exception")) {
		return nil
	}
	return fmt.Errorf("%w: create %s returned %d: %s", domain.ErrSchemaConflict, schema.Name, status, body)
}

// DeleteIndex removes the index and all its documents; 404 is a no-op.
func (s *Store) DeleteIndex(ctx context.Context, name string) error {
	status, body, err := s.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%s", s.url, name), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	if status < 300 || status == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("delete %s returned %d: %s", name, status, body)
}

// Upsert writes a document with full-replace semantics. refresh=true makes
// the write visible to the next search, matching the synchronous contract.
func (s *Store) Upsert(ctx context.Context, index, id string, doc map[string]any) error {
	status, body, err := s.do(ctx, http.MethodPut, fmt.Sprintf("%s/%s/_doc/%s?refresh=true", s.url, index, id), doc)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	if status >= 300 {
		return fmt.Errorf("upsert %s/%s returned %d: %s", index, id, status, body)
	}
	return nil
}

// Get fetches a document by id, reporting absence via the found flag.
func (s *Store) Get(ctx context.Context, index, id string) (map[string]any, bool, error) {
	status, body, err := s.do(ctx, http.MethodGet, fmt.Sprintf("%s/%s/_doc/%s", s.url, index, id), nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	if status == http.StatusNotFound {
		return nil, false, nil
	}
	if status >= 300 {
		return nil, false, fmt.Errorf("get %s/%s returned %d: %s", index, id, status, body)
	}
	var out struct {
		Found  bool           `json:"found"`
		Source map[string]any `json:"_source"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, false, fmt.Errorf("decode get %s/%s: %w", index, id, err)
	}
	return out.Source, out.Found, nil
}

// VectorSearch runs a knn query with optional term filters. Elasticsearch
// returns hits pre-sorted by score descending; they are passed through
// untouched.
func (s *Store) VectorSearch(ctx context.Context, q domain.VectorQuery) ([]domain.Hit, error) {
	req := map[string]any{
		"size": q.K,
		"knn": map[string]any{
			"field":          q.Field,
			"query_vector":   q.Vector,
			"k":              q.K,
			"num_candidates": q.NumCandidates,
		},
	}
	if len(q.Filters) > 0 {
		filters := make([]map[string]any, 0, len(q.Filters))
		for _, f := range q.Filters {
			filters = append(filters, map[string]any{"term": map[string]any{f.Field: f.Value}})
		}
		req["query"] = map[string]any{"bool": map[string]any{"filter": filters}}
	}

	status, body, err := s.do(ctx, http.MethodPost, fmt.Sprintf("%s/%s/_search", s.url, q.Index), req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	if status >= 300 {
		return nil, fmt.Errorf("search %s returned %d: %s", q.Index, status, body)
	}
	var out struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Score  float64        `json:"_score"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode search %s: %w", q.Index, err)
	}
	hits := make([]domain.Hit, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		hits = append(hits, domain.Hit{ID: h.ID, Score: h.Score, Source: h.Source})
	}
	return hits, nil
}

// do performs one JSON request and returns the status and raw body.
// Transport errors are returned as-is for the caller to classify.
func (s *Store) do(ctx context.Context, method, url string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "ApiKey "+s.apiKey)
	} else if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, payload, nil
}
