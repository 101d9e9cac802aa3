package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"recommender/internal/domain"
	"recommender/internal/embedding/hashing"
	"recommender/internal/engine/memory"
	"recommender/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	rec := service.New(hashing.NewEmbedder(512), memory.NewStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := rec.EnsureIndices(context.Background()); err != nil {
		t.Fatalf("EnsureIndices: %v", err)
	}
	srv := httptest.NewServer(NewRouter(rec, slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestSeedAndRecommend(t *testing.T) {
	srv := newTestServer(t)

	if resp := post(t, srv.URL+"/demo/seed", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("seed returned %d", resp.StatusCode)
	}

	resp := get(t, srv.URL+"/recommendations/u_demo?k=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recommend returned %d", resp.StatusCode)
	}
	var recs []domain.Recommendation
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].ExerciseID != "ex_past" {
		t.Errorf("expected ex_past first, got %s", recs[0].ExerciseID)
	}
	for _, r := range recs {
		if r.Language != "en" {
			t.Errorf("expected en recommendations, got %v", r)
		}
	}
}

func TestIndexProfileEndpoint(t *testing.T) {
	srv := newTestServer(t)
	body := `{
		"languages": ["en"],
		"level": 2,
		"progress": {"units_completed": 1, "streak_days": 4},
		"error_profile": {"grammar_tense_past": 0.3, "vocabulary_food": 0.6}
	}`
	resp := post(t, srv.URL+"/users/u42", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["learner_id"] != "u42" {
		t.Errorf("unexpected response %v", out)
	}
}

func TestUnknownLearnerReturnsEmptyList(t *testing.T) {
	srv := newTestServer(t)
	resp := get(t, srv.URL+"/recommendations/nonexistent?k=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var recs []domain.Recommendation
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty list, got %v", recs)
	}
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct {
		name string
		do   func() *http.Response
	}{
		{"negative level", func() *http.Response {
			return post(t, srv.URL+"/users/u1", `{"languages":["en"],"level":-1}`)
		}},
		{"score out of range", func() *http.Response {
			return post(t, srv.URL+"/users/u1", `{"languages":["en"],"level":1,"error_profile":{"grammar_tense_past":1.5}}`)
		}},
		{"missing exercise language", func() *http.Response {
			return post(t, srv.URL+"/exercises/ex1", `{"difficulty":1}`)
		}},
		{"bad k", func() *http.Response {
			return get(t, srv.URL+"/recommendations/u1?k=zero")
		}},
		{"zero k", func() *http.Response {
			return get(t, srv.URL+"/recommendations/u1?k=0")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if resp := tc.do(); resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/recommendations/u1", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)
	resp := get(t, srv.URL+"/healthz")
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header")
	}
}
