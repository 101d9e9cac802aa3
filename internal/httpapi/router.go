// Package httpapi is the thin HTTP transport over the recommendation core.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"recommender/internal/domain"
)

// Recommender is the service port the transport depends on.
type Recommender interface {
	IndexProfile(ctx context.Context, id string, p domain.LearnerProfile) error
	IndexExercise(ctx context.Context, id string, e domain.Exercise) error
	Recommend(ctx context.Context, id string, k int) ([]domain.Recommendation, error)
}

// Server bundles the service port with the transport's logger.
type Server struct {
	svc Recommender
	log *slog.Logger
}

// NewRouter builds the chi router with all routes and middleware attached.
func NewRouter(svc Recommender, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", s.handleHealth)
	r.Post("/users/{id}", s.handleIndexProfile)
	r.Post("/exercises/{id}", s.handleIndexExercise)
	r.Get("/recommendations/{id}", s.handleRecommend)
	r.Post("/demo/seed", s.handleSeed)
	return r
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// requestID tags every request with a uuid for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		id, _ := r.Context().Value(requestIDKey).(string)
		s.log.Info("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// cors mirrors the demo's allow-everything policy.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
