package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"recommender/internal/demo"
	"recommender/internal/domain"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndexProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p domain.LearnerProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode profile: %w", err))
		return
	}
	if err := validateProfile(p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.svc.IndexProfile(r.Context(), id, p); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "learner profile indexed", "learner_id": id})
}

func (s *Server) handleIndexExercise(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var e domain.Exercise
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode exercise: %w", err))
		return
	}
	if err := validateExercise(e); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.svc.IndexExercise(r.Context(), id, e); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "exercise indexed", "exercise_id": id})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	k := 5
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("k must be a positive integer, got %q", raw))
			return
		}
		k = parsed
	}
	recs, err := s.svc.Recommend(r.Context(), id, k)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if recs == nil {
		// Unknown learner and zero matches are both an empty list.
		recs = []domain.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if err := demo.Seed(r.Context(), s.svc); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "demo data seeded", "learner_id": demo.LearnerID})
}

func validateProfile(p domain.LearnerProfile) error {
	if p.Level < 0 {
		return errors.New("level must be >= 0")
	}
	if p.Progress.UnitsCompleted < 0 || p.Progress.StreakDays < 0 {
		return errors.New("progress counters must be >= 0")
	}
	for name, score := range map[string]float64{
		"grammar_tense_past": p.ErrorProfile.GrammarTensePast,
		"vocabulary_food":    p.ErrorProfile.VocabularyFood,
	} {
		if score < 0 || score > 1 {
			return fmt.Errorf("error_profile.%s must be in [0, 1]", name)
		}
	}
	for _, lang := range p.Languages {
		if lang == "" {
			return errors.New("languages must not contain empty entries")
		}
	}
	return nil
}

func validateExercise(e domain.Exercise) error {
	if e.Language == "" {
		return errors.New("language is required")
	}
	if e.Difficulty < 0 {
		return errors.New("difficulty must be >= 0")
	}
	if e.UsageStats.GlobalSuccessRate < 0 || e.UsageStats.GlobalSuccessRate > 1 {
		return errors.New("usage_stats.global_success_rate must be in [0, 1]")
	}
	if e.UsageStats.TimesSolved < 0 {
		return errors.New("usage_stats.times_solved must be >= 0")
	}
	return nil
}

// writeServiceError maps the core error taxonomy to transport statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	id, _ := r.Context().Value(requestIDKey).(string)
	s.log.Error("request failed", "request_id", id, "path", r.URL.Path, "error", err)
	switch {
	case errors.Is(err, domain.ErrEncoding):
		writeError(w, http.StatusBadGateway, err)
	case errors.Is(err, domain.ErrEngineUnavailable):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
