// Package service holds the recommendation core: indexing profiles and
// exercises with freshly computed embeddings, and retrieving the exercises
// nearest to a learner's stored vector.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"recommender/internal/domain"
	"recommender/internal/schema"
	"recommender/internal/textrepr"
)

const defaultK = 5

// Recommender composes the text builder, the embedder, and the document
// store. Each call is a self-contained sequence of one text build, one
// embedding call, and one engine call; failures propagate unmodified and
// commit no partial state.
type Recommender struct {
	embedder domain.Embedder
	store    domain.DocumentStore
	log      *slog.Logger
}

func New(embedder domain.Embedder, store domain.DocumentStore, log *slog.Logger) *Recommender {
	if log == nil {
		log = slog.Default()
	}
	return &Recommender{embedder: embedder, store: store, log: log}
}

// EnsureIndices declares both indices with the embedder's dimensionality.
// A schema conflict here is fatal: continuing without the indices would
// fail every later write.
func (r *Recommender) EnsureIndices(ctx context.Context) error {
	dims := r.embedder.Dimensions()
	if err := r.store.EnsureIndex(ctx, schema.Profiles(dims)); err != nil {
		return fmt.Errorf("ensure %s: %w", schema.ProfilesIndex, err)
	}
	if err := r.store.EnsureIndex(ctx, schema.Exercises(dims)); err != nil {
		return fmt.Errorf("ensure %s: %w", schema.ExercisesIndex, err)
	}
	return nil
}

// Reset destroys both indices and recreates them empty. Used for
// re-initialization, not steady-state request handling.
func (r *Recommender) Reset(ctx context.Context) error {
	for _, name := range []string{schema.ProfilesIndex, schema.ExercisesIndex} {
		if err := r.store.DeleteIndex(ctx, name); err != nil {
			return fmt.Errorf("delete %s: %w", name, err)
		}
	}
	r.log.Info("indices reset")
	return r.EnsureIndices(ctx)
}

// IndexProfile embeds the profile's text representation and writes the
// full document keyed by id. A write with a partial profile overwrites the
// stored document; it never merges.
func (r *Recommender) IndexProfile(ctx context.Context, id string, p domain.LearnerProfile) error {
	vec, err := r.embedder.Embed(ctx, textrepr.DescribeProfile(p))
	if err != nil {
		return fmt.Errorf("embed profile %s: %w", id, err)
	}
	doc := map[string]any{
		"learner_id": id,
		"languages":  p.Languages,
		"level":      p.Level,
		"progress": map[string]any{
			"units_completed": p.Progress.UnitsCompleted,
			"streak_days":     p.Progress.StreakDays,
		},
		"error_profile": map[string]any{
			"grammar_tense_past": p.ErrorProfile.GrammarTensePast,
			"vocabulary_food":    p.ErrorProfile.VocabularyFood,
		},
		schema.ProfileVectorField: vec,
	}
	if err := r.store.Upsert(ctx, schema.ProfilesIndex, id, doc); err != nil {
		return fmt.Errorf("upsert profile %s: %w", id, err)
	}
	r.log.Debug("profile indexed", "learner_id", id, "languages", p.Languages)
	return nil
}

// IndexExercise embeds the exercise's text representation and writes the
// full document keyed by id.
func (r *Recommender) IndexExercise(ctx context.Context, id string, e domain.Exercise) error {
	vec, err := r.embedder.Embed(ctx, textrepr.DescribeExercise(e))
	if err != nil {
		return fmt.Errorf("embed exercise %s: %w", id, err)
	}
	doc := map[string]any{
		"exercise_id": id,
		"language":    e.Language,
		"course_id":   e.CourseID,
		"unit_id":     e.UnitID,
		"skill_tags":  e.SkillTags,
		"difficulty":  e.Difficulty,
		"usage_stats": map[string]any{
			"global_success_rate": e.UsageStats.GlobalSuccessRate,
			"times_solved":        e.UsageStats.TimesSolved,
		},
		schema.ExerciseVectorField: vec,
	}
	if err := r.store.Upsert(ctx, schema.ExercisesIndex, id, doc); err != nil {
		return fmt.Errorf("upsert exercise %s: %w", id, err)
	}
	r.log.Debug("exercise indexed", "exercise_id", id, "skill_tags", e.SkillTags)
	return nil
}

// Recommend returns the top k exercises nearest to the learner's stored
// embedding, hard-filtered to the learner's primary language when one
// exists. An unknown learner yields an empty list, not an error.
func (r *Recommender) Recommend(ctx context.Context, learnerID string, k int) ([]domain.Recommendation, error) {
	if k <= 0 {
		k = defaultK
	}
	doc, found, err := r.store.Get(ctx, schema.ProfilesIndex, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", learnerID, err)
	}
	if !found {
		r.log.Debug("learner not found", "learner_id", learnerID)
		return nil, nil
	}

	vector := asFloats(doc[schema.ProfileVectorField])
	if len(vector) == 0 {
		return nil, fmt.Errorf("profile %s has no stored embedding", learnerID)
	}

	q := domain.VectorQuery{
		Index:         schema.ExercisesIndex,
		Field:         schema.ExerciseVectorField,
		Vector:        vector,
		K:             k,
		NumCandidates: candidatePool(k),
	}
	if langs := asStrings(doc["languages"]); len(langs) > 0 {
		q.Filters = []domain.Filter{{Field: "language", Value: langs[0]}}
	}

	hits, err := r.store.VectorSearch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search exercises for %s: %w", learnerID, err)
	}
	if len(hits) > k {
		hits = hits[:k]
	}

	recs := make([]domain.Recommendation, 0, len(hits))
	for _, h := range hits {
		rec := domain.Recommendation{
			ExerciseID: h.ID,
			Score:      h.Score,
			Language:   asString(h.Source["language"]),
			Difficulty: asInt(h.Source["difficulty"]),
			SkillTags:  asStrings(h.Source["skill_tags"]),
		}
		if id := asString(h.Source["exercise_id"]); id != "" {
			rec.ExerciseID = id
		}
		recs = append(recs, rec)
	}
	r.log.Debug("recommendations computed", "learner_id", learnerID, "k", k, "returned", len(recs))
	return recs, nil
}

// candidatePool over-fetches before the language filter narrows results,
// keeping recall headroom.
func candidatePool(k int) int {
	if pool := 5 * k; pool > 50 {
		return pool
	}
	return 50
}

// The engine returns JSON-decoded documents, so stored values arrive as
// []any and float64; the memory engine hands back the original Go values.
// These helpers accept both.

func asFloats(v any) []float64 {
	switch vec := v.(type) {
	case []float64:
		return vec
	case []any:
		out := make([]float64, 0, len(vec))
		for _, e := range vec {
			f, ok := e.(float64)
			if !ok {
				return nil
			}
			out = append(out, f)
		}
		return out
	default:
		return nil
	}
}

func asStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil
			}
			out = append(out, str)
		}
		return out
	default:
		return nil
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
