// Package schema declares the stored shape of each indexed entity type.
// Vector dimensionality is bound to the live embedder at startup rather
// than hardcoded; changing it requires dropping and recreating the indices.
package schema

import "recommender/internal/domain"

// Index and vector field names shared by every engine implementation.
const (
	ProfilesIndex  = "learner_profiles"
	ExercisesIndex = "exercise_items"

	ProfileVectorField  = "learning_embedding"
	ExerciseVectorField = "content_embedding"
)

// Profiles declares the learner_profiles index with the given embedding
// dimensionality.
func Profiles(dimensions int) domain.IndexSchema {
	return domain.IndexSchema{
		Name:        ProfilesIndex,
		VectorField: ProfileVectorField,
		Dimensions:  dimensions,
		Mapping: map[string]any{
			"mappings": map[string]any{
				"properties": map[string]any{
					"learner_id": map[string]any{"type": "keyword"},
					"languages":  map[string]any{"type": "keyword"},
					"level":      map[string]any{"type": "integer"},
					"progress": map[string]any{
						"properties": map[string]any{
							"units_completed": map[string]any{"type": "integer"},
							"streak_days":     map[string]any{"type": "integer"},
						},
					},
					"error_profile": map[string]any{
						"properties": map[string]any{
							"grammar_tense_past": map[string]any{"type": "float"},
							"vocabulary_food":    map[string]any{"type": "float"},
						},
					},
					ProfileVectorField: denseVector(dimensions),
				},
			},
		},
	}
}

// Exercises declares the exercise_items index with the given embedding
// dimensionality.
func Exercises(dimensions int) domain.IndexSchema {
	return domain.IndexSchema{
		Name:        ExercisesIndex,
		VectorField: ExerciseVectorField,
		Dimensions:  dimensions,
		Mapping: map[string]any{
			"mappings": map[string]any{
				"properties": map[string]any{
					"exercise_id": map[string]any{"type": "keyword"},
					"language":    map[string]any{"type": "keyword"},
					"course_id":   map[string]any{"type": "keyword"},
					"unit_id":     map[string]any{"type": "keyword"},
					"skill_tags":  map[string]any{"type": "keyword"},
					"difficulty":  map[string]any{"type": "integer"},
					"usage_stats": map[string]any{
						"properties": map[string]any{
							"global_success_rate": map[string]any{"type": "float"},
							"times_solved":        map[string]any{"type": "long"},
						},
					},
					ExerciseVectorField: denseVector(dimensions),
				},
			},
		},
	}
}

func denseVector(dimensions int) map[string]any {
	return map[string]any{
		"type":       "dense_vector",
		"dims":       dimensions,
		"index":      true,
		"similarity": "cosine",
	}
}
