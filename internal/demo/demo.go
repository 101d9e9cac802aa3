// Package demo seeds the sample dataset: one English learner weak in past
// tense and three exercises covering the past tense, food, and travel
// clusters.
package demo

import (
	"context"
	"fmt"

	"recommender/internal/domain"
)

// LearnerID is the id of the seeded demo learner.
const LearnerID = "u_demo"

// Indexer is the subset of the recommendation service the seeder needs.
type Indexer interface {
	IndexProfile(ctx context.Context, id string, p domain.LearnerProfile) error
	IndexExercise(ctx context.Context, id string, e domain.Exercise) error
}

// Seed writes the demo learner and exercises through the given indexer.
func Seed(ctx context.Context, idx Indexer) error {
	learner := domain.LearnerProfile{
		Languages:    []string{"en"},
		Level:        3,
		Progress:     domain.CourseProgress{UnitsCompleted: 5, StreakDays: 10},
		ErrorProfile: domain.ErrorProfile{GrammarTensePast: 0.8, VocabularyFood: 0.2},
	}
	if err := idx.IndexProfile(ctx, LearnerID, learner); err != nil {
		return fmt.Errorf("seed learner: %w", err)
	}

	exercises := []struct {
		id string
		ex domain.Exercise
	}{
		{"ex_past", domain.Exercise{
			Language: "en", CourseID: "en_base", UnitID: "u_past",
			SkillTags: []string{"grammar", "past_tense"}, Difficulty: 3,
			UsageStats: domain.UsageStats{GlobalSuccessRate: 0.62, TimesSolved: 150000},
		}},
		{"ex_food", domain.Exercise{
			Language: "en", CourseID: "en_base", UnitID: "u_food",
			SkillTags: []string{"vocabulary", "food"}, Difficulty: 2,
			UsageStats: domain.UsageStats{GlobalSuccessRate: 0.75, TimesSolved: 210000},
		}},
		{"ex_travel", domain.Exercise{
			Language: "en", CourseID: "en_base", UnitID: "u_travel",
			SkillTags: []string{"vocabulary", "travel"}, Difficulty: 3,
			UsageStats: domain.UsageStats{GlobalSuccessRate: 0.70, TimesSolved: 100000},
		}},
	}
	for _, item := range exercises {
		if err := idx.IndexExercise(ctx, item.id, item.ex); err != nil {
			return fmt.Errorf("seed exercise %s: %w", item.id, err)
		}
	}
	return nil
}
