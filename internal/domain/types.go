package domain

// CourseProgress tracks how far a learner has advanced in their course.
type CourseProgress struct {
	UnitsCompleted int `json:"units_completed"`
	StreakDays     int `json:"streak_days"`
}

// ErrorProfile holds normalized weakness scores in [0, 1].
// A missing category means no observed weakness (0.0).
type ErrorProfile struct {
	GrammarTensePast float64 `json:"grammar_tense_past"`
	VocabularyFood   float64 `json:"vocabulary_food"`
}

// LearnerProfile is the indexed representation of a learner.
// The embedding is derived from the other fields at write time and is
// never supplied by callers.
type LearnerProfile struct {
	Languages    []string       `json:"languages"`
	Level        int            `json:"level"`
	Progress     CourseProgress `json:"progress"`
	ErrorProfile ErrorProfile   `json:"error_profile"`
}

// PrimaryLanguage returns the first language in the profile, or "" if the
// profile has none. It is used as a hard retrieval filter.
func (p LearnerProfile) PrimaryLanguage() string {
	if len(p.Languages) == 0 {
		return ""
	}
	return p.Languages[0]
}

// UsageStats aggregates global solve statistics for an exercise.
type UsageStats struct {
	GlobalSuccessRate float64 `json:"global_success_rate"`
	TimesSolved       int64   `json:"times_solved"`
}

// Exercise is the indexed representation of a learning exercise.
type Exercise struct {
	Language   string     `json:"language"`
	CourseID   string     `json:"course_id"`
	UnitID     string     `json:"unit_id"`
	SkillTags  []string   `json:"skill_tags"`
	Difficulty int        `json:"difficulty"`
	UsageStats UsageStats `json:"usage_stats"`
}

// HasTag reports whether the exercise carries the given skill tag.
func (e Exercise) HasTag(tag string) bool {
	for _, t := range e.SkillTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Recommendation is a single ranked hit returned to the caller. It is
// ephemeral and never persisted. Score is the engine's similarity score,
// higher meaning more relevant.
type Recommendation struct {
	ExerciseID string   `json:"exercise_id"`
	Score      float64  `json:"score"`
	Language   string   `json:"language"`
	Difficulty int      `json:"difficulty"`
	SkillTags  []string `json:"skill_tags"`
}
