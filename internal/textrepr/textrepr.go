// Package textrepr turns structured profiles and exercises into the
// descriptive text the embedding model encodes. Both builders are pure:
// identical input always yields identical text, so document writes stay
// idempotent.
package textrepr

import (
	"fmt"
	"strings"

	"recommender/internal/domain"
)

const (
	pastTenseWords = "did, went, saw, traveled, worked"
	foodWords      = "restaurant, menu, pizza, salad, ingredients, dishes"
	travelWords    = "airport, ticket, hotel, flight, suitcase, luggage, boarding"
)

// DescribeProfile renders a learner profile as natural language. The
// dominant weakness picks the template; equal scores route to the food
// branch, a deliberate tie-break that must not change.
func DescribeProfile(p domain.LearnerProfile) string {
	langs := "no language"
	if len(p.Languages) > 0 {
		langs = strings.Join(p.Languages, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Learner studying %s at level %d.", langs, p.Level)

	if p.ErrorProfile.GrammarTensePast > p.ErrorProfile.VocabularyFood {
		fmt.Fprintf(&b, " Struggles with past tense grammar, forming sentences with words like %s.", pastTenseWords)
		b.WriteString(" Food vocabulary is not a concern.")
	} else {
		fmt.Fprintf(&b, " Struggles with food vocabulary, words like %s.", foodWords)
		b.WriteString(" Past tense grammar is not a concern.")
	}
	return b.String()
}

// DescribeExercise renders an exercise as natural language. Tag precedence
// is fixed: past_tense beats food beats travel; anything else falls back to
// a generic template. The precedence decides which semantic cluster the
// exercise lands in regardless of co-occurring tags.
func DescribeExercise(e domain.Exercise) string {
	switch {
	case e.HasTag("past_tense"):
		return fmt.Sprintf("Exercise practicing past tense grammar with words like %s.", pastTenseWords)
	case e.HasTag("food"):
		return fmt.Sprintf("Exercise practicing food vocabulary with words like %s.", foodWords)
	case e.HasTag("travel"):
		return fmt.Sprintf("Exercise practicing travel vocabulary with words like %s.", travelWords)
	default:
		return fmt.Sprintf("Exercise in language %s with skills %s and difficulty %d.",
			e.Language, strings.Join(e.SkillTags, ", "), e.Difficulty)
	}
}
