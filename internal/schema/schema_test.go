package schema

import "testing"

func TestProfilesBindsDimensions(t *testing.T) {
	s := Profiles(384)
	if s.Name != ProfilesIndex || s.VectorField != ProfileVectorField {
		t.Fatalf("unexpected identity: %q / %q", s.Name, s.VectorField)
	}
	if s.Dimensions != 384 {
		t.Fatalf("expected 384 dims, got %d", s.Dimensions)
	}
	vec := vectorMapping(t, s.Mapping, ProfileVectorField)
	if vec["dims"] != 384 || vec["similarity"] != "cosine" {
		t.Errorf("unexpected vector mapping: %v", vec)
	}
}

func TestExercisesBindsDimensions(t *testing.T) {
	s := Exercises(512)
	if s.Name != ExercisesIndex || s.Dimensions != 512 {
		t.Fatalf("unexpected schema: %q dims=%d", s.Name, s.Dimensions)
	}
	vec := vectorMapping(t, s.Mapping, ExerciseVectorField)
	if vec["dims"] != 512 {
		t.Errorf("expected dims bound to 512, got %v", vec["dims"])
	}
	props := properties(t, s.Mapping)
	for _, field := range []string{"exercise_id", "language", "skill_tags", "difficulty", "usage_stats"} {
		if _, ok := props[field]; !ok {
			t.Errorf("missing field %q in mapping", field)
		}
	}
}

func properties(t *testing.T, mapping map[string]any) map[string]any {
	t.Helper()
	mappings, ok := mapping["mappings"].(map[string]any)
	if !ok {
		t.Fatalf("no mappings in %v", mapping)
	}
	props, ok := mappings["properties"].(map[string]any)
	if !ok {
		t.Fatalf("no properties in %v", mappings)
	}
	return props
}

func vectorMapping(t *testing.T, mapping map[string]any, field string) map[string]any {
	t.Helper()
	vec, ok := properties(t, mapping)[field].(map[string]any)
	if !ok {
		t.Fatalf("missing vector field %q", field)
	}
	return vec
}
