// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"testing"

	"github.com/brooondooon/ratatouille/pkg/types"
)

func titlesOf(candidates []types.Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Title
	}
	return out
}

func TestFilterExcludedURLs(t *testing.T) {
	e := NewEngine(types.RankingConfig{})
	candidates := []types.Candidate{
		{Title: "Keep", URL: "https://example.com/keep"},
		{Title: "Drop", URL: "https://example.com/drop"},
	}

	kept, relaxed, dupes := e.filter(candidates, Params{
		ExcludedURLs: []string{"https://example.com/drop"},
	})
	if relaxed || dupes != 0 {
		t.Errorf("relaxed = %v, dupes = %d, want false, 0", relaxed, dupes)
	}
	if len(kept) != 1 || kept[0].Title != "Keep" {
		t.Errorf("kept = %v, want [Keep]", titlesOf(kept))
	}
}

func TestFilterDeduplicatesByURLFirstSeen(t *testing.T) {
	e := NewEngine(types.RankingConfig{})
	candidates := []types.Candidate{
		{Title: "First", URL: "https://example.com/r"},
		{Title: "Second", URL: "https://example.com/other"},
		{Title: "Duplicate of first", URL: "https://example.com/r"},
	}

	kept, _, dupes := e.filter(candidates, Params{})
	if dupes != 1 {
		t.Errorf("dupes = %d, want 1", dupes)
	}
	want := []string{"First", "Second"}
	got := titlesOf(kept)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("kept = %v, want %v", got, want)
	}
}

func TestFilterKeepsCandidatesWithoutURL(t *testing.T) {
	e := NewEngine(types.RankingConfig{})
	candidates := []types.Candidate{
		{Title: "A"},
		{Title: "B"},
	}

	kept, _, dupes := e.filter(candidates, Params{})
	if len(kept) != 2 || dupes != 0 {
		t.Errorf("kept = %v, dupes = %d; empty URLs must not collide", titlesOf(kept), dupes)
	}
}

// --- dietary ---

func TestFilterDietary(t *testing.T) {
	tests := []struct {
		name         string
		restrictions []string
		candidates   []types.Candidate
		wantTitles   []string
	}{
		{
			name:         "vegetarian drops chicken",
			restrictions: []string{"vegetarian"},
			candidates: []types.Candidate{
				{Title: "Chicken Piccata", URL: "u1", Ingredients: []string{"chicken breast", "lemon"}},
				{Title: "Mushroom Risotto", URL: "u2", Ingredients: []string{"arborio rice", "mushrooms"}},
				{Title: "Lentil Soup", URL: "u3", Ingredients: []string{"lentils", "carrots"}},
			},
			wantTitles: []string{"Mushroom Risotto", "Lentil Soup"},
		},
		{
			name:         "vegan also drops dairy and eggs",
			restrictions: []string{"vegan"},
			candidates: []types.Candidate{
				{Title: "Buttered Noodles", URL: "u1", Ingredients: []string{"butter", "noodles"}},
				{Title: "Shakshuka", URL: "u2", Ingredients: []string{"eggs", "tomatoes"}},
				{Title: "Chana Masala", URL: "u3", Ingredients: []string{"chickpeas", "tomatoes"}},
				{Title: "Ratatouille", URL: "u4", Ingredients: []string{"zucchini", "tomatoes"}},
			},
			wantTitles: []string{"Chana Masala", "Ratatouille"},
		},
		{
			name:         "gluten-free drops flour",
			restrictions: []string{"gluten-free"},
			candidates: []types.Candidate{
				{Title: "Country Loaf", URL: "u1", Ingredients: []string{"bread flour", "water", "salt"}},
				{Title: "Polenta", URL: "u2", Ingredients: []string{"cornmeal", "water"}},
				{Title: "Roast Chicken", URL: "u3", Ingredients: []string{"chicken", "thyme"}},
			},
			wantTitles: []string{"Polenta", "Roast Chicken"},
		},
		{
			name:         "substring matching catches compounds",
			restrictions: []string{"vegetarian"},
			candidates: []types.Candidate{
				{Title: "Spaghetti and Meatballs", URL: "u1", Ingredients: []string{"meatballs", "spaghetti"}},
				{Title: "Cacio e Pepe", URL: "u2", Ingredients: []string{"pecorino", "black pepper"}},
				{Title: "Aglio e Olio", URL: "u3", Ingredients: []string{"garlic", "olive oil"}},
			},
			wantTitles: []string{"Cacio e Pepe", "Aglio e Olio"},
		},
		{
			// The vegan term list includes "egg", which eggplant contains.
			name:         "vegan egg term also catches eggplant",
			restrictions: []string{"vegan"},
			candidates: []types.Candidate{
				{Title: "Baba Ganoush", URL: "u1", Ingredients: []string{"eggplant", "tahini"}},
				{Title: "Hummus", URL: "u2", Ingredients: []string{"chickpeas", "tahini", "lemon"}},
				{Title: "Falafel", URL: "u3", Ingredients: []string{"chickpeas", "parsley"}},
			},
			wantTitles: []string{"Hummus", "Falafel"},
		},
		{
			name:         "unknown restriction filters nothing",
			restrictions: []string{"paleo"},
			candidates: []types.Candidate{
				{Title: "Anything", URL: "u1", Ingredients: []string{"chicken"}},
				{Title: "Else", URL: "u2", Ingredients: []string{"bread"}},
			},
			wantTitles: []string{"Anything", "Else"},
		},
		{
			name:         "empty ingredient list passes",
			restrictions: []string{"vegan"},
			candidates: []types.Candidate{
				{Title: "Mystery Dish", URL: "u1"},
				{Title: "Tofu Stir Fry", URL: "u2", Ingredients: []string{"tofu", "soy sauce"}},
			},
			wantTitles: []string{"Mystery Dish", "Tofu Stir Fry"},
		},
	}

	e := NewEngine(types.RankingConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, relaxed, _ := e.filter(tt.candidates, Params{DietaryRestrictions: tt.restrictions})
			if relaxed {
				t.Error("relaxed = true, want false")
			}
			got := titlesOf(kept)
			if len(got) != len(tt.wantTitles) {
				t.Fatalf("kept = %v, want %v", got, tt.wantTitles)
			}
			for i := range got {
				if got[i] != tt.wantTitles[i] {
					t.Errorf("kept[%d] = %q, want %q", i, got[i], tt.wantTitles[i])
				}
			}
		})
	}
}

func TestFilterRelaxesWhenOverFiltered(t *testing.T) {
	e := NewEngine(types.RankingConfig{})
	candidates := []types.Candidate{
		{Title: "Roast Chicken", URL: "u1", Ingredients: []string{"chicken"}},
		{Title: "Beef Stew", URL: "u2", Ingredients: []string{"beef chuck"}},
		{Title: "Pork Belly", URL: "u3", Ingredients: []string{"pork belly"}},
		{Title: "Fish Tacos", URL: "u4", Ingredients: []string{"white fish"}},
		{Title: "Meatloaf", URL: "u5", Ingredients: []string{"ground meat"}},
	}

	kept, relaxed, _ := e.filter(candidates, Params{DietaryRestrictions: []string{"vegetarian"}})
	if !relaxed {
		t.Fatal("relaxed = false, want true when every candidate conflicts")
	}
	if len(kept) != 5 {
		t.Errorf("kept %d candidates after relaxing, want all 5", len(kept))
	}
}

func TestFilterKeepsDietaryWhenOneSurvivorShortOfTwo(t *testing.T) {
	// Exactly one survivor is below the threshold, so the restrictions are
	// dropped and both candidates come back.
	e := NewEngine(types.RankingConfig{})
	candidates := []types.Candidate{
		{Title: "Chicken Soup", URL: "u1", Ingredients: []string{"chicken"}},
		{Title: "Minestrone", URL: "u2", Ingredients: []string{"beans", "pasta shells"}},
	}

	kept, relaxed, _ := e.filter(candidates, Params{DietaryRestrictions: []string{"vegetarian"}})
	if !relaxed {
		t.Fatal("relaxed = false, want true")
	}
	if len(kept) != 2 {
		t.Errorf("kept = %v, want both candidates", titlesOf(kept))
	}
}
