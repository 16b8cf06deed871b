// Package recipe contains the core domain records for the recommendation
// pipeline. Recipes are plain typed values: static recipes are loaded once
// at startup and never mutated, dynamic recipes are synthesized per request
// and discarded after the response is built.
package recipe

import "strings"

// Source identifies where a recipe record came from.
type Source string

const (
	SourceStatic  Source = "static"
	SourceDynamic Source = "dynamic_generation"
)

// Difficulty is the preparation difficulty of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Ingredient is a single entry in a recipe's ingredient list.
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Notes  string  `json:"notes,omitempty"`
}

// NutritionInfo holds the per-serving nutrition record of a recipe.
// All values are non-negative; a zero value means "none", absence of a
// nutrient is expressed through Nutrient's second return value.
type NutritionInfo struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
	Sodium        float64 `json:"sodium"`
	Sugar         float64 `json:"sugar"`
}

// NutrientNames lists the nutrients addressable by name, in a fixed order.
var NutrientNames = []string{"calories", "protein", "carbohydrates", "fat", "fiber", "sodium", "sugar"}

// Nutrient returns the named nutrient value. The second return value is
// false when the name is not a known nutrient.
func (n NutritionInfo) Nutrient(name string) (float64, bool) {
	switch name {
	case "calories":
		return n.Calories, true
	case "protein":
		return n.Protein, true
	case "carbohydrates":
		return n.Carbohydrates, true
	case "fat":
		return n.Fat, true
	case "fiber":
		return n.Fiber, true
	case "sodium":
		return n.Sodium, true
	case "sugar":
		return n.Sugar, true
	}
	return 0, false
}

// Recipe is the central domain record. Title doubles as the deduplication
// key across static and synthesized candidates.
type Recipe struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	CuisineType    string        `json:"cuisine_type"`
	DietaryTags    []string      `json:"dietary_tags"`
	HealthBenefits []string      `json:"health_benefits"`
	Ingredients    []Ingredient  `json:"ingredients"`
	Instructions   []string      `json:"instructions"`
	Nutrition      NutritionInfo `json:"nutritional_info"`
	PrepTime       int           `json:"prep_time"`
	CookTime       int           `json:"cook_time"`
	Servings       int           `json:"servings"`
	Difficulty     Difficulty    `json:"difficulty"`
	Source         Source        `json:"source"`
}

// IngredientNames returns the lowercased ingredient names in recipe order.
func (r Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, strings.ToLower(ing.Name))
	}
	return names
}

// HasDietaryTag reports whether the recipe carries the given dietary tag.
func (r Recipe) HasDietaryTag(tag string) bool {
	for _, t := range r.DietaryTags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasHealthBenefit reports whether the recipe carries the given benefit tag.
func (r Recipe) HasHealthBenefit(benefit string) bool {
	for _, b := range r.HealthBenefits {
		if b == benefit {
			return true
		}
	}
	return false
}
