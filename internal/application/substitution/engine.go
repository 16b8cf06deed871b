// Package substitution implements ingredient substitution lookup and
// nutrition optimization. Candidates come from the guideline substitution
// map plus a fallback sweep over the nutrient database; each candidate is
// ranked by a fusion of dietary compatibility and nutritional similarity.
package substitution

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/savorlabs/nutrimatch/internal/domain/guideline"
	"github.com/savorlabs/nutrimatch/internal/domain/recipe"
	"go.uber.org/zap"
)

// Ranking weights for the fused substitution score.
const (
	compatibilityWeight = 0.7
	similarityWeight    = 0.3
)

// Fallback candidates must clear both gates to be offered at all.
const (
	fallbackMinCompatibility = 0.5
	fallbackMinSimilarity    = 0.3
)

// similarityNutrients are the nutrients compared when scoring how close
// two ingredients are nutritionally.
var similarityNutrients = []string{"calories", "protein", "carbohydrates", "fat", "fiber"}

var modifierWords = []string{"fresh", "dried", "frozen", "canned", "organic", "raw", "cooked"}

var quantityPattern = regexp.MustCompile(`\d+\s*(cup|tbsp|tsp|oz|lb|g|kg|ml|l)\b`)

// Option is one ranked substitution candidate.
type Option struct {
	OriginalIngredient    string  `json:"original_ingredient"`
	SubstituteName        string  `json:"substitute_name"`
	Ratio                 string  `json:"ratio"`
	Notes                 string  `json:"notes,omitempty"`
	CompatibilityScore    float64 `json:"compatibility_score"`
	NutritionalSimilarity float64 `json:"nutritional_similarity"`
	OverallScore          float64 `json:"overall_score"`
}

// SuggestionType distinguishes the two optimization moves.
type SuggestionType string

const (
	SuggestionAddIngredient SuggestionType = "add_ingredient"
	SuggestionSubstitute    SuggestionType = "substitute_ingredient"
)

// Suggestion is one nutrition-optimization move for a recipe.
type Suggestion struct {
	Type                 SuggestionType `json:"type"`
	Ingredient           string         `json:"ingredient,omitempty"`
	OriginalIngredient   string         `json:"original_ingredient,omitempty"`
	SubstituteIngredient string         `json:"substitute_ingredient,omitempty"`
	Nutrient             string         `json:"nutrient"`
	NutrientValue        float64        `json:"nutrient_value,omitempty"`
	Reduction            float64        `json:"reduction,omitempty"`
	CompatibilityScore   float64        `json:"compatibility_score"`
	Text                 string         `json:"suggestion"`
}

// NutrientGap reports how far a recipe sits from one nutrient target.
type NutrientGap struct {
	Current          float64 `json:"current"`
	Target           float64 `json:"target"`
	Difference       float64 `json:"difference"`
	SuggestionsCount int     `json:"suggestions_count"`
}

// Optimization is the full nutrition-optimization outcome for a recipe.
type Optimization struct {
	Score            float64                `json:"optimization_score"`
	Suggestions      []Suggestion           `json:"suggestions"`
	NutrientAnalysis map[string]NutrientGap `json:"nutrient_analysis"`
	CurrentNutrition recipe.NutritionInfo   `json:"current_nutrition"`
	TargetNutrition  map[string]float64     `json:"target_nutrition"`
}

// Engine resolves substitutions against the guideline tables and nutrient
// database. Stateless after construction, safe for concurrent use.
type Engine struct {
	tables    guideline.Tables
	nutrients guideline.NutrientDB
	logger    *zap.Logger
}

// NewEngine creates a substitution engine over the loaded guideline data.
func NewEngine(tables guideline.Tables, nutrients guideline.NutrientDB, logger *zap.Logger) *Engine {
	return &Engine{
		tables:    tables,
		nutrients: nutrients,
		logger:    logger.Named("substitution"),
	}
}

// FindSubstitutions returns ranked substitution candidates for an
// ingredient, sorted non-increasing by the fused score. Unknown
// ingredients still receive fallback candidates from the nutrient
// database.
func (e *Engine) FindSubstitutions(ingredient string, restrictions, allergies []string) []Option {
	normalized := NormalizeIngredient(ingredient)

	options := []Option{}
	for _, sub := range e.tables.Substitution(normalized).Substitutes {
		options = append(options, e.buildOption(normalized, sub, restrictions, allergies))
	}
	options = append(options, e.fallbackOptions(normalized, restrictions, allergies)...)

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].OverallScore > options[j].OverallScore
	})
	return options
}

// NormalizeIngredient lowercases an ingredient name and strips known
// modifier words and quantity+unit patterns before lookup.
func NormalizeIngredient(ingredient string) string {
	normalized := strings.ToLower(strings.TrimSpace(ingredient))
	for _, modifier := range modifierWords {
		normalized = strings.TrimSpace(strings.ReplaceAll(normalized, modifier, ""))
	}
	normalized = strings.TrimSpace(quantityPattern.ReplaceAllString(normalized, ""))
	return strings.Join(strings.Fields(normalized), " ")
}

func (e *Engine) buildOption(original string, sub guideline.SubstituteOption, restrictions, allergies []string) Option {
	compatibility := e.substituteCompatibility(sub.Name, restrictions, allergies)

	var origNutrition, subNutrition recipe.NutritionInfo
	var origKnown, subKnown bool
	if entry, ok := e.nutrients.Lookup(original); ok {
		origNutrition, origKnown = entry.Nutrition, true
	}
	if entry, ok := e.nutrients.Lookup(sub.Name); ok {
		subNutrition, subKnown = entry.Nutrition, true
	}

	similarity := 0.0
	if origKnown && subKnown {
		similarity = nutritionalSimilarity(origNutrition, subNutrition)
	}

	ratio := sub.Ratio
	if ratio == "" {
		ratio = "1:1"
	}

	return Option{
		OriginalIngredient:    original,
		SubstituteName:        sub.Name,
		Ratio:                 ratio,
		Notes:                 sub.Notes,
		CompatibilityScore:    compatibility,
		NutritionalSimilarity: similarity,
		OverallScore:          compatibility*compatibilityWeight + similarity*similarityWeight,
	}
}

// fallbackOptions sweeps the nutrient database for alternatives that clear
// both the compatibility and similarity gates.
func (e *Engine) fallbackOptions(ingredient string, restrictions, allergies []string) []Option {
	origEntry, origKnown := e.nutrients.Lookup(ingredient)

	names := make([]string, 0, len(e.nutrients))
	for name := range e.nutrients {
		names = append(names, name)
	}
	sort.Strings(names)

	options := []Option{}
	for _, name := range names {
		if name == ingredient {
			continue
		}
		compatibility := e.substituteCompatibility(name, restrictions, allergies)
		if compatibility <= fallbackMinCompatibility {
			continue
		}
		if !origKnown {
			continue
		}
		similarity := nutritionalSimilarity(origEntry.Nutrition, e.nutrients[name].Nutrition)
		if similarity <= fallbackMinSimilarity {
			continue
		}
		options = append(options, Option{
			OriginalIngredient:    ingredient,
			SubstituteName:        name,
			Ratio:                 "1:1",
			Notes:                 "Nutritionally similar alternative",
			CompatibilityScore:    compatibility,
			NutritionalSimilarity: similarity,
			OverallScore:          compatibility*compatibilityWeight + similarity*similarityWeight,
		})
	}
	return options
}

// substituteCompatibility starts at 1.0, subtracts 0.5 per restriction
// that excludes the substitute, adds 0.2 per restriction tag the
// substitute itself carries, and zeroes immediately on any allergy match.
func (e *Engine) substituteCompatibility(substitute string, restrictions, allergies []string) float64 {
	score := 1.0
	if len(restrictions) == 0 && len(allergies) == 0 {
		return score
	}

	name := strings.ToLower(substitute)
	entry, _ := e.nutrients.Lookup(name)

	for _, restriction := range restrictions {
		rule := e.tables.Restriction(restriction)
		if containsFold(rule.ExcludedIngredients, name) {
			score -= 0.5
		} else if entry.HasTag(restriction) {
			score += 0.2
		}
	}

	for _, allergy := range allergies {
		rule := e.tables.Allergy(allergy)
		if containsFold(rule.IncompatibleIngredients, name) {
			return 0
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// containsFold reports whether the list contains the name, compared
// case-insensitively and exactly. Substitute checks deliberately use exact
// names rather than fuzzy matching: the guideline lists name the specific
// ingredients they mean.
func containsFold(list []string, name string) bool {
	for _, item := range list {
		if strings.EqualFold(item, name) {
			return true
		}
	}
	return false
}

// nutritionalSimilarity is the mean over shared positive nutrients of
// 1 - |a-b|/max(a,b). Nutrients absent from either side are skipped; no
// shared nutrients yields 0.
func nutritionalSimilarity(a, b recipe.NutritionInfo) float64 {
	var total float64
	var count int
	for _, nutrient := range similarityNutrients {
		va, _ := a.Nutrient(nutrient)
		vb, _ := b.Nutrient(nutrient)
		if va <= 0 || vb <= 0 {
			continue
		}
		max := va
		if vb > max {
			max = vb
		}
		diff := va - vb
		if diff < 0 {
			diff = -diff
		}
		total += 1 - diff/max
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// OptimizeNutrition compares the recipe against the nutrient targets and
// proposes boost additions for deficits and reduction substitutions for
// excesses. Targets with |target-current| <= 0.1 are left untouched.
func (e *Engine) OptimizeNutrition(r recipe.Recipe, targets map[string]float64, restrictions, allergies []string) Optimization {
	opt := Optimization{
		Suggestions:      []Suggestion{},
		NutrientAnalysis: map[string]NutrientGap{},
		CurrentNutrition: r.Nutrition,
		TargetNutrition:  targets,
	}

	nutrients := make([]string, 0, len(targets))
	for nutrient := range targets {
		nutrients = append(nutrients, nutrient)
	}
	sort.Strings(nutrients)

	for _, nutrient := range nutrients {
		target := targets[nutrient]
		current, _ := r.Nutrition.Nutrient(nutrient)
		difference := target - current

		if difference <= 0.1 && difference >= -0.1 {
			continue
		}

		var suggestions []Suggestion
		if difference > 0 {
			suggestions = e.boostSuggestions(nutrient, restrictions, allergies)
		} else {
			suggestions = e.reductionSuggestions(r, nutrient, restrictions, allergies)
		}
		opt.Suggestions = append(opt.Suggestions, suggestions...)

		opt.NutrientAnalysis[nutrient] = NutrientGap{
			Current:          current,
			Target:           target,
			Difference:       difference,
			SuggestionsCount: len(suggestions),
		}
	}

	opt.Score = optimizationScore(r.Nutrition, targets)
	return opt
}

// boostSuggestions proposes up to three additions ranked by how much of
// the nutrient they contribute, keeping only well-compatible ingredients.
func (e *Engine) boostSuggestions(nutrient string, restrictions, allergies []string) []Suggestion {
	names := make([]string, 0, len(e.nutrients))
	for name := range e.nutrients {
		names = append(names, name)
	}
	sort.Strings(names)

	suggestions := []Suggestion{}
	for _, name := range names {
		value, _ := e.nutrients[name].Nutrition.Nutrient(nutrient)
		if value <= 0 {
			continue
		}
		compatibility := e.substituteCompatibility(name, restrictions, allergies)
		if compatibility <= 0.7 {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Type:               SuggestionAddIngredient,
			Ingredient:         name,
			Nutrient:           nutrient,
			NutrientValue:      value,
			CompatibilityScore: compatibility,
			Text:               fmt.Sprintf("Add %s to boost %s", name, nutrient),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].NutrientValue > suggestions[j].NutrientValue
	})
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

// reductionSuggestions proposes up to three swaps of existing ingredients
// for lower-nutrient substitutes, ranked by reduction magnitude. The first
// two substitution candidates per ingredient are considered.
func (e *Engine) reductionSuggestions(r recipe.Recipe, nutrient string, restrictions, allergies []string) []Suggestion {
	suggestions := []Suggestion{}
	for _, ingredient := range r.Ingredients {
		name := strings.ToLower(ingredient.Name)
		entry, ok := e.nutrients.Lookup(name)
		if !ok {
			continue
		}
		value, _ := entry.Nutrition.Nutrient(nutrient)
		if value <= 0 {
			continue
		}

		candidates := e.FindSubstitutions(name, restrictions, allergies)
		if len(candidates) > 2 {
			candidates = candidates[:2]
		}
		for _, candidate := range candidates {
			subEntry, ok := e.nutrients.Lookup(candidate.SubstituteName)
			if !ok {
				continue
			}
			subValue, _ := subEntry.Nutrition.Nutrient(nutrient)
			if subValue >= value {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				Type:                 SuggestionSubstitute,
				OriginalIngredient:   name,
				SubstituteIngredient: candidate.SubstituteName,
				Nutrient:             nutrient,
				Reduction:            value - subValue,
				CompatibilityScore:   candidate.CompatibilityScore,
				Text: fmt.Sprintf("Substitute %s with %s to reduce %s",
					name, candidate.SubstituteName, nutrient),
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Reduction > suggestions[j].Reduction
	})
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

// optimizationScore bands each positive target: current >= 0.8*target is
// 1.0, >= 0.5*target is 0.7, otherwise 0.3. The overall score is the mean
// across banded targets, 1.0 when there are none.
func optimizationScore(current recipe.NutritionInfo, targets map[string]float64) float64 {
	if len(targets) == 0 {
		return 1.0
	}

	var total float64
	var count int
	for nutrient, target := range targets {
		if target <= 0 {
			continue
		}
		value, _ := current.Nutrient(nutrient)
		switch {
		case value >= target*0.8:
			total += 1.0
		case value >= target*0.5:
			total += 0.7
		default:
			total += 0.3
		}
		count++
	}
	if count == 0 {
		return 1.0
	}
	return total / float64(count)
}
