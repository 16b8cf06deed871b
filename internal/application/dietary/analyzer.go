// Package dietary implements the compatibility analyzer: scoring a recipe
// against a user's dietary restrictions, allergies, and health conditions.
// Every score is normalized to [0,1]; a zero allergy or restriction
// dimension vetoes the overall score to 0 regardless of the other
// dimensions.
package dietary

import (
	"fmt"
	"strings"

	"github.com/savorlabs/nutrimatch/internal/domain/guideline"
	"github.com/savorlabs/nutrimatch/internal/domain/recipe"
	"go.uber.org/zap"
)

// CompatibleThreshold is the overall score at or above which a recipe is
// considered compatible with the profile.
const CompatibleThreshold = 0.7

// Dimension weights for overall score fusion.
const (
	restrictionWeight = 0.4
	allergyWeight     = 0.4
	healthWeight      = 0.2
)

// RestrictionCheck is the per-restriction outcome.
type RestrictionCheck struct {
	Compatible             bool     `json:"compatible"`
	Score                  float64  `json:"score"`
	HasRestrictionTag      bool     `json:"has_restriction_tag"`
	ConflictingIngredients []string `json:"conflicting_ingredients"`
}

// AllergyCheck is the per-allergy outcome. Scores are strictly binary:
// allergies never receive partial credit.
type AllergyCheck struct {
	Compatible             bool     `json:"compatible"`
	Score                  float64  `json:"score"`
	ConflictingIngredients []string `json:"conflicting_ingredients"`
}

// ConditionCheck is the per-health-condition outcome.
type ConditionCheck struct {
	Compatible             bool    `json:"compatible"`
	Score                  float64 `json:"score"`
	HasRecommendedBenefits bool    `json:"has_recommended_benefits"`
	NutritionalScore       float64 `json:"nutritional_score"`
}

// DimensionResult aggregates one scoring dimension.
type DimensionResult struct {
	Compatible bool    `json:"compatible"`
	Score      float64 `json:"score"`
}

// Result is the full compatibility verdict for one (recipe, profile) pair.
// Computed fresh per request, never cached.
type Result struct {
	OverallCompatible bool                        `json:"overall_compatible"`
	OverallScore      float64                     `json:"overall_score"`
	Restriction       DimensionResult             `json:"restriction_compatibility"`
	Allergy           DimensionResult             `json:"allergy_compatibility"`
	Health            DimensionResult             `json:"health_compatibility"`
	Restrictions      map[string]RestrictionCheck `json:"restriction_results,omitempty"`
	Allergies         map[string]AllergyCheck     `json:"allergy_results,omitempty"`
	Conditions        map[string]ConditionCheck   `json:"health_results,omitempty"`
	Issues            []string                    `json:"issues"`
	Suggestions       []string                    `json:"suggestions"`
}

// Analyzer scores recipes against guideline tables. It holds no mutable
// state and is safe for concurrent use.
type Analyzer struct {
	tables  guideline.Tables
	matcher Matcher
	logger  *zap.Logger
}

// NewAnalyzer creates an analyzer with the default fuzzy matcher.
func NewAnalyzer(tables guideline.Tables, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		tables:  tables,
		matcher: FuzzyMatcher{},
		logger:  logger.Named("dietary"),
	}
}

// WithMatcher replaces the ingredient matching strategy.
func (a *Analyzer) WithMatcher(m Matcher) *Analyzer {
	a.matcher = m
	return a
}

// Analyze scores the recipe against the given constraints. Empty
// constraint sets score 1.0 in their dimension.
func (a *Analyzer) Analyze(r recipe.Recipe, restrictions, allergies, conditions []string) Result {
	res := Result{
		Restrictions: map[string]RestrictionCheck{},
		Allergies:    map[string]AllergyCheck{},
		Conditions:   map[string]ConditionCheck{},
		Issues:       []string{},
		Suggestions:  []string{},
	}

	ingredients := r.IngredientNames()

	res.Restriction = a.checkRestrictions(r, ingredients, restrictions, &res)
	res.Allergy = a.checkAllergies(ingredients, allergies, &res)
	res.Health = a.checkConditions(r, conditions, &res)

	res.OverallScore = fuse(res.Restriction.Score, res.Allergy.Score, res.Health.Score)
	res.OverallCompatible = res.OverallScore >= CompatibleThreshold

	a.collectIssues(&res)
	return res
}

// fuse combines the dimension scores with the hard veto: an exact zero in
// the restriction or allergy dimension forces the overall score to zero.
func fuse(restriction, allergy, health float64) float64 {
	if allergy == 0 || restriction == 0 {
		return 0
	}
	return restriction*restrictionWeight + allergy*allergyWeight + health*healthWeight
}

func (a *Analyzer) checkRestrictions(r recipe.Recipe, ingredients, restrictions []string, res *Result) DimensionResult {
	if len(restrictions) == 0 {
		return DimensionResult{Compatible: true, Score: 1.0}
	}

	var total float64
	for _, restriction := range restrictions {
		rule := a.tables.Restriction(restriction)
		hasTag := r.HasDietaryTag(restriction)
		conflicting := a.conflicting(ingredients, rule.ExcludedIngredients)

		score := 1.0
		switch {
		case len(conflicting) > 0:
			score = 0.0
		case !hasTag:
			score = 0.5
		}

		res.Restrictions[restriction] = RestrictionCheck{
			Compatible:             hasTag && len(conflicting) == 0,
			Score:                  score,
			HasRestrictionTag:      hasTag,
			ConflictingIngredients: conflicting,
		}
		total += score
	}

	score := total / float64(len(restrictions))
	return DimensionResult{Compatible: score >= CompatibleThreshold, Score: score}
}

func (a *Analyzer) checkAllergies(ingredients, allergies []string, res *Result) DimensionResult {
	if len(allergies) == 0 {
		return DimensionResult{Compatible: true, Score: 1.0}
	}

	var total float64
	for _, allergy := range allergies {
		rule := a.tables.Allergy(allergy)
		conflicting := a.conflicting(ingredients, rule.IncompatibleIngredients)

		score := 1.0
		if len(conflicting) > 0 {
			score = 0.0
		}

		res.Allergies[allergy] = AllergyCheck{
			Compatible:             len(conflicting) == 0,
			Score:                  score,
			ConflictingIngredients: conflicting,
		}
		total += score
	}

	score := total / float64(len(allergies))
	return DimensionResult{Compatible: score >= CompatibleThreshold, Score: score}
}

func (a *Analyzer) checkConditions(r recipe.Recipe, conditions []string, res *Result) DimensionResult {
	if len(conditions) == 0 {
		return DimensionResult{Compatible: true, Score: 1.0}
	}

	var total float64
	for _, condition := range conditions {
		rule := a.tables.Condition(condition)

		hasBenefit := false
		for _, benefit := range rule.RecommendedBenefits {
			if r.HasHealthBenefit(benefit) {
				hasBenefit = true
				break
			}
		}

		nutritional := nutrientScore(r.Nutrition, rule.RecommendedNutrients, rule.AvoidNutrients)

		score := nutritional * 0.4
		if hasBenefit {
			score += 0.6
		}

		res.Conditions[condition] = ConditionCheck{
			Compatible:             score >= 0.6,
			Score:                  score,
			HasRecommendedBenefits: hasBenefit,
			NutritionalScore:       nutritional,
		}
		total += score
	}

	score := total / float64(len(conditions))
	return DimensionResult{Compatible: score >= 0.6, Score: score}
}

// nutrientScore starts at 1.0, subtracts 0.2 per present avoid-nutrient
// and adds 0.1 per present recommended-nutrient, clamped to [0,1].
func nutrientScore(n recipe.NutritionInfo, recommended, avoid []string) float64 {
	score := 1.0
	for _, nutrient := range avoid {
		if value, ok := n.Nutrient(nutrient); ok && value > 0 {
			score -= 0.2
		}
	}
	for _, nutrient := range recommended {
		if value, ok := n.Nutrient(nutrient); ok && value > 0 {
			score += 0.1
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

// conflicting returns the recipe ingredients that fuzzy-match any entry of
// the exclusion list.
func (a *Analyzer) conflicting(ingredients, excluded []string) []string {
	conflicts := []string{}
	for _, ingredient := range ingredients {
		for _, pattern := range excluded {
			if a.matcher.Matches(strings.ToLower(pattern), ingredient) {
				conflicts = append(conflicts, ingredient)
				break
			}
		}
	}
	return conflicts
}

func (a *Analyzer) collectIssues(res *Result) {
	for restriction, check := range res.Restrictions {
		if check.Compatible {
			continue
		}
		if len(check.ConflictingIngredients) > 0 {
			joined := strings.Join(check.ConflictingIngredients, ", ")
			res.Issues = append(res.Issues,
				fmt.Sprintf("Contains ingredients incompatible with %s: %s", restriction, joined))
			res.Suggestions = append(res.Suggestions,
				fmt.Sprintf("Consider substituting %s for %s-friendly alternatives", joined, restriction))
		} else if !check.HasRestrictionTag {
			res.Issues = append(res.Issues, fmt.Sprintf("Not tagged as %s", restriction))
			res.Suggestions = append(res.Suggestions,
				fmt.Sprintf("Recipe may be compatible with %s but not explicitly tagged", restriction))
		}
	}

	for allergy, check := range res.Allergies {
		if check.Compatible || len(check.ConflictingIngredients) == 0 {
			continue
		}
		joined := strings.Join(check.ConflictingIngredients, ", ")
		res.Issues = append(res.Issues,
			fmt.Sprintf("Contains ingredients that may cause %s reaction: %s", allergy, joined))
		res.Suggestions = append(res.Suggestions,
			fmt.Sprintf("Substitute %s to avoid %s triggers", joined, allergy))
	}

	for condition, check := range res.Conditions {
		if check.Compatible {
			continue
		}
		if !check.HasRecommendedBenefits {
			res.Issues = append(res.Issues, fmt.Sprintf("Not optimized for %s", condition))
			res.Suggestions = append(res.Suggestions,
				fmt.Sprintf("Consider adding ingredients beneficial for %s", condition))
		}
		if check.NutritionalScore < 0.5 {
			res.Issues = append(res.Issues,
				fmt.Sprintf("Nutritional content not ideal for %s", condition))
			res.Suggestions = append(res.Suggestions,
				fmt.Sprintf("Adjust portion size or ingredients for better %s management", condition))
		}
	}
}
