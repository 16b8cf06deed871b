// Package guideline defines the read-only dietary guideline tables the
// pipeline is built from: restriction exclusion lists, allergy
// incompatibility lists, health condition recommendations, ingredient
// substitution mappings, and the ingredient nutrient database.
//
// Unknown keys are treated as empty rules so lookups never penalize a
// recipe for a restriction or condition the tables do not know about.
package guideline

import (
	"strings"

	"github.com/savorlabs/nutrimatch/internal/domain/recipe"
)

// DietaryRule describes a dietary restriction: the recipes tagged with it
// must avoid every ingredient on its exclusion list.
type DietaryRule struct {
	Description         string   `json:"description"`
	ExcludedIngredients []string `json:"excluded_ingredients"`
}

// AllergyRule lists the ingredients incompatible with an allergy.
// Allergy rules are safety-critical: any match is disqualifying.
type AllergyRule struct {
	Description             string   `json:"description"`
	IncompatibleIngredients []string `json:"incompatible_ingredients"`
}

// ConditionRule describes a health condition: benefit tags a recipe should
// carry and nutrients it should favor or avoid.
type ConditionRule struct {
	Description          string   `json:"description"`
	RecommendedBenefits  []string `json:"recommended_benefits"`
	AvoidNutrients       []string `json:"avoid_nutrients"`
	RecommendedNutrients []string `json:"recommended_nutrients"`
}

// SubstituteOption is one candidate replacement for an ingredient.
type SubstituteOption struct {
	Name  string `json:"name"`
	Ratio string `json:"ratio"`
	Notes string `json:"notes,omitempty"`
}

// SubstitutionRule maps an ingredient to its known substitutes.
type SubstitutionRule struct {
	Substitutes []SubstituteOption `json:"substitutes"`
}

// NutrientEntry holds per-ingredient nutrition (per 100g) and the dietary
// tags the ingredient itself carries.
type NutrientEntry struct {
	Nutrition   recipe.NutritionInfo `json:"nutrition"`
	DietaryTags []string             `json:"dietary_tags"`
}

// HasTag reports whether the ingredient carries the given dietary tag.
func (e NutrientEntry) HasTag(tag string) bool {
	for _, t := range e.DietaryTags {
		if t == tag {
			return true
		}
	}
	return false
}

// NutrientDB is the known-ingredient nutrient database, keyed by
// lowercased ingredient name.
type NutrientDB map[string]NutrientEntry

// Lookup returns the entry for an ingredient name, case-insensitively.
func (db NutrientDB) Lookup(name string) (NutrientEntry, bool) {
	entry, ok := db[strings.ToLower(name)]
	return entry, ok
}

// Tables bundles the guideline data loaded at startup. Missing tables
// behave as empty maps.
type Tables struct {
	Restrictions  map[string]DietaryRule      `json:"dietary_restrictions"`
	Allergies     map[string]AllergyRule      `json:"allergies"`
	Conditions    map[string]ConditionRule    `json:"health_conditions"`
	Substitutions map[string]SubstitutionRule `json:"ingredient_substitutions"`
}

// Restriction returns the rule for a restriction key, empty when unknown.
func (t Tables) Restriction(key string) DietaryRule {
	return t.Restrictions[key]
}

// Allergy returns the rule for an allergy key, empty when unknown.
func (t Tables) Allergy(key string) AllergyRule {
	return t.Allergies[key]
}

// Condition returns the rule for a condition key, empty when unknown.
func (t Tables) Condition(key string) ConditionRule {
	return t.Conditions[key]
}

// Substitution returns the substitution rule for a normalized ingredient
// name, empty when unknown.
func (t Tables) Substitution(ingredient string) SubstitutionRule {
	return t.Substitutions[ingredient]
}

// ConditionBenefits maps health conditions to the benefit tags that make a
// recipe relevant to them. Used both for search filtering and coverage
// statistics.
var ConditionBenefits = map[string][]string{
	"diabetes":            {"diabetes_friendly", "blood_sugar_control"},
	"heart_disease":       {"heart_healthy", "cholesterol_lowering"},
	"hypertension":        {"blood_pressure_control", "heart_healthy"},
	"celiac_disease":      {"celiac_safe", "gluten_free"},
	"lactose_intolerance": {"lactose_intolerance_safe", "dairy_free"},
	"obesity":             {"weight_management", "low_carb"},
}
