package substitution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/savorlabs/nutrimatch/internal/domain/guideline"
	"github.com/savorlabs/nutrimatch/internal/domain/recipe"
	"github.com/savorlabs/nutrimatch/test/testutils"
)

func testEngine() *Engine {
	tables := guideline.Tables{
		Restrictions: map[string]guideline.DietaryRule{
			"vegan": {
				ExcludedIngredients: []string{"milk", "whole milk", "butter", "cheese", "eggs"},
			},
			"dairy_free": {
				ExcludedIngredients: []string{"milk", "whole milk", "butter", "cheese", "cream"},
			},
		},
		Allergies: map[string]guideline.AllergyRule{
			"dairy": {
				IncompatibleIngredients: []string{"milk", "whole milk", "cheese", "butter", "cream"},
			},
		},
		Substitutions: map[string]guideline.SubstitutionRule{
			"milk": {
				Substitutes: []guideline.SubstituteOption{
					{Name: "oat milk", Ratio: "1:1", Notes: "Neutral flavor"},
					{Name: "almond milk", Ratio: "1:1"},
					{Name: "whole milk", Notes: "Richer texture"},
				},
			},
		},
	}

	nutrients := guideline.NutrientDB{
		"milk": {
			Nutrition:   recipe.NutritionInfo{Calories: 42, Protein: 3.4, Carbohydrates: 5, Fat: 1},
			DietaryTags: []string{"vegetarian"},
		},
		"whole milk": {
			Nutrition:   recipe.NutritionInfo{Calories: 61, Protein: 3.2, Carbohydrates: 4.8, Fat: 3.3},
			DietaryTags: []string{"vegetarian"},
		},
		"oat milk": {
			Nutrition:   recipe.NutritionInfo{Calories: 47, Protein: 1, Carbohydrates: 7.6, Fat: 1.5},
			DietaryTags: []string{"vegan", "dairy_free", "vegetarian"},
		},
		"almond milk": {
			Nutrition:   recipe.NutritionInfo{Calories: 15, Protein: 0.5, Carbohydrates: 0.3, Fat: 1.1},
			DietaryTags: []string{"vegan", "dairy_free", "vegetarian"},
		},
		"lentils": {
			Nutrition:   recipe.NutritionInfo{Calories: 116, Protein: 9, Carbohydrates: 20, Fat: 0.4, Fiber: 7.9},
			DietaryTags: []string{"vegan", "vegetarian", "gluten_free"},
		},
		"chicken breast": {
			Nutrition: recipe.NutritionInfo{Calories: 165, Protein: 31, Fat: 3.6},
		},
	}

	return NewEngine(tables, nutrients, zap.NewNop())
}

func TestNormalizeIngredient(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Milk", "milk"},
		{"fresh basil", "basil"},
		{"organic whole milk", "whole milk"},
		{"1 cup milk", "milk"},
		{"2 tbsp olive oil", "olive oil"},
		{"100 g flour", "flour"},
		{"  dried  oregano  ", "oregano"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeIngredient(tt.in), "input %q", tt.in)
	}
}

func TestFindSubstitutions_GuidelineCandidates(t *testing.T) {
	e := testEngine()

	options := e.FindSubstitutions("milk", nil, nil)

	require.NotEmpty(t, options)
	names := make([]string, 0, len(options))
	for _, opt := range options {
		names = append(names, opt.SubstituteName)
		assert.Equal(t, "milk", opt.OriginalIngredient)
	}
	assert.Contains(t, names, "oat milk")
	assert.Contains(t, names, "almond milk")
	assert.Contains(t, names, "whole milk")
}

func TestFindSubstitutions_SortedByOverallScore(t *testing.T) {
	e := testEngine()

	options := e.FindSubstitutions("milk", []string{"dairy_free"}, nil)

	require.NotEmpty(t, options)
	for i := 1; i < len(options); i++ {
		assert.GreaterOrEqual(t, options[i-1].OverallScore, options[i].OverallScore)
	}
}

func TestFindSubstitutions_DairyAllergyZeroesWholeMilk(t *testing.T) {
	e := testEngine()

	options := e.FindSubstitutions("milk", nil, []string{"dairy"})

	require.NotEmpty(t, options)

	var wholeMilk *Option
	for i := range options {
		if options[i].SubstituteName == "whole milk" {
			wholeMilk = &options[i]
		}
	}
	require.NotNil(t, wholeMilk, "whole milk stays listed as a guideline candidate")
	assert.Equal(t, 0.0, wholeMilk.CompatibilityScore)

	// Zero compatibility pushes it behind every allergy-safe candidate.
	assert.Equal(t, "whole milk", options[len(options)-1].SubstituteName)
}

func TestFindSubstitutions_RestrictionTagBonus(t *testing.T) {
	e := testEngine()

	options := e.FindSubstitutions("milk", []string{"vegan"}, nil)

	byName := map[string]Option{}
	for _, opt := range options {
		byName[opt.SubstituteName] = opt
	}

	// whole milk is on the vegan exclusion list, oat milk carries the tag.
	assert.InDelta(t, 0.5, byName["whole milk"].CompatibilityScore, 1e-9)
	assert.Equal(t, 1.0, byName["oat milk"].CompatibilityScore)
}

func TestFindSubstitutions_DefaultRatio(t *testing.T) {
	e := testEngine()

	options := e.FindSubstitutions("milk", nil, nil)

	for _, opt := range options {
		if opt.SubstituteName == "whole milk" {
			assert.Equal(t, "1:1", opt.Ratio)
		}
	}
}

func TestFindSubstitutions_UnknownIngredientGetsFallbacks(t *testing.T) {
	e := testEngine()

	// chicken breast has no guideline entry but is in the nutrient DB.
	options := e.FindSubstitutions("chicken breast", nil, nil)

	require.NotEmpty(t, options)
	for _, opt := range options {
		assert.Greater(t, opt.CompatibilityScore, fallbackMinCompatibility)
		assert.Greater(t, opt.NutritionalSimilarity, fallbackMinSimilarity)
		assert.Equal(t, "Nutritionally similar alternative", opt.Notes)
	}
}

func TestFindSubstitutions_UnknownEverywhereIsEmpty(t *testing.T) {
	e := testEngine()

	options := e.FindSubstitutions("dragon fruit", nil, nil)

	assert.NotNil(t, options)
	assert.Empty(t, options)
}

func TestNutritionalSimilarity(t *testing.T) {
	a := recipe.NutritionInfo{Calories: 100, Protein: 10, Fat: 5}
	assert.Equal(t, 1.0, nutritionalSimilarity(a, a))

	b := recipe.NutritionInfo{Calories: 50, Protein: 10, Fat: 5}
	// calories: 1 - 50/100 = 0.5; protein and fat identical: 1.0 each.
	assert.InDelta(t, (0.5+1+1)/3, nutritionalSimilarity(a, b), 1e-9)
}

func TestNutritionalSimilarity_NoSharedNutrients(t *testing.T) {
	a := recipe.NutritionInfo{Calories: 100}
	b := recipe.NutritionInfo{Protein: 10}

	assert.Zero(t, nutritionalSimilarity(a, b))
}

func TestOptimizeNutrition_NoGapsWithinTolerance(t *testing.T) {
	e := testEngine()
	r := testutils.NewRecipeBuilder().
		WithNutrition(recipe.NutritionInfo{Protein: 50}).
		Build()

	opt := e.OptimizeNutrition(r, map[string]float64{"protein": 50.05}, nil, nil)

	assert.Empty(t, opt.Suggestions)
	assert.Empty(t, opt.NutrientAnalysis)
	assert.Equal(t, 1.0, opt.Score)
}

func TestOptimizeNutrition_DeficitTriggersBoosts(t *testing.T) {
	e := testEngine()
	r := testutils.NewRecipeBuilder().
		WithNutrition(recipe.NutritionInfo{Protein: 45}).
		Build()

	opt := e.OptimizeNutrition(r, map[string]float64{"protein": 50}, nil, nil)

	// 45 against a target of 50 is inside the top band but outside the
	// 0.1 tolerance, so suggestions are still generated.
	assert.Equal(t, 1.0, opt.Score)
	require.Contains(t, opt.NutrientAnalysis, "protein")
	gap := opt.NutrientAnalysis["protein"]
	assert.Equal(t, 45.0, gap.Current)
	assert.Equal(t, 50.0, gap.Target)
	assert.InDelta(t, 5.0, gap.Difference, 1e-9)

	require.NotEmpty(t, opt.Suggestions)
	for _, s := range opt.Suggestions {
		assert.Equal(t, SuggestionAddIngredient, s.Type)
		assert.Equal(t, "protein", s.Nutrient)
		assert.Greater(t, s.NutrientValue, 0.0)
	}
	assert.LessOrEqual(t, len(opt.Suggestions), 3)

	// Ranked by contribution: chicken breast tops the protein list.
	assert.Equal(t, "chicken breast", opt.Suggestions[0].Ingredient)
}

func TestOptimizeNutrition_ExcessTriggersReductions(t *testing.T) {
	e := testEngine()
	r := testutils.NewRecipeBuilder().
		WithIngredients("whole milk").
		WithNutrition(recipe.NutritionInfo{Fat: 30}).
		Build()

	opt := e.OptimizeNutrition(r, map[string]float64{"fat": 5}, nil, nil)

	require.NotEmpty(t, opt.Suggestions)
	for _, s := range opt.Suggestions {
		assert.Equal(t, SuggestionSubstitute, s.Type)
		assert.Equal(t, "whole milk", s.OriginalIngredient)
		assert.Greater(t, s.Reduction, 0.0)
	}
}

func TestOptimizationScore_Bands(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		target  float64
		want    float64
	}{
		{"at target", 50, 50, 1.0},
		{"top band boundary", 40, 50, 1.0},
		{"middle band", 30, 50, 0.7},
		{"middle band boundary", 25, 50, 0.7},
		{"bottom band", 10, 50, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := recipe.NutritionInfo{Protein: tt.current}
			got := optimizationScore(n, map[string]float64{"protein": tt.target})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptimizationScore_MeanAcrossTargets(t *testing.T) {
	n := recipe.NutritionInfo{Protein: 50, Fiber: 10}
	targets := map[string]float64{"protein": 50, "fiber": 40}

	// protein 1.0, fiber 10 < 20 (0.5*40) so 0.3; mean 0.65.
	assert.InDelta(t, 0.65, optimizationScore(n, targets), 1e-9)
}

func TestOptimizationScore_NoTargets(t *testing.T) {
	assert.Equal(t, 1.0, optimizationScore(recipe.NutritionInfo{}, nil))
	assert.Equal(t, 1.0, optimizationScore(recipe.NutritionInfo{}, map[string]float64{"protein": 0}))
}
