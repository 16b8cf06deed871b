package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/savorlabs/nutrimatch/internal/domain/guideline"
	"github.com/savorlabs/nutrimatch/internal/domain/profile"
	"github.com/savorlabs/nutrimatch/internal/domain/recipe"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/monitoring"
	"github.com/savorlabs/nutrimatch/internal/ports/outbound"
	"github.com/savorlabs/nutrimatch/test/testutils"
)

// staticSource is a DataSource over a fixed in-memory dataset.
type staticSource struct {
	ds outbound.Dataset
}

func (s staticSource) Load() (outbound.Dataset, error) {
	return s.ds, nil
}

func testDataset() outbound.Dataset {
	tables := guideline.Tables{
		Restrictions: map[string]guideline.DietaryRule{
			"vegan": {
				ExcludedIngredients: []string{"beef", "chicken", "milk", "eggs", "cheese", "butter"},
			},
			"vegetarian": {
				ExcludedIngredients: []string{"beef", "chicken", "fish", "shrimp"},
			},
		},
		Allergies: map[string]guideline.AllergyRule{
			"soy": {
				IncompatibleIngredients: []string{"soy sauce", "tofu", "edamame"},
			},
			"dairy": {
				IncompatibleIngredients: []string{"milk", "whole milk", "cheese", "butter", "cream"},
			},
		},
		Conditions: map[string]guideline.ConditionRule{
			"diabetes": {
				RecommendedBenefits:  []string{"diabetes_friendly", "blood_sugar_control"},
				AvoidNutrients:       []string{"sugar"},
				RecommendedNutrients: []string{"fiber", "protein"},
			},
		},
		Substitutions: map[string]guideline.SubstitutionRule{
			"milk": {
				Substitutes: []guideline.SubstituteOption{
					{Name: "oat milk", Ratio: "1:1"},
				},
			},
		},
	}

	nutrients := guideline.NutrientDB{
		"milk": {
			Nutrition: recipe.NutritionInfo{Calories: 42, Protein: 3.4, Carbohydrates: 5, Fat: 1},
		},
		"oat milk": {
			Nutrition:   recipe.NutritionInfo{Calories: 47, Protein: 1, Carbohydrates: 7.6, Fat: 1.5},
			DietaryTags: []string{"vegan", "dairy_free"},
		},
		"lentils": {
			Nutrition:   recipe.NutritionInfo{Calories: 116, Protein: 9, Carbohydrates: 20, Fat: 0.4, Fiber: 7.9},
			DietaryTags: []string{"vegan", "vegetarian"},
		},
	}

	recipes := []recipe.Recipe{
		testutils.NewRecipeBuilder().
			WithTitle("Tofu Stir Fry").
			WithCuisine("asian").
			WithDietaryTags("vegan", "vegetarian").
			WithIngredients("tofu", "soy sauce", "broccoli", "rice").
			Build(),
		testutils.NewRecipeBuilder().
			WithTitle("Veggie Rice Bowl").
			WithCuisine("asian").
			WithDietaryTags("vegan", "vegetarian").
			WithIngredients("rice", "broccoli", "carrot").
			Build(),
		testutils.NewRecipeBuilder().
			WithTitle("Beef Lasagna").
			WithCuisine("italian").
			WithDietaryTags().
			WithIngredients("beef", "pasta", "cheese", "milk").
			Build(),
		testutils.NewRecipeBuilder().
			WithTitle("Lentil Soup").
			WithCuisine("mediterranean").
			WithDietaryTags("vegan", "vegetarian").
			WithHealthBenefits("diabetes_friendly", "heart_healthy").
			WithIngredients("lentils", "carrot", "onion").
			WithNutrition(recipe.NutritionInfo{Calories: 280, Protein: 16, Carbohydrates: 40, Fat: 4, Fiber: 12}).
			Build(),
	}

	return outbound.Dataset{Recipes: recipes, Nutrients: nutrients, Tables: tables}
}

func newTestPipeline(t *testing.T, ds outbound.Dataset) *Pipeline {
	t.Helper()
	metrics := monitoring.NewMetrics(zap.NewNop())
	p, err := New(staticSource{ds: ds}, Options{
		EmbeddingDimension: 64,
		QueryCacheSize:     16,
		GenerationSeed:     42,
		DefaultResults:     5,
		MaxResults:         10,
	}, metrics, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestSearch_ReturnsRelevantStaticRecipes(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Search(SearchRequest{Query: "tofu stir fry", NResults: 4})

	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "Tofu Stir Fry", resp.Results[0].Recipe.Title)
	assert.Equal(t, "tofu stir fry", resp.Query)
}

func TestSearch_IdempotentWithFixedSeed(t *testing.T) {
	p := newTestPipeline(t, testDataset())
	req := SearchRequest{
		Query:               "healthy dinner",
		DietaryRestrictions: []string{"vegan"},
		NResults:            5,
		IncludeDynamic:      true,
	}

	a := p.Search(req)
	b := p.Search(req)

	require.Equal(t, len(a.Results), len(b.Results))
	for i := range a.Results {
		assert.Equal(t, a.Results[i].Recipe.Title, b.Results[i].Recipe.Title)
		assert.Equal(t, a.Results[i].OverallScore, b.Results[i].OverallScore)
	}
}

func TestSearch_ResultsSortedAndBounded(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Search(SearchRequest{Query: "rice", NResults: 3, IncludeDynamic: true})

	assert.LessOrEqual(t, len(resp.Results), 3)
	assert.GreaterOrEqual(t, resp.TotalFound, len(resp.Results))
	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].OverallScore, resp.Results[i].OverallScore)
	}
}

func TestSearch_NonPositiveNUsesDefault(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Search(SearchRequest{Query: "rice", NResults: 0})

	assert.LessOrEqual(t, len(resp.Results), 5)
}

func TestSearch_ClampsToMaxResults(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Search(SearchRequest{Query: "rice", NResults: 500, IncludeDynamic: true})

	assert.LessOrEqual(t, len(resp.Results), 10)
}

func TestSearch_AllergyPrefilterExcludesListedIngredients(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Search(SearchRequest{
		Query:     "asian rice",
		Allergies: []string{"soy"},
		NResults:  5,
	})

	for _, result := range resp.Results {
		assert.NotEqual(t, "Tofu Stir Fry", result.Recipe.Title)
	}
	assert.Equal(t, []string{"soy"}, resp.FiltersApplied.Allergies)
}

func TestSearch_RestrictionFilterGatesOnTags(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Search(SearchRequest{
		Query:               "dinner",
		DietaryRestrictions: []string{"vegan"},
		NResults:            5,
	})

	for _, result := range resp.Results {
		assert.True(t, result.Recipe.HasDietaryTag("vegan"),
			"recipe %q lacks vegan tag", result.Recipe.Title)
	}
}

func TestSearch_ConditionFilterGatesOnBenefits(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Search(SearchRequest{
		Query:            "soup",
		HealthConditions: []string{"diabetes"},
		NResults:         5,
	})

	require.NotEmpty(t, resp.Results)
	for _, result := range resp.Results {
		assert.Equal(t, "Lentil Soup", result.Recipe.Title)
	}
}

func TestSearch_SyntheticCandidates(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Search(SearchRequest{Query: "exotic space cuisine", NResults: 5, IncludeDynamic: true})

	var sawSynthetic bool
	for _, result := range resp.Results {
		if result.Recipe.Source == recipe.SourceDynamic {
			sawSynthetic = true
			assert.Equal(t, 0.8, result.SearchScore)
			assert.Equal(t, 0.2, result.Distance)
			assert.InDelta(t, result.Compatibility.OverallScore*0.8, result.OverallScore, 1e-9)
		}
	}
	assert.True(t, sawSynthetic)
	assert.True(t, resp.DynamicRecipesIncluded)
}

func TestSearch_StaticOnlyWhenDynamicDisabled(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Search(SearchRequest{Query: "rice", NResults: 5, IncludeDynamic: false})

	for _, result := range resp.Results {
		assert.Equal(t, recipe.SourceStatic, result.Recipe.Source)
	}
	assert.False(t, resp.DynamicRecipesIncluded)
}

func TestSearch_DeduplicatesByTitle(t *testing.T) {
	ds := testDataset()
	// A second copy of an existing title indexes more documents but must
	// surface at most once.
	ds.Recipes = append(ds.Recipes, testutils.NewRecipeBuilder().
		WithTitle("Veggie Rice Bowl").
		WithCuisine("asian").
		WithDietaryTags("vegan").
		WithIngredients("rice", "peas").
		Build())
	p := newTestPipeline(t, ds)

	resp := p.Search(SearchRequest{Query: "veggie rice bowl", NResults: 10})

	seen := map[string]int{}
	for _, result := range resp.Results {
		seen[result.Recipe.Title]++
	}
	assert.Equal(t, 1, seen["Veggie Rice Bowl"])
}

func TestSearch_EmptyCorpus(t *testing.T) {
	p := newTestPipeline(t, outbound.Dataset{})

	resp := p.Search(SearchRequest{Query: "anything", NResults: 5})

	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.TotalFound)
}

func TestSearch_EmptyCorpusStillGeneratesDynamic(t *testing.T) {
	p := newTestPipeline(t, outbound.Dataset{})

	resp := p.Search(SearchRequest{Query: "anything", NResults: 5, IncludeDynamic: true})

	require.NotEmpty(t, resp.Results)
	for _, result := range resp.Results {
		assert.Equal(t, recipe.SourceDynamic, result.Recipe.Source)
	}
}

func TestRecommend_BuildsQueryFromProfile(t *testing.T) {
	p := newTestPipeline(t, testDataset())
	userProfile := testutils.NewProfileBuilder().
		WithCuisines("asian").
		WithGoals(map[string]float64{"protein": 30, "fiber": 10}).
		Build()

	resp := p.Recommend(userProfile, 3, false)

	// Goal nutrients are appended sorted after cuisine preferences.
	assert.Equal(t, "asian fiber protein", resp.SearchQuery)
}

func TestRecommend_EmptyProfileFallsBackToGenericQuery(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Recommend(profile.UserProfile{}, 3, false)

	assert.Equal(t, "healthy recipe", resp.SearchQuery)
}

func TestRecommend_AttachesOptimizationWhenGoalsPresent(t *testing.T) {
	p := newTestPipeline(t, testDataset())
	userProfile := testutils.NewProfileBuilder().
		WithGoals(map[string]float64{"protein": 40}).
		Build()

	resp := p.Recommend(userProfile, 3, false)

	require.NotEmpty(t, resp.Recommendations)
	for _, rec := range resp.Recommendations {
		require.NotNil(t, rec.NutritionOptimization)
		assert.Contains(t, rec.NutritionOptimization.TargetNutrition, "protein")
	}
}

func TestRecommend_NoOptimizationWithoutGoals(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Recommend(profile.UserProfile{}, 3, false)

	require.NotEmpty(t, resp.Recommendations)
	for _, rec := range resp.Recommendations {
		assert.Nil(t, rec.NutritionOptimization)
	}
}

func TestRecommend_BoundedByN(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Recommend(profile.UserProfile{}, 2, true)

	assert.LessOrEqual(t, len(resp.Recommendations), 2)
}

func TestSubstitutions_Response(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	resp := p.Substitutions("milk", []string{"vegan"}, []string{"dairy"})

	assert.Equal(t, "milk", resp.OriginalIngredient)
	assert.Equal(t, len(resp.Substitutions), resp.TotalOptions)
	assert.Equal(t, []string{"vegan"}, resp.FiltersApplied.DietaryRestrictions)
	require.NotEmpty(t, resp.Substitutions)
	assert.Equal(t, "oat milk", resp.Substitutions[0].SubstituteName)
}

func TestStats_ReflectsCorpus(t *testing.T) {
	p := newTestPipeline(t, testDataset())

	stats := p.Stats()

	assert.Equal(t, 4, stats.TotalRecipes)
	assert.Equal(t, 64, stats.EmbeddingDimension)
	assert.Greater(t, stats.VocabularySize, 0)
	assert.GreaterOrEqual(t, stats.IndexSize, stats.TotalRecipes)
	assert.Equal(t, 3, stats.CuisineTypes)
	assert.Contains(t, stats.NutritionStats, "calories")
	assert.Contains(t, stats.DietaryCoverage, "vegan")
	assert.Contains(t, stats.HealthCoverage, "diabetes")
	assert.Equal(t, []string{"local_synthesis"}, stats.GenerationSources.AvailableSources)
}

func TestStats_EmptyCorpus(t *testing.T) {
	p := newTestPipeline(t, outbound.Dataset{})

	stats := p.Stats()

	assert.Zero(t, stats.TotalRecipes)
	assert.Zero(t, stats.IndexSize)
	assert.Equal(t, Coverage{}, stats.DietaryCoverage["vegan"])
}

func TestAnalyze_Passthrough(t *testing.T) {
	p := newTestPipeline(t, testDataset())
	r := testutils.NewRecipeBuilder().WithIngredients("tofu").Build()

	res := p.Analyze(r, nil, []string{"soy"}, nil)

	assert.Equal(t, 0.0, res.OverallScore)
}
