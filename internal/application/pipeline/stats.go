package pipeline

import (
	"strings"

	"github.com/savorlabs/nutrimatch/internal/domain/guideline"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/generation"
)

// NutrientRange holds min/avg/max for one nutrient across the corpus.
type NutrientRange struct {
	Min float64 `json:"min"`
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
}

// Coverage reports how much of the corpus satisfies one restriction or
// condition.
type Coverage struct {
	TotalRecipes       int     `json:"total_recipes"`
	CompatibleRecipes  int     `json:"compatible_recipes"`
	CoveragePercentage float64 `json:"coverage_percentage"`
}

// Stats is the aggregate statistics surface consumed by presentation
// layers. All values default to zero on an empty corpus.
type Stats struct {
	TotalRecipes       int                      `json:"total_recipes"`
	UniqueIngredients  int                      `json:"unique_ingredients"`
	CuisineTypes       int                      `json:"cuisine_types"`
	DietaryTags        int                      `json:"dietary_tags_available"`
	HealthBenefits     int                      `json:"health_benefits_available"`
	EmbeddingDimension int                      `json:"embedding_dimension"`
	VocabularySize     int                      `json:"vocabulary_size"`
	IndexSize          int                      `json:"vector_store_size"`
	NutritionStats     map[string]NutrientRange `json:"nutrition_stats"`
	DietaryCoverage    map[string]Coverage      `json:"dietary_coverage"`
	HealthCoverage     map[string]Coverage      `json:"health_coverage"`
	GenerationSources  generation.SourceStats   `json:"generation_sources"`
}

// statsNutrients are the nutrients aggregated in the stats surface.
var statsNutrients = []string{"calories", "protein", "carbohydrates", "fat", "fiber"}

// Stats computes the aggregate statistics over the static corpus.
func (p *Pipeline) Stats() Stats {
	stats := Stats{
		TotalRecipes:       len(p.recipes),
		EmbeddingDimension: p.index.Dimension(),
		VocabularySize:     p.encoder.Vocabulary().Size(),
		IndexSize:          p.index.Size(),
		NutritionStats:     map[string]NutrientRange{},
		DietaryCoverage:    map[string]Coverage{},
		HealthCoverage:     map[string]Coverage{},
		GenerationSources:  p.generator.Stats(),
	}

	ingredients := map[string]struct{}{}
	cuisines := map[string]struct{}{}
	tags := map[string]struct{}{}
	benefits := map[string]struct{}{}
	for _, r := range p.recipes {
		cuisines[r.CuisineType] = struct{}{}
		for _, tag := range r.DietaryTags {
			tags[tag] = struct{}{}
		}
		for _, benefit := range r.HealthBenefits {
			benefits[benefit] = struct{}{}
		}
		for _, ing := range r.Ingredients {
			ingredients[strings.ToLower(ing.Name)] = struct{}{}
		}
	}
	stats.UniqueIngredients = len(ingredients)
	stats.CuisineTypes = len(cuisines)
	stats.DietaryTags = len(tags)
	stats.HealthBenefits = len(benefits)

	for _, nutrient := range statsNutrients {
		stats.NutritionStats[nutrient] = p.nutrientRange(nutrient)
	}

	for restriction := range p.tables.Restrictions {
		count := 0
		for _, r := range p.recipes {
			if r.HasDietaryTag(restriction) {
				count++
			}
		}
		stats.DietaryCoverage[restriction] = p.coverage(count)
	}

	for condition := range p.tables.Conditions {
		relevant := guideline.ConditionBenefits[condition]
		count := 0
		for _, r := range p.recipes {
			for _, benefit := range relevant {
				if r.HasHealthBenefit(benefit) {
					count++
					break
				}
			}
		}
		stats.HealthCoverage[condition] = p.coverage(count)
	}

	return stats
}

func (p *Pipeline) nutrientRange(nutrient string) NutrientRange {
	if len(p.recipes) == 0 {
		return NutrientRange{}
	}

	var min, max, sum float64
	for i, r := range p.recipes {
		value, _ := r.Nutrition.Nutrient(nutrient)
		if i == 0 || value < min {
			min = value
		}
		if value > max {
			max = value
		}
		sum += value
	}
	return NutrientRange{
		Min: min,
		Avg: sum / float64(len(p.recipes)),
		Max: max,
	}
}

func (p *Pipeline) coverage(compatible int) Coverage {
	cov := Coverage{
		TotalRecipes:      len(p.recipes),
		CompatibleRecipes: compatible,
	}
	if len(p.recipes) > 0 {
		cov.CoveragePercentage = float64(compatible) / float64(len(p.recipes)) * 100
	}
	return cov
}
