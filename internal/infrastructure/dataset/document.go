package dataset

import (
	"fmt"
	"strings"

	"github.com/savorlabs/nutrimatch/internal/domain/recipe"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/vectorindex"
)

// maxChunkSize is the document chunk boundary in characters. Sections are
// never split mid-field.
const maxChunkSize = 1000

// Render flattens a recipe into the pipe-separated document format the
// index stores. The leading "Title: X" section is what the orchestrator
// parses to resolve hits back to canonical recipes.
func Render(r recipe.Recipe) string {
	ingredients := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ingredients = append(ingredients, ing.Name)
	}

	sections := []string{
		"Title: " + r.Title,
		"Description: " + r.Description,
		"Cuisine Type: " + r.CuisineType,
		"Dietary Tags: " + strings.Join(r.DietaryTags, ", "),
		"Health Benefits: " + strings.Join(r.HealthBenefits, ", "),
		"Ingredients: " + strings.Join(ingredients, ", "),
		"Instructions: " + strings.Join(r.Instructions, " "),
		fmt.Sprintf("Nutritional Info: Calories %g, Protein %gg, Carbs %gg, Fat %gg",
			r.Nutrition.Calories, r.Nutrition.Protein, r.Nutrition.Carbohydrates, r.Nutrition.Fat),
	}
	return strings.Join(sections, " | ")
}

// Chunk splits a rendered document at section boundaries, keeping each
// chunk under maxChunkSize characters. Documents under the limit come back
// whole.
func Chunk(text string) []string {
	if len(text) <= maxChunkSize {
		return []string{text}
	}

	chunks := []string{}
	current := ""
	for _, section := range strings.Split(text, " | ") {
		if len(current)+len(section) > maxChunkSize {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
			}
			current = section
		} else if current == "" {
			current = section
		} else {
			current += " | " + section
		}
	}
	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// Documents renders and chunks every recipe, returning the chunk texts
// alongside per-chunk metadata for the owning recipe.
func Documents(recipes []recipe.Recipe) ([]string, []vectorindex.Metadata) {
	texts := []string{}
	metadatas := []vectorindex.Metadata{}
	for _, r := range recipes {
		meta := ExtractMetadata(r)
		for _, chunk := range Chunk(Render(r)) {
			texts = append(texts, chunk)
			metadatas = append(metadatas, meta)
		}
	}
	return texts, metadatas
}

// ExtractMetadata yields the fields the filter language addresses.
func ExtractMetadata(r recipe.Recipe) vectorindex.Metadata {
	return vectorindex.Metadata{
		"id":              r.ID,
		"title":           r.Title,
		"cuisine_type":    r.CuisineType,
		"dietary_tags":    r.DietaryTags,
		"health_benefits": r.HealthBenefits,
		"ingredients":     r.IngredientNames(),
		"calories":        r.Nutrition.Calories,
		"protein":         r.Nutrition.Protein,
		"carbohydrates":   r.Nutrition.Carbohydrates,
		"fat":             r.Nutrition.Fat,
		"fiber":           r.Nutrition.Fiber,
	}
}
