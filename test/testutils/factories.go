// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/savorlabs/nutrimatch/internal/domain/profile"
	"github.com/savorlabs/nutrimatch/internal/domain/recipe"
)

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// Recipe creates a random static recipe
func (f *RecipeFactory) Recipe() recipe.Recipe {
	return recipe.Recipe{
		ID:          uuid.NewString(),
		Title:       f.faker.Dinner(),
		Description: f.faker.Sentence(8),
		CuisineType: f.faker.RandomString([]string{"italian", "mexican", "asian", "mediterranean", "american"}),
		DietaryTags: []string{f.faker.RandomString([]string{"vegetarian", "vegan", "gluten_free", "keto", "dairy_free"})},
		Ingredients: f.Ingredients(4),
		Instructions: []string{
			f.faker.Sentence(6),
			f.faker.Sentence(6),
		},
		Nutrition: recipe.NutritionInfo{
			Calories:      float64(f.faker.IntRange(150, 800)),
			Protein:       float64(f.faker.IntRange(5, 50)),
			Carbohydrates: float64(f.faker.IntRange(10, 90)),
			Fat:           float64(f.faker.IntRange(2, 40)),
			Fiber:         float64(f.faker.IntRange(0, 15)),
		},
		PrepTime:   f.faker.IntRange(5, 30),
		CookTime:   f.faker.IntRange(10, 60),
		Servings:   f.faker.IntRange(1, 8),
		Difficulty: recipe.DifficultyMedium,
		Source:     recipe.SourceStatic,
	}
}

// Recipes creates n random static recipes
func (f *RecipeFactory) Recipes(n int) []recipe.Recipe {
	recipes := make([]recipe.Recipe, 0, n)
	for i := 0; i < n; i++ {
		recipes = append(recipes, f.Recipe())
	}
	return recipes
}

// Ingredients creates n random ingredients
func (f *RecipeFactory) Ingredients(n int) []recipe.Ingredient {
	ingredients := make([]recipe.Ingredient, 0, n)
	for i := 0; i < n; i++ {
		ingredients = append(ingredients, recipe.Ingredient{
			Name:   f.faker.Vegetable(),
			Amount: float64(f.faker.IntRange(1, 4)),
			Unit:   f.faker.RandomString([]string{"cup", "tbsp", "tsp", "g"}),
		})
	}
	return ingredients
}

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	recipe recipe.Recipe
}

// NewRecipeBuilder creates a new recipe builder with default values
func NewRecipeBuilder() *RecipeBuilder {
	return &RecipeBuilder{
		recipe: recipe.Recipe{
			ID:          uuid.NewString(),
			Title:       "Test Recipe",
			Description: "A simple test recipe",
			CuisineType: "mediterranean",
			Ingredients: []recipe.Ingredient{
				{Name: "olive oil", Amount: 2, Unit: "tbsp"},
				{Name: "tomato", Amount: 3, Unit: ""},
			},
			Instructions: []string{"Combine everything", "Serve"},
			Nutrition: recipe.NutritionInfo{
				Calories:      350,
				Protein:       12,
				Carbohydrates: 40,
				Fat:           14,
				Fiber:         6,
			},
			PrepTime:   10,
			CookTime:   20,
			Servings:   2,
			Difficulty: recipe.DifficultyEasy,
			Source:     recipe.SourceStatic,
		},
	}
}

// WithTitle sets the recipe title
func (rb *RecipeBuilder) WithTitle(title string) *RecipeBuilder {
	rb.recipe.Title = title
	return rb
}

// WithCuisine sets the cuisine type
func (rb *RecipeBuilder) WithCuisine(cuisine string) *RecipeBuilder {
	rb.recipe.CuisineType = cuisine
	return rb
}

// WithDietaryTags sets the dietary tags
func (rb *RecipeBuilder) WithDietaryTags(tags ...string) *RecipeBuilder {
	rb.recipe.DietaryTags = tags
	return rb
}

// WithHealthBenefits sets the health benefit tags
func (rb *RecipeBuilder) WithHealthBenefits(benefits ...string) *RecipeBuilder {
	rb.recipe.HealthBenefits = benefits
	return rb
}

// WithIngredients sets the recipe ingredients by name
func (rb *RecipeBuilder) WithIngredients(names ...string) *RecipeBuilder {
	ingredients := make([]recipe.Ingredient, 0, len(names))
	for _, name := range names {
		ingredients = append(ingredients, recipe.Ingredient{Name: name, Amount: 1, Unit: "cup"})
	}
	rb.recipe.Ingredients = ingredients
	return rb
}

// WithNutrition sets the nutrition record
func (rb *RecipeBuilder) WithNutrition(n recipe.NutritionInfo) *RecipeBuilder {
	rb.recipe.Nutrition = n
	return rb
}

// Build returns the constructed recipe
func (rb *RecipeBuilder) Build() recipe.Recipe {
	return rb.recipe
}

// ProfileBuilder provides a fluent interface for building user profiles
type ProfileBuilder struct {
	profile profile.UserProfile
}

// NewProfileBuilder creates a new profile builder with empty defaults
func NewProfileBuilder() *ProfileBuilder {
	return &ProfileBuilder{}
}

// WithRestrictions sets the dietary restrictions
func (pb *ProfileBuilder) WithRestrictions(restrictions ...string) *ProfileBuilder {
	pb.profile.DietaryRestrictions = restrictions
	return pb
}

// WithAllergies sets the allergies
func (pb *ProfileBuilder) WithAllergies(allergies ...string) *ProfileBuilder {
	pb.profile.Allergies = allergies
	return pb
}

// WithConditions sets the health conditions
func (pb *ProfileBuilder) WithConditions(conditions ...string) *ProfileBuilder {
	pb.profile.HealthConditions = conditions
	return pb
}

// WithCuisines sets the cuisine preferences
func (pb *ProfileBuilder) WithCuisines(cuisines ...string) *ProfileBuilder {
	pb.profile.CuisinePreferences = cuisines
	return pb
}

// WithGoals sets the nutritional goals
func (pb *ProfileBuilder) WithGoals(goals map[string]float64) *ProfileBuilder {
	pb.profile.NutritionalGoals = goals
	return pb
}

// Build returns the constructed profile
func (pb *ProfileBuilder) Build() profile.UserProfile {
	return pb.profile
}
