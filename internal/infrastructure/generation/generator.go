// Package generation synthesizes recipe candidates on demand. Generation
// is deterministic: every request derives its own faker seed from the
// configured base seed and the request parameters, so identical requests
// replay identically and concurrent calls share no RNG state.
package generation

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/savorlabs/nutrimatch/internal/domain/recipe"
	"go.uber.org/zap"
)

// category pools: keywords plus per-category calorie ranges.
var categories = []string{"breakfast", "lunch", "dinner", "dessert", "snack"}

var categoryKeywords = map[string][]string{
	"breakfast": {"pancakes", "oatmeal", "smoothie", "eggs", "toast"},
	"lunch":     {"salad", "sandwich", "soup", "pasta", "rice"},
	"dinner":    {"chicken", "fish", "beef", "vegetarian", "vegan"},
	"dessert":   {"cake", "cookies", "ice_cream", "pudding", "fruit"},
	"snack":     {"nuts", "fruit", "yogurt", "chips", "smoothie"},
}

var categoryCalories = map[string][2]int{
	"breakfast": {200, 400},
	"lunch":     {300, 600},
	"dinner":    {400, 800},
	"dessert":   {150, 350},
	"snack":     {100, 250},
}

var categoryIngredients = map[string][]string{
	"breakfast": {"eggs", "milk", "flour", "butter", "sugar", "vanilla"},
	"lunch":     {"chicken", "rice", "vegetables", "olive oil", "garlic", "onion"},
	"dinner":    {"beef", "pasta", "tomatoes", "cheese", "herbs", "wine"},
	"dessert":   {"flour", "sugar", "eggs", "butter", "vanilla", "chocolate"},
	"snack":     {"nuts", "fruits", "yogurt", "honey", "cinnamon", "seeds"},
}

var cuisines = []string{
	"mediterranean", "asian", "indian", "american", "italian",
	"mexican", "french", "thai", "japanese", "chinese",
}

var dietaryOptions = []string{
	"vegetarian", "vegan", "gluten-free", "dairy-free", "keto",
	"low_sodium", "diabetes_friendly", "heart_healthy",
}

var units = []string{"cup", "tbsp", "tsp", "oz", "piece"}

var ingredientNotes = []string{"", "fresh", "organic", "diced", "chopped"}

var instructionSteps = []string{
	"Prepare all ingredients as specified",
	"Heat cooking surface to medium temperature",
	"Combine ingredients in the specified order",
	"Cook until desired consistency is reached",
	"Let rest for a few minutes before serving",
	"Garnish and serve immediately",
}

// recipeNamespace anchors the deterministic v5 identifiers of synthesized
// recipes.
var recipeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("nutrimatch/generation"))

// Generator synthesizes recipes from a configured base seed.
type Generator struct {
	baseSeed int64
	logger   *zap.Logger
}

// NewGenerator creates a generator. The base seed is the only source of
// randomness; tests inject a fixed seed for replay.
func NewGenerator(baseSeed int64, logger *zap.Logger) *Generator {
	return &Generator{
		baseSeed: baseSeed,
		logger:   logger.Named("generation"),
	}
}

// Generate synthesizes n recipes for the query, respecting the dietary
// restriction filters. A non-positive n yields an empty slice.
func (g *Generator) Generate(query string, restrictions, allergies, conditions []string, n int) []recipe.Recipe {
	if n <= 0 {
		return []recipe.Recipe{}
	}

	faker := gofakeit.New(g.deriveSeed(query, restrictions, allergies, conditions, n))

	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) > 3 {
		keywords = keywords[:3]
	}
	if len(keywords) == 0 {
		keywords = categoryKeywords[categories[faker.Number(0, len(categories)-1)]]
	}

	recipes := make([]recipe.Recipe, 0, n)
	for i := 0; i < n; i++ {
		recipes = append(recipes, g.synthesize(faker, i+1, keywords, restrictions))
	}
	return recipes
}

// deriveSeed folds the request parameters into the base seed so each
// distinct request gets its own reproducible RNG stream.
func (g *Generator) deriveSeed(query string, restrictions, allergies, conditions []string, n int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s|%d",
		query,
		strings.Join(restrictions, ","),
		strings.Join(allergies, ","),
		strings.Join(conditions, ","),
		n,
	)
	return g.baseSeed ^ int64(h.Sum64())
}

func (g *Generator) synthesize(faker *gofakeit.Faker, serial int, keywords, restrictions []string) recipe.Recipe {
	category := categories[faker.Number(0, len(categories)-1)]
	cuisine := cuisines[faker.Number(0, len(cuisines)-1)]

	tags := sampleDietaryTags(faker, restrictions)
	benefits := deriveHealthBenefits(tags)
	ingredients := g.ingredients(faker, category, restrictions)
	nutrition := g.nutrition(faker, category, restrictions)

	titleParts := []string{capitalize(category)}
	if len(keywords) > 0 {
		titleParts = append(titleParts, capitalize(keywords[0]))
	}
	titleParts = append(titleParts, capitalize(cuisine)+" Style")
	title := strings.Join(titleParts, " ")

	return recipe.Recipe{
		ID:             uuid.NewSHA1(recipeNamespace, []byte(fmt.Sprintf("%s#%d", title, serial))).String(),
		Title:          title,
		Description:    fmt.Sprintf("A delicious %s recipe with %s influences", category, cuisine),
		CuisineType:    cuisine,
		DietaryTags:    tags,
		HealthBenefits: benefits,
		Ingredients:    ingredients,
		Instructions:   instructions(len(ingredients)),
		Nutrition:      nutrition,
		PrepTime:       faker.Number(10, 45),
		CookTime:       faker.Number(15, 60),
		Servings:       faker.Number(2, 6),
		Difficulty:     []recipe.Difficulty{recipe.DifficultyEasy, recipe.DifficultyMedium, recipe.DifficultyHard}[faker.Number(0, 2)],
		Source:         recipe.SourceDynamic,
	}
}

// sampleDietaryTags draws up to two extra tags beyond the user's
// restrictions, which are always attached.
func sampleDietaryTags(faker *gofakeit.Faker, restrictions []string) []string {
	available := make([]string, 0, len(dietaryOptions))
	for _, option := range dietaryOptions {
		if !containsString(restrictions, option) {
			available = append(available, option)
		}
	}
	faker.ShuffleStrings(available)

	extras := 2
	if len(available) < extras {
		extras = len(available)
	}

	tags := append([]string{}, available[:extras]...)
	tags = append(tags, restrictions...)
	return tags
}

// deriveHealthBenefits maps the attached dietary tags to benefit tags.
func deriveHealthBenefits(tags []string) []string {
	benefits := []string{}
	if containsString(tags, "diabetes_friendly") {
		benefits = append(benefits, "diabetes_friendly", "blood_sugar_control")
	}
	if containsString(tags, "heart_healthy") {
		benefits = append(benefits, "heart_healthy", "cholesterol_lowering")
	}
	if containsString(tags, "vegetarian") {
		benefits = append(benefits, "plant_based")
	}
	if containsString(tags, "vegan") {
		benefits = append(benefits, "plant_based", "dairy_free")
	}
	return benefits
}

// ingredients builds the pool for the category, filters it against the
// restrictions, and dresses up to six entries with amounts and units.
func (g *Generator) ingredients(faker *gofakeit.Faker, category string, restrictions []string) []recipe.Ingredient {
	pool := append([]string{}, categoryIngredients[category]...)

	if containsString(restrictions, "vegetarian") {
		pool = exclude(pool, "beef", "chicken")
	}
	if containsString(restrictions, "vegan") {
		pool = exclude(pool, "beef", "chicken", "milk", "eggs", "cheese", "butter")
	}
	if containsString(restrictions, "gluten-free") || containsString(restrictions, "gluten_free") {
		pool = exclude(pool, "flour", "pasta")
	}

	if len(pool) > 6 {
		pool = pool[:6]
	}

	ingredients := make([]recipe.Ingredient, 0, len(pool))
	for _, name := range pool {
		ingredients = append(ingredients, recipe.Ingredient{
			Name:   name,
			Amount: float64(faker.Number(1, 4)),
			Unit:   units[faker.Number(0, len(units)-1)],
			Notes:  ingredientNotes[faker.Number(0, len(ingredientNotes)-1)],
		})
	}
	return ingredients
}

// nutrition back-computes a record from the category calorie range and
// macro ratios. Keto shifts the split fat-dominant; vegetarian lowers the
// protein ratio.
func (g *Generator) nutrition(faker *gofakeit.Faker, category string, restrictions []string) recipe.NutritionInfo {
	calRange, ok := categoryCalories[category]
	if !ok {
		calRange = [2]int{200, 500}
	}
	calories := float64(faker.Number(calRange[0], calRange[1]))

	proteinRatio := 0.15
	if containsString(restrictions, "vegetarian") {
		proteinRatio = 0.10
	}
	carbRatio, fatRatio := 0.55, 0.30
	if containsString(restrictions, "keto") {
		carbRatio, fatRatio = 0.20, 0.70
	}

	return recipe.NutritionInfo{
		Calories:      calories,
		Protein:       float64(int(calories * proteinRatio / 4)),
		Carbohydrates: float64(int(calories * carbRatio / 4)),
		Fat:           float64(int(calories * fatRatio / 9)),
		Fiber:         float64(faker.Number(2, 8)),
		Sodium:        float64(faker.Number(200, 800)),
		Sugar:         float64(faker.Number(5, 25)),
	}
}

func instructions(ingredientCount int) []string {
	n := ingredientCount + 1
	if n > len(instructionSteps) {
		n = len(instructionSteps)
	}
	return append([]string{}, instructionSteps[:n]...)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func containsString(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}

func exclude(pool []string, banned ...string) []string {
	out := pool[:0]
	for _, item := range pool {
		if !containsString(banned, item) {
			out = append(out, item)
		}
	}
	return out
}
