// Package pipeline implements the ranking orchestrator: it owns the
// embedder, index, analyzer, substitution engine, and generator, builds
// the corpus index eagerly at construction, and serves read-only search,
// recommendation, substitution, and stats operations afterwards.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/savorlabs/nutrimatch/internal/application/dietary"
	"github.com/savorlabs/nutrimatch/internal/application/substitution"
	"github.com/savorlabs/nutrimatch/internal/domain/guideline"
	"github.com/savorlabs/nutrimatch/internal/domain/profile"
	"github.com/savorlabs/nutrimatch/internal/domain/recipe"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/dataset"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/embedding"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/generation"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/monitoring"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/vectorindex"
	"github.com/savorlabs/nutrimatch/internal/ports/outbound"
	"go.uber.org/zap"
)

// Score fusion weights for statically indexed candidates.
const (
	searchWeight        = 0.6
	compatibilityWeight = 0.4
)

// Synthetic candidates are not compared against the index; they carry a
// fixed search score and distance.
const (
	syntheticSearchScore = 0.8
	syntheticDistance    = 0.2
)

const titlePrefix = "Title: "

// Options configures pipeline construction.
type Options struct {
	EmbeddingDimension int
	QueryCacheSize     int
	GenerationSeed     int64
	DefaultResults     int
	MaxResults         int
}

// SearchRequest is one search operation.
type SearchRequest struct {
	Query               string
	DietaryRestrictions []string
	Allergies           []string
	HealthConditions    []string
	NResults            int
	IncludeDynamic      bool
}

// SearchResult is one ranked candidate. NutritionOptimization is attached
// only in recommendation mode when the profile carries goals.
type SearchResult struct {
	Recipe                recipe.Recipe              `json:"recipe"`
	Compatibility         dietary.Result             `json:"compatibility"`
	SearchScore           float64                    `json:"search_score"`
	OverallScore          float64                    `json:"overall_score"`
	Distance              float64                    `json:"distance"`
	Metadata              vectorindex.Metadata       `json:"metadata"`
	NutritionOptimization *substitution.Optimization `json:"nutrition_optimization,omitempty"`
}

// FiltersApplied echoes the constraint sets of a request.
type FiltersApplied struct {
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Allergies           []string `json:"allergies"`
	HealthConditions    []string `json:"health_conditions"`
}

// SearchResponse is the search operation contract.
type SearchResponse struct {
	Results                []SearchResult `json:"results"`
	TotalFound             int            `json:"total_found"`
	Query                  string         `json:"query"`
	FiltersApplied         FiltersApplied `json:"filters_applied"`
	DynamicRecipesIncluded bool           `json:"dynamic_recipes_included"`
}

// RecommendResponse is the recommendation operation contract.
type RecommendResponse struct {
	Recommendations        []SearchResult      `json:"recommendations"`
	UserProfile            profile.UserProfile `json:"user_profile"`
	SearchQuery            string              `json:"search_query"`
	DynamicRecipesIncluded bool                `json:"dynamic_recipes_included"`
}

// SubstitutionResponse is the substitution operation contract.
type SubstitutionResponse struct {
	OriginalIngredient string                `json:"original_ingredient"`
	Substitutions      []substitution.Option `json:"substitutions"`
	TotalOptions       int                   `json:"total_options"`
	FiltersApplied     FiltersApplied        `json:"filters_applied"`
}

// Pipeline is the ranking orchestrator. All state is built once in New;
// every method afterwards is read-only and safe for concurrent use.
type Pipeline struct {
	opts      Options
	logger    *zap.Logger
	metrics   *monitoring.Metrics
	encoder   *embedding.CachedEncoder
	index     *vectorindex.Index
	analyzer  *dietary.Analyzer
	subs      *substitution.Engine
	generator *generation.Generator
	recipes   []recipe.Recipe
	byTitle   map[string]recipe.Recipe
	tables    guideline.Tables
}

// New loads the dataset, fits the vocabulary, encodes and indexes the
// corpus, and wires the scoring components. This is the only mutating
// phase; the vocabulary is frozen when New returns.
func New(source outbound.DataSource, opts Options, metrics *monitoring.Metrics, logger *zap.Logger) (*Pipeline, error) {
	log := logger.Named("pipeline")

	ds, err := source.Load()
	if err != nil {
		return nil, err
	}

	if opts.EmbeddingDimension <= 0 {
		opts.EmbeddingDimension = 384
	}
	if opts.QueryCacheSize <= 0 {
		opts.QueryCacheSize = 256
	}
	if opts.DefaultResults <= 0 {
		opts.DefaultResults = 5
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 50
	}

	texts, metadatas := dataset.Documents(ds.Recipes)
	vocab := embedding.Fit(texts, opts.EmbeddingDimension)
	index := vectorindex.New(opts.EmbeddingDimension)
	index.Add(texts, metadatas, vocab.EncodeBatch(texts))

	byTitle := make(map[string]recipe.Recipe, len(ds.Recipes))
	for _, r := range ds.Recipes {
		byTitle[r.Title] = r
	}

	metrics.SetIndexedDocuments(index.Size())
	log.Info("Pipeline built",
		zap.Int("recipes", len(ds.Recipes)),
		zap.Int("documents", index.Size()),
		zap.Int("embedding_dimension", vocab.Dimension()),
		zap.Int("vocabulary_size", vocab.Size()),
	)

	return &Pipeline{
		opts:      opts,
		logger:    log,
		metrics:   metrics,
		encoder:   embedding.NewCachedEncoder(vocab, opts.QueryCacheSize),
		index:     index,
		analyzer:  dietary.NewAnalyzer(ds.Tables, logger),
		subs:      substitution.NewEngine(ds.Tables, ds.Nutrients, logger),
		generator: generation.NewGenerator(opts.GenerationSeed, logger),
		recipes:   ds.Recipes,
		byTitle:   byTitle,
		tables:    ds.Tables,
	}, nil
}

// Search runs the full retrieval-and-ranking flow: filtered index query,
// compatibility scoring and fusion of static hits, synthetic candidate
// generation, merge, dedup by title, and truncation to n.
func (p *Pipeline) Search(req SearchRequest) SearchResponse {
	start := time.Now()
	n := p.clampResults(req.NResults)

	filter := p.buildFilter(req.DietaryRestrictions, req.Allergies, req.HealthConditions)
	hits := p.index.Search(p.encoder.Encode(req.Query), 2*n, filter)

	results := p.scoreStaticHits(hits, req)
	if req.IncludeDynamic {
		results = append(results, p.scoreSyntheticCandidates(req, n)...)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].OverallScore > results[j].OverallScore
	})
	results = dedupByTitle(results)

	total := len(results)
	if len(results) > n {
		results = results[:n]
	}

	p.metrics.RecordSearch(time.Since(start))
	return SearchResponse{
		Results:    results,
		TotalFound: total,
		Query:      req.Query,
		FiltersApplied: FiltersApplied{
			DietaryRestrictions: req.DietaryRestrictions,
			Allergies:           req.Allergies,
			HealthConditions:    req.HealthConditions,
		},
		DynamicRecipesIncluded: req.IncludeDynamic,
	}
}

// scoreStaticHits resolves index hits to canonical recipes and fuses the
// normalized search score with the compatibility score. Unresolvable hits
// are dropped silently.
func (p *Pipeline) scoreStaticHits(hits []vectorindex.Hit, req SearchRequest) []SearchResult {
	maxDistance := 0.0
	for _, hit := range hits {
		if hit.Distance > maxDistance {
			maxDistance = hit.Distance
		}
	}

	results := []SearchResult{}
	for _, hit := range hits {
		r, ok := p.resolveRecipe(hit.Text)
		if !ok {
			continue
		}

		compat := p.analyzer.Analyze(r, req.DietaryRestrictions, req.Allergies, req.HealthConditions)

		// All-zero distances mean every hit matched perfectly; score them 1.0
		// rather than dividing by zero.
		searchScore := 1.0
		if maxDistance > 0 {
			searchScore = 1.0 - hit.Distance/maxDistance
		}

		results = append(results, SearchResult{
			Recipe:        r,
			Compatibility: compat,
			SearchScore:   searchScore,
			OverallScore:  searchScore*searchWeight + compat.OverallScore*compatibilityWeight,
			Distance:      hit.Distance,
			Metadata:      hit.Metadata,
		})
	}
	return results
}

// scoreSyntheticCandidates generates and scores up to n synthetic recipes.
// Generation failure degrades to an empty contribution.
func (p *Pipeline) scoreSyntheticCandidates(req SearchRequest, n int) []SearchResult {
	generated := p.generator.Generate(req.Query, req.DietaryRestrictions, req.Allergies, req.HealthConditions, n)
	p.metrics.RecordSyntheticCandidates(len(generated))

	results := make([]SearchResult, 0, len(generated))
	for _, r := range generated {
		compat := p.analyzer.Analyze(r, req.DietaryRestrictions, req.Allergies, req.HealthConditions)
		results = append(results, SearchResult{
			Recipe:        r,
			Compatibility: compat,
			SearchScore:   syntheticSearchScore,
			OverallScore:  compat.OverallScore * syntheticSearchScore,
			Distance:      syntheticDistance,
			Metadata:      dataset.ExtractMetadata(r),
		})
	}
	return results
}

// Recommend builds a query from the profile, searches with doubled width,
// and attaches nutrition optimization per result when goals are present.
func (p *Pipeline) Recommend(userProfile profile.UserProfile, n int, includeDynamic bool) RecommendResponse {
	n = p.clampResults(n)
	query := buildProfileQuery(userProfile)

	search := p.Search(SearchRequest{
		Query:               query,
		DietaryRestrictions: userProfile.DietaryRestrictions,
		Allergies:           userProfile.Allergies,
		HealthConditions:    userProfile.HealthConditions,
		NResults:            2 * n,
		IncludeDynamic:      includeDynamic,
	})

	results := search.Results
	if userProfile.HasGoals() {
		for i := range results {
			opt := p.subs.OptimizeNutrition(
				results[i].Recipe,
				userProfile.NutritionalGoals,
				userProfile.DietaryRestrictions,
				userProfile.Allergies,
			)
			results[i].NutritionOptimization = &opt
		}
	}
	if len(results) > n {
		results = results[:n]
	}

	p.metrics.RecordRecommendation()
	return RecommendResponse{
		Recommendations:        results,
		UserProfile:            userProfile,
		SearchQuery:            query,
		DynamicRecipesIncluded: includeDynamic,
	}
}

// Substitutions delegates to the substitution engine.
func (p *Pipeline) Substitutions(ingredient string, restrictions, allergies []string) SubstitutionResponse {
	options := p.subs.FindSubstitutions(ingredient, restrictions, allergies)
	p.metrics.RecordSubstitutionLookup()
	return SubstitutionResponse{
		OriginalIngredient: ingredient,
		Substitutions:      options,
		TotalOptions:       len(options),
		FiltersApplied: FiltersApplied{
			DietaryRestrictions: restrictions,
			Allergies:           allergies,
		},
	}
}

// Analyze exposes the compatibility analyzer for a single recipe.
func (p *Pipeline) Analyze(r recipe.Recipe, restrictions, allergies, conditions []string) dietary.Result {
	return p.analyzer.Analyze(r, restrictions, allergies, conditions)
}

// buildFilter translates the constraint sets into the index filter
// language: restrictions gate on dietary tags, allergies exclude recipes
// containing guideline-incompatible ingredients, conditions gate on the
// mapped benefit tags.
func (p *Pipeline) buildFilter(restrictions, allergies, conditions []string) vectorindex.Filter {
	filter := vectorindex.Filter{}

	if len(restrictions) > 0 {
		filter["dietary_tags"] = vectorindex.In{Values: restrictions}
	}

	if len(allergies) > 0 {
		incompatible := []string{}
		for _, allergy := range allergies {
			incompatible = append(incompatible, p.tables.Allergy(allergy).IncompatibleIngredients...)
		}
		if len(incompatible) > 0 {
			filter["ingredients"] = vectorindex.NotContains{Values: incompatible}
		}
	}

	if len(conditions) > 0 {
		benefits := []string{}
		for _, condition := range conditions {
			benefits = append(benefits, guideline.ConditionBenefits[condition]...)
		}
		if len(benefits) > 0 {
			filter["health_benefits"] = vectorindex.In{Values: benefits}
		}
	}

	return filter
}

// buildProfileQuery composes the recommendation query from cuisine
// preferences and goal nutrient names, sorted for determinism. An empty
// profile falls back to a generic query.
func buildProfileQuery(p profile.UserProfile) string {
	parts := append([]string{}, p.CuisinePreferences...)

	goals := make([]string, 0, len(p.NutritionalGoals))
	for nutrient := range p.NutritionalGoals {
		goals = append(goals, nutrient)
	}
	sort.Strings(goals)
	parts = append(parts, goals...)

	if len(parts) == 0 {
		return "healthy recipe"
	}
	return strings.Join(parts, " ")
}

// resolveRecipe maps a document's "Title: X | ..." prefix back to the
// canonical recipe. Resolution failure is silent.
func (p *Pipeline) resolveRecipe(text string) (recipe.Recipe, bool) {
	if !strings.Contains(text, " | ") {
		return recipe.Recipe{}, false
	}
	head := strings.SplitN(text, " | ", 2)[0]
	if !strings.HasPrefix(head, titlePrefix) {
		return recipe.Recipe{}, false
	}
	r, ok := p.byTitle[strings.TrimPrefix(head, titlePrefix)]
	return r, ok
}

// dedupByTitle keeps the first occurrence of each title. Results are
// already sorted descending, so the highest-scored instance survives.
func dedupByTitle(results []SearchResult) []SearchResult {
	seen := make(map[string]struct{}, len(results))
	unique := results[:0]
	for _, result := range results {
		if _, ok := seen[result.Recipe.Title]; ok {
			continue
		}
		seen[result.Recipe.Title] = struct{}{}
		unique = append(unique, result)
	}
	return unique
}

func (p *Pipeline) clampResults(n int) int {
	if n <= 0 {
		return p.opts.DefaultResults
	}
	if n > p.opts.MaxResults {
		return p.opts.MaxResults
	}
	return n
}
