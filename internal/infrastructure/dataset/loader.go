// Package dataset loads the recipe corpus, nutrient database, and dietary
// guideline tables from JSON, and renders recipes into the document format
// the vector index consumes. Embedded seed data serves as the default; a
// configured directory overrides it file by file.
package dataset

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/savorlabs/nutrimatch/internal/domain/guideline"
	"github.com/savorlabs/nutrimatch/internal/domain/recipe"
	"github.com/savorlabs/nutrimatch/internal/ports/outbound"
	"go.uber.org/zap"
)

//go:embed seed/*.json
var seedFS embed.FS

const (
	recipesFile    = "recipes.json"
	nutritionFile  = "nutritional_data.json"
	guidelinesFile = "dietary_guidelines.json"
)

// nutritionDocument matches the nutrient database JSON layout.
type nutritionDocument struct {
	Ingredients guideline.NutrientDB `json:"ingredients"`
}

// JSONLoader implements outbound.DataSource over JSON files.
type JSONLoader struct {
	dir    string
	logger *zap.Logger
}

// NewJSONLoader creates a loader. An empty dir means embedded seed only;
// otherwise files found under dir take precedence over the seed.
func NewJSONLoader(dir string, logger *zap.Logger) *JSONLoader {
	return &JSONLoader{
		dir:    dir,
		logger: logger.Named("dataset"),
	}
}

// Load reads all three datasets. A missing or malformed file degrades to
// an empty collection; the pipeline is expected to operate on whatever
// loaded.
func (l *JSONLoader) Load() (outbound.Dataset, error) {
	ds := outbound.Dataset{
		Recipes:   []recipe.Recipe{},
		Nutrients: guideline.NutrientDB{},
	}

	if raw, ok := l.read(recipesFile); ok {
		var recipes []recipe.Recipe
		if err := json.Unmarshal(raw, &recipes); err != nil {
			l.logger.Warn("Skipping malformed recipes file", zap.Error(err))
		} else {
			ds.Recipes = recipes
		}
	}

	if raw, ok := l.read(nutritionFile); ok {
		var doc nutritionDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			l.logger.Warn("Skipping malformed nutrition file", zap.Error(err))
		} else if doc.Ingredients != nil {
			ds.Nutrients = doc.Ingredients
		}
	}

	if raw, ok := l.read(guidelinesFile); ok {
		var tables guideline.Tables
		if err := json.Unmarshal(raw, &tables); err != nil {
			l.logger.Warn("Skipping malformed guidelines file", zap.Error(err))
		} else {
			ds.Tables = tables
		}
	}

	l.logger.Info("Dataset loaded",
		zap.Int("recipes", len(ds.Recipes)),
		zap.Int("nutrient_entries", len(ds.Nutrients)),
		zap.Int("restrictions", len(ds.Tables.Restrictions)),
		zap.Int("allergies", len(ds.Tables.Allergies)),
		zap.Int("conditions", len(ds.Tables.Conditions)),
	)
	return ds, nil
}

// read returns the file contents, preferring the configured directory and
// falling back to the embedded seed.
func (l *JSONLoader) read(name string) ([]byte, bool) {
	if l.dir != "" {
		if raw, err := os.ReadFile(filepath.Join(l.dir, name)); err == nil {
			return raw, true
		}
	}
	raw, err := seedFS.ReadFile("seed/" + name)
	if err != nil {
		l.logger.Warn("Seed file missing", zap.String("file", name), zap.Error(err))
		return nil, false
	}
	return raw, true
}
