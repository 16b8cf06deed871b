// Package outbound defines the interfaces the application core consumes
// from infrastructure.
package outbound

import (
	"github.com/savorlabs/nutrimatch/internal/domain/guideline"
	"github.com/savorlabs/nutrimatch/internal/domain/recipe"
)

// Dataset bundles the read-only corpus and guideline data loaded at
// startup. Missing pieces arrive as empty collections, never nil panics.
type Dataset struct {
	Recipes   []recipe.Recipe
	Nutrients guideline.NutrientDB
	Tables    guideline.Tables
}

// DataSource supplies the startup dataset. Implementations load from
// embedded seed files or a configured directory.
type DataSource interface {
	Load() (Dataset, error)
}
