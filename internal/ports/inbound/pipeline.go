// Package inbound defines the interfaces through which transports drive
// the application core.
package inbound

import (
	"github.com/savorlabs/nutrimatch/internal/application/pipeline"
	"github.com/savorlabs/nutrimatch/internal/domain/profile"
)

// RecipePipeline is the pipeline contract the HTTP surface consumes.
// Every operation is a bounded synchronous computation that degrades to
// empty results rather than failing.
type RecipePipeline interface {
	Search(req pipeline.SearchRequest) pipeline.SearchResponse
	Recommend(userProfile profile.UserProfile, n int, includeDynamic bool) pipeline.RecommendResponse
	Substitutions(ingredient string, restrictions, allergies []string) pipeline.SubstitutionResponse
	Stats() pipeline.Stats
}
