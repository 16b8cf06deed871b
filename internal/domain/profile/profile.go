// Package profile defines the per-request user profile consumed by the
// recommendation pipeline. Profiles are never persisted by the core.
package profile

// UserProfile captures a user's dietary constraints and goals for a single
// recommendation request. Goals map nutrient names ("protein", "fiber", ...)
// to target values; an empty map means no nutritional optimization.
type UserProfile struct {
	DietaryRestrictions []string           `json:"dietary_restrictions"`
	Allergies           []string           `json:"allergies"`
	HealthConditions    []string           `json:"health_conditions"`
	CuisinePreferences  []string           `json:"cuisine_preferences"`
	NutritionalGoals    map[string]float64 `json:"nutritional_goals"`
}

// HasGoals reports whether the profile carries any nutritional goals.
func (p UserProfile) HasGoals() bool {
	return len(p.NutritionalGoals) > 0
}
