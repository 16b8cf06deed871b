package generation

// Source describes one recipe provider the generator could draw from.
// External API providers are registered disabled; only local synthesis is
// active.
type Source struct {
	Name      string `json:"name"`
	RateLimit int    `json:"rate_limit"`
	Enabled   bool   `json:"enabled"`
}

// SourceStats summarizes the provider registry for the stats surface.
type SourceStats struct {
	TotalSources     int      `json:"total_sources"`
	EnabledSources   int      `json:"enabled_sources"`
	AvailableSources []string `json:"available_sources"`
	TotalRateLimit   int      `json:"total_rate_limit"`
}

var sources = []Source{
	{Name: "spoonacular", RateLimit: 150, Enabled: false},
	{Name: "edamam", RateLimit: 10, Enabled: false},
	{Name: "local_synthesis", RateLimit: 1000, Enabled: true},
}

// AvailableSources returns the names of enabled providers.
func (g *Generator) AvailableSources() []string {
	names := []string{}
	for _, source := range sources {
		if source.Enabled {
			names = append(names, source.Name)
		}
	}
	return names
}

// Stats reports the provider registry summary.
func (g *Generator) Stats() SourceStats {
	enabled := g.AvailableSources()
	total := 0
	for _, source := range sources {
		if source.Enabled {
			total += source.RateLimit
		}
	}
	return SourceStats{
		TotalSources:     len(sources),
		EnabledSources:   len(enabled),
		AvailableSources: enabled,
		TotalRateLimit:   total,
	}
}
