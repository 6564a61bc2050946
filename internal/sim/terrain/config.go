package terrain

import (
	"fmt"
	"math"
)

// Bands holds the upper bounds of the first three density bands. A chunk's
// density roll selects: < Empty -> no features, < Forest -> forest,
// < City -> city, otherwise landmark.
type Bands struct {
	Empty  float64
	Forest float64
	City   float64
}

// CountRange is an inclusive feature-count range for one band.
type CountRange struct {
	Min int
	Max int
}

type Config struct {
	Seed            int64
	ChunkSize       float64
	RenderDistance  float64
	CleanupDistance float64

	Bands         Bands
	ForestTrees   CountRange
	CityBuildings CountRange
	Landmarks     CountRange
}

// DefaultConfig returns the tuning the world was balanced around.
func DefaultConfig(seed int64) Config {
	return Config{
		Seed:            seed,
		ChunkSize:       150,
		RenderDistance:  400,
		CleanupDistance: 480,
		Bands:           Bands{Empty: 0.50, Forest: 0.65, City: 0.85},
		ForestTrees:     CountRange{Min: 3, Max: 7},
		CityBuildings:   CountRange{Min: 2, Max: 6},
		Landmarks:       CountRange{Min: 1, Max: 2},
	}
}

// Validate rejects configurations that would make a tick unbounded or let the
// registry grow without limit. Called at construction, never at tick time.
func (c Config) Validate() error {
	if !(c.ChunkSize > 0) || math.IsInf(c.ChunkSize, 0) {
		return fmt.Errorf("chunk_size must be a positive finite number, got %v", c.ChunkSize)
	}
	if !(c.RenderDistance > 0) || math.IsInf(c.RenderDistance, 0) {
		return fmt.Errorf("render_distance must be a positive finite number, got %v", c.RenderDistance)
	}
	if !(c.CleanupDistance > c.RenderDistance) {
		return fmt.Errorf("cleanup_distance (%v) must be strictly greater than render_distance (%v)",
			c.CleanupDistance, c.RenderDistance)
	}
	b := c.Bands
	if !(b.Empty > 0 && b.Empty <= b.Forest && b.Forest <= b.City && b.City < 1) {
		return fmt.Errorf("density bands must satisfy 0 < empty <= forest <= city < 1, got %+v", b)
	}
	for _, r := range []struct {
		name string
		cr   CountRange
	}{
		{"forest_trees", c.ForestTrees},
		{"city_buildings", c.CityBuildings},
		{"landmarks", c.Landmarks},
	} {
		if r.cr.Min < 0 || r.cr.Max < r.cr.Min {
			return fmt.Errorf("%s count range invalid: min=%d max=%d", r.name, r.cr.Min, r.cr.Max)
		}
	}
	return nil
}
