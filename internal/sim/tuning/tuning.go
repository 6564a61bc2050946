package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"skystream/internal/sim/terrain"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	WorldID    string `yaml:"world_id"`
	TickRateHz int    `yaml:"tick_rate_hz"`
	Seed       int64  `yaml:"seed"`

	ChunkSize       float64 `yaml:"chunk_size"`
	RenderDistance  float64 `yaml:"render_distance"`
	CleanupDistance float64 `yaml:"cleanup_distance"`

	DensityBands  DensityBands `yaml:"density_bands"`
	ForestTrees   CountRange   `yaml:"forest_trees"`
	CityBuildings CountRange   `yaml:"city_buildings"`
	Landmarks     CountRange   `yaml:"landmarks"`
}

// DensityBands are the upper bounds of the empty/forest/city bands; the
// remainder up to 1.0 is the landmark band.
type DensityBands struct {
	Empty  float64 `yaml:"empty"`
	Forest float64 `yaml:"forest"`
	City   float64 `yaml:"city"`
}

type CountRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func Defaults() Tuning {
	tc := terrain.DefaultConfig(1337)
	return Tuning{
		ProtocolVersion: "1.0",
		WorldID:         "world_1",
		TickRateHz:      20,
		Seed:            tc.Seed,
		ChunkSize:       tc.ChunkSize,
		RenderDistance:  tc.RenderDistance,
		CleanupDistance: tc.CleanupDistance,
		DensityBands:    DensityBands{Empty: tc.Bands.Empty, Forest: tc.Bands.Forest, City: tc.Bands.City},
		ForestTrees:     CountRange{Min: tc.ForestTrees.Min, Max: tc.ForestTrees.Max},
		CityBuildings:   CountRange{Min: tc.CityBuildings.Min, Max: tc.CityBuildings.Max},
		Landmarks:       CountRange{Min: tc.Landmarks.Min, Max: tc.Landmarks.Max},
	}
}

// Load reads tuning.yaml; fields left unset fall back to defaults. Validation
// of the resulting terrain config happens at world construction.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// TerrainConfig maps the tuning onto the streaming core's configuration.
func (t Tuning) TerrainConfig() terrain.Config {
	return terrain.Config{
		Seed:            t.Seed,
		ChunkSize:       t.ChunkSize,
		RenderDistance:  t.RenderDistance,
		CleanupDistance: t.CleanupDistance,
		Bands: terrain.Bands{
			Empty:  t.DensityBands.Empty,
			Forest: t.DensityBands.Forest,
			City:   t.DensityBands.City,
		},
		ForestTrees:   terrain.CountRange{Min: t.ForestTrees.Min, Max: t.ForestTrees.Max},
		CityBuildings: terrain.CountRange{Min: t.CityBuildings.Min, Max: t.CityBuildings.Max},
		Landmarks:     terrain.CountRange{Min: t.Landmarks.Min, Max: t.Landmarks.Max},
	}
}
