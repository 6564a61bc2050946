package terrain

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// TickReport summarizes what a single streaming tick did.
type TickReport struct {
	Tick           uint64       `json:"tick"`
	Pos            mgl64.Vec3   `json:"pos"`
	Generated      []ChunkCoord `json:"generated,omitempty"`
	Evicted        []ChunkCoord `json:"evicted,omitempty"`
	ActiveChunks   int          `json:"active_chunks"`
	ActiveFeatures int          `json:"active_features"`
}

// Streamer keeps the registry in sync with a moving observer. It is stateless
// across ticks beyond what the registry persists.
type Streamer struct {
	cfg Config
	gen Generator
	reg *Registry
}

func NewStreamer(cfg Config) (*Streamer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("terrain config: %w", err)
	}
	return &Streamer{
		cfg: cfg,
		gen: NewGenerator(cfg),
		reg: NewRegistry(cfg.ChunkSize),
	}, nil
}

func (s *Streamer) Config() Config { return s.cfg }

func (s *Streamer) Registry() *Registry { return s.reg }

// Tick generates every not-yet-generated chunk whose center lies within the
// render distance of pos, then evicts everything beyond the cleanup distance.
// Non-finite positions are rejected without mutating anything; NaN distances
// comparing false would otherwise keep eviction from ever running.
func (s *Streamer) Tick(pos mgl64.Vec3) (TickReport, error) {
	for i := 0; i < 3; i++ {
		if math.IsNaN(pos[i]) || math.IsInf(pos[i], 0) {
			return TickReport{}, fmt.Errorf("non-finite observer position %v", pos)
		}
	}

	obs := CoordAt(pos, s.cfg.ChunkSize)
	gridRadius := int(math.Ceil(s.cfg.RenderDistance / s.cfg.ChunkSize))

	var generated []ChunkCoord
	for dz := -gridRadius; dz <= gridRadius; dz++ {
		for dx := -gridRadius; dx <= gridRadius; dx++ {
			c := ChunkCoord{X: obs.X + dx, Z: obs.Z + dz}
			if s.reg.HasGenerated(c) {
				continue
			}
			if c.distXZ(pos, s.cfg.ChunkSize) >= s.cfg.RenderDistance {
				continue
			}
			if err := s.reg.Commit(c, s.gen.Generate(c)); err != nil {
				return TickReport{}, err
			}
			generated = append(generated, c)
		}
	}

	evicted := s.reg.EvictBeyond(pos, s.cfg.CleanupDistance)

	return TickReport{
		Pos:            pos,
		Generated:      generated,
		Evicted:        evicted,
		ActiveChunks:   s.reg.ChunkCount(),
		ActiveFeatures: s.reg.FeatureCount(),
	}, nil
}
