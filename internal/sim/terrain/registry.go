package terrain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrAlreadyGenerated is returned by Commit when a chunk coordinate is
// committed a second time. Silent overwrite would mask non-determinism bugs,
// so this is always surfaced as an error.
var ErrAlreadyGenerated = errors.New("chunk already generated")

// Registry is the mutable store of currently-active chunks, ground tiles and
// features. Single writer; it must only be touched from the goroutine that
// owns the world loop.
type Registry struct {
	chunkSize float64

	generated map[ChunkCoord]struct{}
	tiles     map[ChunkCoord]GroundTile
	features  map[string]Feature
	owned     map[ChunkCoord][]string
}

func NewRegistry(chunkSize float64) *Registry {
	return &Registry{
		chunkSize: chunkSize,
		generated: map[ChunkCoord]struct{}{},
		tiles:     map[ChunkCoord]GroundTile{},
		features:  map[string]Feature{},
		owned:     map[ChunkCoord][]string{},
	}
}

func (reg *Registry) HasGenerated(c ChunkCoord) bool {
	_, ok := reg.generated[c]
	return ok
}

// Commit stores a chunk's content. It validates everything before mutating,
// so a failed commit leaves no partial state behind.
func (reg *Registry) Commit(c ChunkCoord, content ChunkContent) error {
	if reg.HasGenerated(c) {
		return fmt.Errorf("commit (%d,%d): %w", c.X, c.Z, ErrAlreadyGenerated)
	}
	for _, f := range content.Features {
		if _, ok := reg.features[f.ID]; ok {
			return fmt.Errorf("commit (%d,%d): feature id %q already present", c.X, c.Z, f.ID)
		}
	}

	reg.generated[c] = struct{}{}
	reg.tiles[c] = content.Tile
	ids := make([]string, 0, len(content.Features))
	for _, f := range content.Features {
		reg.features[f.ID] = f
		ids = append(ids, f.ID)
	}
	reg.owned[c] = ids
	return nil
}

// EvictBeyond removes every chunk whose center lies at XZ distance >= radius
// from pos, together with its ground tile and all features it spawned. The
// generated mark is cleared too: a chunk re-entering range later is brand-new
// and will be generated again. Returns the evicted coordinates, sorted.
func (reg *Registry) EvictBeyond(pos mgl64.Vec3, radius float64) []ChunkCoord {
	var evicted []ChunkCoord
	for c := range reg.generated {
		if c.distXZ(pos, reg.chunkSize) >= radius {
			evicted = append(evicted, c)
		}
	}
	for _, c := range evicted {
		for _, id := range reg.owned[c] {
			delete(reg.features, id)
		}
		delete(reg.owned, c)
		delete(reg.tiles, c)
		delete(reg.generated, c)
	}
	sort.Slice(evicted, func(i, j int) bool { return coordLess(evicted[i], evicted[j]) })
	return evicted
}

// Snapshot is the complete, authoritative set of currently-visible terrain
// content. Anything not in it must not be drawn.
type Snapshot struct {
	GroundTiles []GroundTile `json:"ground_tiles"`
	Features    []Feature    `json:"features"`
}

// Snapshot returns the registry contents in deterministic order: tiles by
// coordinate, features by id.
func (reg *Registry) Snapshot() Snapshot {
	snap := Snapshot{
		GroundTiles: make([]GroundTile, 0, len(reg.tiles)),
		Features:    make([]Feature, 0, len(reg.features)),
	}
	for _, t := range reg.tiles {
		snap.GroundTiles = append(snap.GroundTiles, t)
	}
	sort.Slice(snap.GroundTiles, func(i, j int) bool {
		return coordLess(snap.GroundTiles[i].Coord, snap.GroundTiles[j].Coord)
	})
	for _, f := range reg.features {
		snap.Features = append(snap.Features, f)
	}
	sort.Slice(snap.Features, func(i, j int) bool { return snap.Features[i].ID < snap.Features[j].ID })
	return snap
}

func (reg *Registry) ChunkCount() int { return len(reg.generated) }

func (reg *Registry) FeatureCount() int { return len(reg.features) }
