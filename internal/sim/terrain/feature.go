package terrain

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

type FeatureKind string

const (
	KindTree     FeatureKind = "TREE"
	KindBuilding FeatureKind = "BUILDING"
	KindTower    FeatureKind = "TOWER"
	KindMountain FeatureKind = "MOUNTAIN"
)

// GroundTile is the one-per-chunk ground quad. Its lifecycle is tied 1:1 to
// the chunk record that spawned it.
type GroundTile struct {
	Coord  ChunkCoord `json:"coord"`
	Center mgl64.Vec3 `json:"center"`
	Size   float64    `json:"size"`
	Tint   string     `json:"tint"`
}

// Feature is a discrete renderable world object. The renderer consumes it as
// one draw call: a box of Size at Pos with the given color and material hints.
type Feature struct {
	ID        string      `json:"id"`
	Kind      FeatureKind `json:"kind"`
	Coord     ChunkCoord  `json:"coord"`
	Pos       mgl64.Vec3  `json:"pos"`
	Size      mgl64.Vec3  `json:"size"`
	Color     string      `json:"color"`
	Roughness float64     `json:"roughness"`
	Metalness float64     `json:"metalness"`
}

// Fixed palettes. Indexed by a single tint/color draw per tile or feature.
var (
	groundPalette = []string{
		"#3f7d2a", "#4a7c3b", "#55883f", "#5c7a44", "#6b8e4e", "#497a36",
	}
	treePalette     = []string{"#1f5e20", "#2d6a2f", "#3a7d32", "#245c1e"}
	buildingPalette = []string{"#8d8d93", "#a7a29a", "#b5b0a8", "#6e7076", "#9a8f82"}
	towerPalette    = []string{"#c94f3d", "#b0b4ba"}
	mountainPalette = []string{"#7a7468", "#6d665c", "#8a8376"}
)

// materialFor returns the (roughness, metalness) hints for a feature kind.
func materialFor(kind FeatureKind) (float64, float64) {
	switch kind {
	case KindTree:
		return 0.9, 0.0
	case KindBuilding:
		return 0.7, 0.1
	case KindTower:
		return 0.45, 0.6
	default: // KindMountain
		return 1.0, 0.0
	}
}

// featureID builds the globally unique identifier for the i-th feature of a
// chunk. Uniqueness follows from the (coord, index) pair being unique.
func featureID(kind FeatureKind, coord ChunkCoord, i int) string {
	return fmt.Sprintf("%s_%d_%d_%d", strings.ToLower(string(kind)), coord.X, coord.Z, i)
}
