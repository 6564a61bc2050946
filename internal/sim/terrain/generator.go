package terrain

import "github.com/go-gl/mathgl/mgl64"

// footprintFrac keeps feature offsets inside the inner 80% of the chunk so a
// feature never straddles a chunk boundary.
const footprintFrac = 0.8

// ChunkContent is the full deterministic content of one chunk.
type ChunkContent struct {
	Tile     GroundTile
	Features []Feature
}

// Generator decides chunk content as a pure function of (config seed, coord).
// It never touches the registry; committing results is the streamer's job.
type Generator struct {
	cfg Config
}

func NewGenerator(cfg Config) Generator {
	return Generator{cfg: cfg}
}

// Generate returns the content of the given chunk. Total over all integer
// coordinate pairs, including negative ones; calling it any number of times
// yields identical output.
func (g Generator) Generate(coord ChunkCoord) ChunkContent {
	r := chunkRand{seed: g.cfg.Seed, coord: coord}
	center := coord.Center(g.cfg.ChunkSize)

	tile := GroundTile{
		Coord:  coord,
		Center: center,
		Size:   g.cfg.ChunkSize,
		Tint:   groundPalette[r.pick(saltTint, len(groundPalette))],
	}

	var features []Feature
	density := r.unit(saltDensity)
	switch {
	case density < g.cfg.Bands.Empty:
		// Open terrain, ground tile only.
	case density < g.cfg.Bands.Forest:
		n := r.count(saltCount, g.cfg.ForestTrees)
		for i := 0; i < n; i++ {
			features = append(features, g.feature(r, KindTree, center, i))
		}
	case density < g.cfg.Bands.City:
		n := r.count(saltCount, g.cfg.CityBuildings)
		for i := 0; i < n; i++ {
			features = append(features, g.feature(r, KindBuilding, center, i))
		}
	default:
		kind := KindTower
		if r.unit(saltVariant) < 0.5 {
			kind = KindMountain
		}
		n := r.count(saltCount, g.cfg.Landmarks)
		for i := 0; i < n; i++ {
			features = append(features, g.feature(r, kind, center, i))
		}
	}

	return ChunkContent{Tile: tile, Features: features}
}

func (g Generator) feature(r chunkRand, kind FeatureKind, center mgl64.Vec3, i int) Feature {
	base := saltFeature + i*saltPerFeature
	half := g.cfg.ChunkSize * footprintFrac / 2

	var size mgl64.Vec3
	var palette []string
	switch kind {
	case KindTree:
		w := r.between(base+saltSizeW, 6, 14)
		size = mgl64.Vec3{w, r.between(base+saltSizeH, 18, 40), w}
		palette = treePalette
	case KindBuilding:
		size = mgl64.Vec3{
			r.between(base+saltSizeW, 10, 24),
			r.between(base+saltSizeH, 20, 80),
			r.between(base+saltSizeD, 10, 24),
		}
		palette = buildingPalette
	case KindTower:
		w := r.between(base+saltSizeW, 6, 10)
		size = mgl64.Vec3{w, r.between(base+saltSizeH, 70, 120), w}
		palette = towerPalette
	default: // KindMountain
		w := r.between(base+saltSizeW, 40, 90)
		size = mgl64.Vec3{w, r.between(base+saltSizeH, 60, 140), r.between(base+saltSizeD, 40, 90)}
		palette = mountainPalette
	}

	rough, metal := materialFor(kind)
	coord := r.coord
	return Feature{
		ID:    featureID(kind, coord, i),
		Kind:  kind,
		Coord: coord,
		Pos: mgl64.Vec3{
			center.X() + r.between(base+saltOffX, -half, half),
			0,
			center.Z() + r.between(base+saltOffZ, -half, half),
		},
		Size:      size,
		Color:     palette[r.pick(base+saltColor, len(palette))],
		Roughness: rough,
		Metalness: metal,
	}
}
