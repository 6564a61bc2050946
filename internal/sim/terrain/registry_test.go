package terrain

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRegistry_CommitTwiceFails(t *testing.T) {
	cfg := testConfig(1)
	gen := NewGenerator(cfg)
	reg := NewRegistry(cfg.ChunkSize)

	c := ChunkCoord{2, -3}
	if err := reg.Commit(c, gen.Generate(c)); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if !reg.HasGenerated(c) {
		t.Fatal("HasGenerated false after commit")
	}
	err := reg.Commit(c, gen.Generate(c))
	if !errors.Is(err, ErrAlreadyGenerated) {
		t.Fatalf("second commit: got %v, want ErrAlreadyGenerated", err)
	}
	if reg.ChunkCount() != 1 {
		t.Fatalf("chunk count %d after failed commit, want 1", reg.ChunkCount())
	}
}

func TestRegistry_FailedCommitLeavesNoPartialState(t *testing.T) {
	cfg := testConfig(1)
	reg := NewRegistry(cfg.ChunkSize)

	a := ChunkCoord{0, 0}
	contentA := ChunkContent{
		Tile:     GroundTile{Coord: a, Center: a.Center(cfg.ChunkSize), Size: cfg.ChunkSize, Tint: "#3f7d2a"},
		Features: []Feature{{ID: "tree_0_0_0", Kind: KindTree, Coord: a}},
	}
	if err := reg.Commit(a, contentA); err != nil {
		t.Fatalf("commit a: %v", err)
	}

	// A second chunk claiming an already-used feature id must be rejected
	// without committing its tile or any of its features.
	b := ChunkCoord{1, 0}
	contentB := ChunkContent{
		Tile: GroundTile{Coord: b, Center: b.Center(cfg.ChunkSize), Size: cfg.ChunkSize, Tint: "#4a7c3b"},
		Features: []Feature{
			{ID: "tree_1_0_0", Kind: KindTree, Coord: b},
			{ID: "tree_0_0_0", Kind: KindTree, Coord: b},
		},
	}
	if err := reg.Commit(b, contentB); err == nil {
		t.Fatal("commit with colliding feature id succeeded")
	}
	if reg.HasGenerated(b) {
		t.Fatal("chunk b marked generated after failed commit")
	}
	if reg.FeatureCount() != 1 {
		t.Fatalf("feature count %d after failed commit, want 1", reg.FeatureCount())
	}
	if _, ok := reg.features["tree_1_0_0"]; ok {
		t.Fatal("half-written feature left behind by failed commit")
	}
}

func TestRegistry_EvictBeyondRemovesChunkAtomically(t *testing.T) {
	cfg := testConfig(3)
	gen := NewGenerator(cfg)
	reg := NewRegistry(cfg.ChunkSize)

	near := ChunkCoord{0, 0}
	far := ChunkCoord{10, 10}
	for _, c := range []ChunkCoord{near, far} {
		if err := reg.Commit(c, gen.Generate(c)); err != nil {
			t.Fatalf("commit (%d,%d): %v", c.X, c.Z, err)
		}
	}

	evicted := reg.EvictBeyond(mgl64.Vec3{0, 100, 0}, cfg.CleanupDistance)
	if len(evicted) != 1 || evicted[0] != far {
		t.Fatalf("evicted %v, want [%v]", evicted, far)
	}
	if reg.HasGenerated(far) {
		t.Fatal("evicted chunk still marked generated")
	}
	if !reg.HasGenerated(near) {
		t.Fatal("in-range chunk was evicted")
	}
	snap := reg.Snapshot()
	for _, tile := range snap.GroundTiles {
		if tile.Coord == far {
			t.Fatal("evicted chunk's ground tile still in snapshot")
		}
	}
	for _, f := range snap.Features {
		if f.Coord == far {
			t.Fatalf("evicted chunk's feature %s still in snapshot", f.ID)
		}
	}
}

func TestRegistry_SnapshotDeterministicOrder(t *testing.T) {
	cfg := testConfig(8)
	gen := NewGenerator(cfg)

	build := func() Snapshot {
		reg := NewRegistry(cfg.ChunkSize)
		// Commit in different orders; snapshot order must not depend on it.
		coords := []ChunkCoord{{3, 1}, {-2, 0}, {0, 0}, {1, -4}, {-1, -1}}
		for _, c := range coords {
			if err := reg.Commit(c, gen.Generate(c)); err != nil {
				t.Fatalf("commit: %v", err)
			}
		}
		return reg.Snapshot()
	}
	buildReversed := func() Snapshot {
		reg := NewRegistry(cfg.ChunkSize)
		coords := []ChunkCoord{{-1, -1}, {1, -4}, {0, 0}, {-2, 0}, {3, 1}}
		for _, c := range coords {
			if err := reg.Commit(c, gen.Generate(c)); err != nil {
				t.Fatalf("commit: %v", err)
			}
		}
		return reg.Snapshot()
	}

	a, b := build(), buildReversed()
	if len(a.GroundTiles) != len(b.GroundTiles) || len(a.Features) != len(b.Features) {
		t.Fatal("snapshots differ in size")
	}
	for i := range a.GroundTiles {
		if a.GroundTiles[i] != b.GroundTiles[i] {
			t.Fatalf("tile order differs at %d", i)
		}
	}
	for i := range a.Features {
		if a.Features[i].ID != b.Features[i].ID {
			t.Fatalf("feature order differs at %d", i)
		}
	}
	for i := 1; i < len(a.GroundTiles); i++ {
		if !coordLess(a.GroundTiles[i-1].Coord, a.GroundTiles[i].Coord) {
			t.Fatal("tiles not sorted by coordinate")
		}
	}
}
