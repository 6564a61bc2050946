package terrain

import (
	"math"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func newTestStreamer(t *testing.T, seed int64) *Streamer {
	t.Helper()
	s, err := NewStreamer(testConfig(seed))
	if err != nil {
		t.Fatalf("new streamer: %v", err)
	}
	return s
}

// expectedCoords brute-forces the set of chunk coordinates whose center lies
// within renderDistance of pos, independently of the streamer's window scan.
func expectedCoords(cfg Config, pos mgl64.Vec3) map[ChunkCoord]bool {
	want := map[ChunkCoord]bool{}
	span := int(math.Ceil(cfg.RenderDistance/cfg.ChunkSize)) + 2
	obs := CoordAt(pos, cfg.ChunkSize)
	for x := obs.X - span; x <= obs.X+span; x++ {
		for z := obs.Z - span; z <= obs.Z+span; z++ {
			c := ChunkCoord{x, z}
			if c.distXZ(pos, cfg.ChunkSize) < cfg.RenderDistance {
				want[c] = true
			}
		}
	}
	return want
}

func TestTick_CoverageAtOrigin(t *testing.T) {
	// The concrete scenario: chunkSize 150, renderDistance 400, cleanup 480.
	s := newTestStreamer(t, 1337)
	pos := mgl64.Vec3{0, 0, 0}

	report, err := s.Tick(pos)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}

	want := expectedCoords(s.Config(), pos)
	for c := range want {
		if !s.Registry().HasGenerated(c) {
			t.Errorf("chunk (%d,%d) within render distance not generated", c.X, c.Z)
		}
		if c.X < -3 || c.X > 3 || c.Z < -3 || c.Z > 3 {
			t.Errorf("chunk (%d,%d) outside the expected (-3..3) window", c.X, c.Z)
		}
	}
	if got := s.Registry().ChunkCount(); got != len(want) {
		t.Fatalf("generated %d chunks, want exactly %d", got, len(want))
	}
	if len(report.Generated) != len(want) {
		t.Fatalf("report.Generated has %d entries, want %d", len(report.Generated), len(want))
	}

	// One ground tile per generated chunk, 1:1.
	snap := s.Registry().Snapshot()
	if len(snap.GroundTiles) != len(want) {
		t.Fatalf("%d ground tiles for %d chunks", len(snap.GroundTiles), len(want))
	}
	seen := map[ChunkCoord]bool{}
	for _, tile := range snap.GroundTiles {
		if seen[tile.Coord] {
			t.Fatalf("duplicate ground tile for (%d,%d)", tile.Coord.X, tile.Coord.Z)
		}
		seen[tile.Coord] = true
	}
}

func TestTick_CoverageAwayFromOrigin(t *testing.T) {
	s := newTestStreamer(t, 1337)
	pos := mgl64.Vec3{-1037.5, 88, 776.25}

	if _, err := s.Tick(pos); err != nil {
		t.Fatalf("tick: %v", err)
	}
	want := expectedCoords(s.Config(), pos)
	for c := range want {
		if !s.Registry().HasGenerated(c) {
			t.Errorf("chunk (%d,%d) within render distance not generated", c.X, c.Z)
		}
	}
	if got := s.Registry().ChunkCount(); got != len(want) {
		t.Fatalf("generated %d chunks, want exactly %d", got, len(want))
	}
}

func TestTick_BoundedRetention(t *testing.T) {
	s := newTestStreamer(t, 2)
	positions := []mgl64.Vec3{
		{0, 120, 0}, {200, 120, 0}, {500, 130, 100}, {900, 110, 400}, {1500, 100, 900},
	}
	for _, pos := range positions {
		if _, err := s.Tick(pos); err != nil {
			t.Fatalf("tick at %v: %v", pos, err)
		}
		cfg := s.Config()
		for _, tile := range s.Registry().Snapshot().GroundTiles {
			if d := tile.Coord.distXZ(pos, cfg.ChunkSize); d >= cfg.CleanupDistance {
				t.Fatalf("tile (%d,%d) at distance %v survived cleanup radius %v",
					tile.Coord.X, tile.Coord.Z, d, cfg.CleanupDistance)
			}
		}
		for _, f := range s.Registry().Snapshot().Features {
			if d := f.Coord.distXZ(pos, cfg.ChunkSize); d >= cfg.CleanupDistance {
				t.Fatalf("feature %s at distance %v survived cleanup radius %v",
					f.ID, d, cfg.CleanupDistance)
			}
		}
	}
}

func TestTick_SteadyStateNoChurn(t *testing.T) {
	s := newTestStreamer(t, 3)
	pos := mgl64.Vec3{730, 95, -410}

	if _, err := s.Tick(pos); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	report, err := s.Tick(pos)
	if err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if len(report.Generated) != 0 || len(report.Evicted) != 0 {
		t.Fatalf("stationary observer churned: generated=%d evicted=%d",
			len(report.Generated), len(report.Evicted))
	}
}

func TestTick_RevisitRegeneratesSameContent(t *testing.T) {
	s := newTestStreamer(t, 4)
	home := mgl64.Vec3{0, 100, 0}

	if _, err := s.Tick(home); err != nil {
		t.Fatalf("tick: %v", err)
	}
	first := s.Registry().Snapshot()

	// Fly far beyond the cleanup distance; everything at home gets evicted.
	report, err := s.Tick(mgl64.Vec3{10000, 100, 10000})
	if err != nil {
		t.Fatalf("tick away: %v", err)
	}
	if len(report.Evicted) == 0 {
		t.Fatal("nothing evicted after leaving range")
	}
	if s.Registry().HasGenerated(ChunkCoord{0, 0}) {
		t.Fatal("home chunk still marked generated after leaving range")
	}

	// Coming back treats the area as brand-new, and the deterministic
	// generator reproduces the exact same content.
	if _, err := s.Tick(home); err != nil {
		t.Fatalf("tick back: %v", err)
	}
	second := s.Registry().Snapshot()
	if !reflect.DeepEqual(first, second) {
		t.Fatal("revisited area does not match its first visit")
	}
}

func TestTick_RejectsNonFinitePositions(t *testing.T) {
	s := newTestStreamer(t, 5)
	if _, err := s.Tick(mgl64.Vec3{0, 50, 0}); err != nil {
		t.Fatalf("tick: %v", err)
	}
	before := s.Registry().Snapshot()

	bad := []mgl64.Vec3{
		{math.NaN(), 0, 0},
		{0, math.NaN(), 0},
		{0, 0, math.Inf(1)},
		{math.Inf(-1), 0, 0},
	}
	for _, pos := range bad {
		if _, err := s.Tick(pos); err == nil {
			t.Fatalf("tick accepted non-finite position %v", pos)
		}
	}

	// A rejected tick must not corrupt registry state.
	after := s.Registry().Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Fatal("rejected tick mutated the registry")
	}
}

func TestTick_FeatureIDsUniqueOverLongFlight(t *testing.T) {
	s := newTestStreamer(t, 6)
	for i := 0; i < 40; i++ {
		pos := mgl64.Vec3{float64(i) * 120, 100, float64(i) * 45}
		if _, err := s.Tick(pos); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		ids := map[string]bool{}
		for _, f := range s.Registry().Snapshot().Features {
			if ids[f.ID] {
				t.Fatalf("duplicate feature id %q at tick %d", f.ID, i)
			}
			ids[f.ID] = true
		}
	}
}

func TestNewStreamer_RejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative chunk size", func(c *Config) { c.ChunkSize = -10 }},
		{"cleanup equals render", func(c *Config) { c.CleanupDistance = c.RenderDistance }},
		{"cleanup below render", func(c *Config) { c.CleanupDistance = c.RenderDistance - 1 }},
		{"zero render distance", func(c *Config) { c.RenderDistance = 0 }},
		{"band order violated", func(c *Config) { c.Bands = Bands{Empty: 0.8, Forest: 0.5, City: 0.9} }},
		{"band above one", func(c *Config) { c.Bands.City = 1.2 }},
		{"inverted count range", func(c *Config) { c.ForestTrees = CountRange{Min: 5, Max: 2} }},
	}
	for _, tc := range cases {
		cfg := testConfig(1)
		tc.mutate(&cfg)
		if _, err := NewStreamer(cfg); err == nil {
			t.Errorf("%s: config accepted", tc.name)
		}
	}
}
