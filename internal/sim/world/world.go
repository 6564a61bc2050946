package world

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"skystream/internal/protocol"
	"skystream/internal/sim/terrain"
)

type Config struct {
	ID         string
	TickRateHz int
	Terrain    terrain.Config
}

func (c *Config) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
}

// TickSink receives the report of every completed tick. Sinks must not block;
// persistence backends enqueue internally.
type TickSink interface {
	RecordTick(terrain.TickReport)
}

type subscribeReq struct {
	id  string
	out chan []byte
}

// World owns the terrain streamer and fans snapshots out to subscribers.
// All streaming state is accessed only from the world loop goroutine.
type World struct {
	cfg   Config
	log   *log.Logger
	sinks []TickSink

	streamer *terrain.Streamer

	tick atomic.Uint64
	pos  mgl64.Vec3

	posIn chan mgl64.Vec3
	sub   chan subscribeReq
	unsub chan string
	subs  map[string]chan []byte
	stop  chan struct{}
}

func New(cfg Config, logger *log.Logger, sinks ...TickSink) (*World, error) {
	cfg.applyDefaults()
	s, err := terrain.NewStreamer(cfg.Terrain)
	if err != nil {
		return nil, fmt.Errorf("world %s: %w", cfg.ID, err)
	}
	return &World{
		cfg:      cfg,
		log:      logger,
		sinks:    sinks,
		streamer: s,
		posIn:    make(chan mgl64.Vec3, 64),
		sub:      make(chan subscribeReq),
		unsub:    make(chan string),
		subs:     map[string]chan []byte{},
		stop:     make(chan struct{}),
	}, nil
}

func (w *World) ID() string { return w.cfg.ID }

func (w *World) TickRateHz() int { return w.cfg.TickRateHz }

// PosInbox is where transports deliver observer positions. The loop keeps only
// the latest position received before each tick.
func (w *World) PosInbox() chan<- mgl64.Vec3 { return w.posIn }

func (w *World) WorldParams() protocol.WorldParams {
	tc := w.streamer.Config()
	return protocol.WorldParams{
		Seed:            tc.Seed,
		ChunkSize:       tc.ChunkSize,
		RenderDistance:  tc.RenderDistance,
		CleanupDistance: tc.CleanupDistance,
		TickRateHz:      w.cfg.TickRateHz,
	}
}

// StepOnce advances the world by a single tick at the given observer position.
// Intended for deterministic replays and tests; must not race a running loop.
func (w *World) StepOnce(pos mgl64.Vec3) (terrain.TickReport, error) {
	w.pos = pos
	return w.step()
}

func (w *World) step() (terrain.TickReport, error) {
	t := w.tick.Add(1) - 1
	report, err := w.streamer.Tick(w.pos)
	if err != nil {
		return terrain.TickReport{}, fmt.Errorf("tick %d: %w", t, err)
	}
	report.Tick = t
	for _, sink := range w.sinks {
		sink.RecordTick(report)
	}
	return report, nil
}

// StateDigest hashes the deterministically-ordered snapshot. Two worlds with
// the same config and observer path produce the same digest at every tick.
func (w *World) StateDigest() string {
	b, err := json.Marshal(w.streamer.Registry().Snapshot())
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (w *World) buildSnapshotMsg(report terrain.TickReport) protocol.SnapshotMsg {
	snap := w.streamer.Registry().Snapshot()
	msg := protocol.SnapshotMsg{
		Type:            protocol.TypeSnapshot,
		ProtocolVersion: protocol.Version,
		Tick:            report.Tick,
		Observer:        report.Pos,
		GroundTiles:     make([]protocol.GroundTile, 0, len(snap.GroundTiles)),
		Features:        make([]protocol.Feature, 0, len(snap.Features)),
		Stats: protocol.SnapshotStats{
			Generated:      len(report.Generated),
			Evicted:        len(report.Evicted),
			ActiveChunks:   report.ActiveChunks,
			ActiveFeatures: report.ActiveFeatures,
		},
	}
	for _, t := range snap.GroundTiles {
		msg.GroundTiles = append(msg.GroundTiles, protocol.GroundTile{
			Coord:  [2]int{t.Coord.X, t.Coord.Z},
			Center: t.Center,
			Size:   t.Size,
			Tint:   t.Tint,
		})
	}
	for _, f := range snap.Features {
		msg.Features = append(msg.Features, protocol.Feature{
			ID:        f.ID,
			Kind:      string(f.Kind),
			Coord:     [2]int{f.Coord.X, f.Coord.Z},
			Pos:       f.Pos,
			Size:      f.Size,
			Color:     f.Color,
			Roughness: f.Roughness,
			Metalness: f.Metalness,
		})
	}
	return msg
}
