package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"skystream/internal/protocol"
)

// flightbot flies a circular circuit around the origin and reports the
// snapshot stream it gets back. Useful for eyeballing generation/eviction
// behaviour against a running server.
func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "flightbot", "client name")
		radius   = flag.Float64("radius", 900, "circuit radius in world units")
		altitude = flag.Float64("altitude", 120, "flight altitude")
		speed    = flag.Float64("speed", 60, "speed in world units per second")
		rateHz   = flag.Int("rate_hz", 20, "position send rate")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[flightbot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
		Role:            protocol.RolePilot,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	// Snapshot reader.
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			switch base.Type {
			case protocol.TypeWelcome:
				var w protocol.WelcomeMsg
				if err := json.Unmarshal(msg, &w); err != nil {
					continue
				}
				logger.Printf("WELCOME session=%s seed=%d chunk=%v render=%v cleanup=%v",
					w.SessionID, w.WorldParams.Seed, w.WorldParams.ChunkSize,
					w.WorldParams.RenderDistance, w.WorldParams.CleanupDistance)
			case protocol.TypeSnapshot:
				var s protocol.SnapshotMsg
				if err := json.Unmarshal(msg, &s); err != nil {
					continue
				}
				if s.Tick%uint64(*rateHz) == 0 {
					logger.Printf("tick=%d chunks=%d features=%d generated=%d evicted=%d",
						s.Tick, s.Stats.ActiveChunks, s.Stats.ActiveFeatures,
						s.Stats.Generated, s.Stats.Evicted)
				}
			}
		}
	}()

	interval := time.Second / time.Duration(*rateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// Angular position along the circuit at the configured speed.
			theta := *speed * time.Since(start).Seconds() / *radius
			pos := protocol.PosMsg{
				Type:            protocol.TypePos,
				ProtocolVersion: protocol.Version,
				Pos: [3]float64{
					*radius * math.Cos(theta),
					*altitude,
					*radius * math.Sin(theta),
				},
			}
			if err := conn.WriteJSON(pos); err != nil {
				logger.Fatalf("send POS: %v", err)
			}
		}
	}
}
