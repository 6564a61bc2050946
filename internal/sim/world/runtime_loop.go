package world

import (
	"context"
	"encoding/json"
	"time"

	"skystream/internal/sim/terrain"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case pos := <-w.posIn:
			w.pos = pos
		case req := <-w.sub:
			w.subs[req.id] = req.out
		case id := <-w.unsub:
			if out, ok := w.subs[id]; ok {
				close(out)
				delete(w.subs, id)
			}
		case <-ticker.C:
			w.drainPos()
			report, err := w.step()
			if err != nil {
				// A rejected tick leaves the registry untouched; keep running.
				w.log.Printf("world %s: %v", w.cfg.ID, err)
				continue
			}
			w.broadcast(report)
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// Subscribe registers a snapshot consumer. Must be called while the loop runs.
func (w *World) Subscribe(id string, buf int) <-chan []byte {
	out := make(chan []byte, buf)
	w.sub <- subscribeReq{id: id, out: out}
	return out
}

func (w *World) Unsubscribe(id string) { w.unsub <- id }

// drainPos empties the position inbox so only the latest position before the
// tick takes effect.
func (w *World) drainPos() {
	for {
		select {
		case pos := <-w.posIn:
			w.pos = pos
		default:
			return
		}
	}
}

func (w *World) broadcast(report terrain.TickReport) {
	msg := w.buildSnapshotMsg(report)
	b, err := json.Marshal(msg)
	if err != nil {
		w.log.Printf("world %s: marshal snapshot: %v", w.cfg.ID, err)
		return
	}
	for id, out := range w.subs {
		select {
		case out <- b:
		default:
			// Slow consumer; drop this snapshot for it rather than stall the tick.
			w.log.Printf("world %s: dropping snapshot for slow subscriber %s", w.cfg.ID, id)
		}
	}
}
