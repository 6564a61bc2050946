package log

import "skystream/internal/sim/terrain"

// TickLog adapts a JSONL writer to the world's tick sink. The stream log is
// best effort: a failed write drops the entry rather than stalling the tick.
type TickLog struct {
	W *JSONLZstdWriter
}

func (l TickLog) RecordTick(r terrain.TickReport) {
	_ = l.W.Write(r)
}
