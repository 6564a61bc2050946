package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"skystream/internal/sim/terrain"
)

// SQLiteIndex is a read-model index of sessions and per-tick streaming stats.
// It never affects sim determinism; writes go through a single writer
// goroutine and are dropped when the queue is full.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
}

type reqKind int

const (
	reqSession reqKind = iota + 1
	reqTick
)

type req struct {
	kind    reqKind
	session sessionRow
	tick    tickRow
}

type sessionRow struct {
	ID         string
	ClientName string
	Role       string
	StartedAt  string
}

type tickRow struct {
	SessionID string
	Report    terrain.TickReport
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	ix := &SQLiteIndex{
		db: db,
		ch: make(chan req, 1024),
	}
	ix.wg.Add(1)
	go ix.writer()
	return ix, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id          TEXT PRIMARY KEY,
			client_name TEXT NOT NULL,
			role        TEXT NOT NULL,
			started_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tick_stats (
			session_id      TEXT NOT NULL,
			tick            INTEGER NOT NULL,
			px              REAL NOT NULL,
			py              REAL NOT NULL,
			pz              REAL NOT NULL,
			generated       INTEGER NOT NULL,
			evicted         INTEGER NOT NULL,
			active_chunks   INTEGER NOT NULL,
			active_features INTEGER NOT NULL,
			PRIMARY KEY (session_id, tick)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tick_stats_session ON tick_stats(session_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// StartSession records session metadata. Non-blocking.
func (ix *SQLiteIndex) StartSession(id, clientName, role string) {
	ix.enqueue(req{kind: reqSession, session: sessionRow{
		ID:         id,
		ClientName: clientName,
		Role:       role,
		StartedAt:  time.Now().UTC().Format(time.RFC3339),
	}})
}

// Recorder returns a tick sink bound to one session.
func (ix *SQLiteIndex) Recorder(sessionID string) *TickRecorder {
	return &TickRecorder{ix: ix, sessionID: sessionID}
}

type TickRecorder struct {
	ix        *SQLiteIndex
	sessionID string
}

func (tr *TickRecorder) RecordTick(r terrain.TickReport) {
	tr.ix.enqueue(req{kind: reqTick, tick: tickRow{SessionID: tr.sessionID, Report: r}})
}

func (ix *SQLiteIndex) enqueue(r req) {
	if ix.closed.Load() {
		return
	}
	select {
	case ix.ch <- r:
	default:
		ix.dropped.Add(1)
	}
}

// Dropped reports how many index writes were discarded due to backpressure.
func (ix *SQLiteIndex) Dropped() uint64 { return ix.dropped.Load() }

func (ix *SQLiteIndex) writer() {
	defer ix.wg.Done()
	for r := range ix.ch {
		switch r.kind {
		case reqSession:
			_, _ = ix.db.Exec(
				`INSERT OR REPLACE INTO sessions (id, client_name, role, started_at) VALUES (?, ?, ?, ?)`,
				r.session.ID, r.session.ClientName, r.session.Role, r.session.StartedAt,
			)
		case reqTick:
			t := r.tick
			_, _ = ix.db.Exec(
				`INSERT OR REPLACE INTO tick_stats
				 (session_id, tick, px, py, pz, generated, evicted, active_chunks, active_features)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.SessionID, t.Report.Tick,
				t.Report.Pos.X(), t.Report.Pos.Y(), t.Report.Pos.Z(),
				len(t.Report.Generated), len(t.Report.Evicted),
				t.Report.ActiveChunks, t.Report.ActiveFeatures,
			)
		}
	}
}

// TickCount returns how many tick rows exist for a session.
func (ix *SQLiteIndex) TickCount(sessionID string) (int, error) {
	var n int
	err := ix.db.QueryRow(`SELECT COUNT(*) FROM tick_stats WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

// LatestTick returns the highest recorded tick for a session, or -1 if none.
func (ix *SQLiteIndex) LatestTick(sessionID string) (int64, error) {
	var t sql.NullInt64
	err := ix.db.QueryRow(`SELECT MAX(tick) FROM tick_stats WHERE session_id = ?`, sessionID).Scan(&t)
	if err != nil {
		return -1, err
	}
	if !t.Valid {
		return -1, nil
	}
	return t.Int64, nil
}

func (ix *SQLiteIndex) Close() error {
	var err error
	ix.once.Do(func() {
		ix.closed.Store(true)
		close(ix.ch)
		ix.wg.Wait()
		err = ix.db.Close()
	})
	return err
}
