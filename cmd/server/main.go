package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"skystream/internal/persistence/indexdb"
	persistlog "skystream/internal/persistence/log"
	"skystream/internal/sim/tuning"
	"skystream/internal/sim/world"
	"skystream/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 0, "world seed (overrides tuning when non-zero)")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite tick index")
		disableLog = flag.Bool("disable_stream_log", false, "disable the zstd tick stream log")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	runID := uuid.NewString()
	worldDir := filepath.Join(*dataDir, "worlds", tune.WorldID)

	var sinks []world.TickSink
	var sessionSinks []ws.SessionSink

	var streamLog *persistlog.JSONLZstdWriter
	if !*disableLog {
		streamLog = persistlog.NewJSONLZstdWriter(filepath.Join(worldDir, "streams"), runID)
		defer streamLog.Close()
		sinks = append(sinks, persistlog.TickLog{W: streamLog})
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
		idx.StartSession(runID, "server", "world")
		sinks = append(sinks, idx.Recorder(runID))
		sessionSinks = append(sessionSinks, idx)
	}

	w, err := world.New(world.Config{
		ID:         tune.WorldID,
		TickRateHz: tune.TickRateHz,
		Terrain:    tune.TerrainConfig(),
	}, logger, sinks...)
	if err != nil {
		logger.Fatalf("create world: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world loop: %v", err)
		}
	}()

	wss := ws.NewServer(w, logger, sessionSinks...)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wss.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("world %s seed=%d run=%s listening on %s",
			tune.WorldID, tune.Seed, runID, *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Printf("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	w.Stop()
}
