package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"trawler-engine/internal/config"
	"trawler-engine/internal/events"
	"trawler-engine/internal/httpapi"
	"trawler-engine/internal/profile"
	"trawler-engine/internal/scheduler"
	"trawler-engine/internal/secrets"
	"trawler-engine/internal/seen"
	"trawler-engine/internal/source/util"
	"trawler-engine/internal/store"
	"trawler-engine/internal/trawl"
)

func main() {
	// Engine data dir: env wins, else local folder.
	dataDir := os.Getenv("TRAWLER_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "trawler.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	seenPath := filepath.Join(dataDir, "seen_jobs.json")
	seenStore, err := seen.Open(seenPath)
	if err != nil {
		log.Fatal(err)
	}
	defer seenStore.Close()
	log.Printf("[seen] loaded %d known postings from %s", seenStore.Len(), seenPath)

	limiter := util.NewHostLimiter(cfg.RequestsPerSecondOrDefault(), cfg.BurstOrDefault())
	registry := buildRegistry(cfg, limiter)

	hub := events.NewHub()

	trawler := &trawl.Trawler{
		Registry: registry,
		Seen:     seenStore,
		DB:       db,
		Hub:      hub,
		Progress: trawl.NewProgress(),
		Creds:    secrets.LookupAPICredentials,
	}

	profilePath := filepath.Join(dataDir, "profile.json")
	loadProfile := func() (profile.Profile, error) {
		return profile.LoadFile(profilePath)
	}

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		Trawler:     trawler,
		LoadProfile: loadProfile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Trawl.EverySeconds > 0 {
		interval := time.Duration(cfg.Trawl.EverySeconds) * time.Second
		go scheduler.Every(ctx, interval, "trawl", func(ctx context.Context) error {
			cur := cfgVal.Load().(config.Config)
			prof, err := loadProfile()
			if err != nil {
				return err
			}
			_, err = trawler.Run(ctx, cur, prof)
			if errors.Is(err, trawl.ErrAlreadyRunning) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	port := cfg.App.Port
	if port == 0 {
		port = 38471
	}
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.Cors, httpapi.RequestID, httpapi.Recover, httpapi.AccessLog),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Printf("engine stopped")
}
