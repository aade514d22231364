package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/williampepple1/member-scraper/internal/api"
	"github.com/williampepple1/member-scraper/internal/config"
	"github.com/williampepple1/member-scraper/internal/logging"
	"github.com/williampepple1/member-scraper/internal/scraper"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	addr := flag.String("addr", "", "Listen address (overrides server.addr)")
	flag.Parse()

	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			slog.Error("error loading configuration", "file", *configFile, "error", err)
			os.Exit(1)
		}
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// ── 2. Initialise structured logging ────────────────────────────
	log := logging.Init(cfg.Log, os.Stdout)
	log.Info("member scraper starting",
		"addr", cfg.Server.Addr,
		"mode", cfg.Server.Mode,
		"workers", cfg.Scraper.Workers,
		"batch_workers", cfg.Server.BatchWorkers,
		"browser", cfg.Browser.Enabled,
	)

	// ── 3. HTTP server ──────────────────────────────────────────────
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewRouter(cfg, scraper.New(cfg), time.Now()),
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 4. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutdown signal received", "signal", sig.String())

	// A batch holds its request open until every page is done, so give
	// in-flight requests the wait bound plus some slack.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scraper.WaitTimeout+20*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server forced shutdown", "error", err)
	} else {
		log.Info("HTTP server drained gracefully")
	}
	log.Info("member scraper stopped")
}
