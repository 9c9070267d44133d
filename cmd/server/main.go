package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/numref/internal/api"
	"github.com/dgallion1/numref/internal/config"
	"github.com/dgallion1/numref/internal/localize"
	"github.com/dgallion1/numref/internal/parser"
	"github.com/dgallion1/numref/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		log.Error("failed to load translations", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	processor := pipeline.NewProcessor(catalog, cfg.ProtectedMacros,
		parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}, log)
	orch := pipeline.NewOrchestrator(cfg, processor, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RenderTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting numref",
		"port", cfg.Port,
		"locale", catalog.Locale().String(),
		"workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func loadCatalog(cfg config.Config) (*localize.Catalog, error) {
	catalog, err := localize.New(cfg.Locale)
	if err != nil {
		return nil, err
	}
	if cfg.CatalogPath == "" {
		return catalog, nil
	}
	f, err := os.Open(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return catalog, catalog.LoadYAML(f)
}
