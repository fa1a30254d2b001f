package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snapshop/shopkit/config"
	httpDelivery "github.com/snapshop/shopkit/internal/delivery/http"
	"github.com/snapshop/shopkit/internal/domain"
	"github.com/snapshop/shopkit/internal/infrastructure/catalog"
	"github.com/snapshop/shopkit/internal/logger"
	"github.com/snapshop/shopkit/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	defer log.Sync()

	log.Infow("starting shopkit sandbox",
		"version", cfg.Sandbox.Version,
		"build", cfg.Sandbox.Build,
		"environment", cfg.Sandbox.Environment,
		"port", cfg.Sandbox.Port,
	)

	cat, err := catalog.Load(cfg.Sandbox.CatalogFile)
	if err != nil {
		log.Fatalw("failed to load catalog", "file", cfg.Sandbox.CatalogFile, "error", err)
	}
	log.Infow("catalog loaded", "products", len(cat.Products), "file", cfg.Sandbox.CatalogFile)

	handler := httpDelivery.NewHandler(
		cat,
		usecase.NewMatchingService(usecase.MatchConfig{}, log),
		usecase.NewQueryPreprocessor(),
		domain.VersionInfo{Version: cfg.Sandbox.Version, Build: cfg.Sandbox.Build},
		log,
	)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, log)

	server := &http.Server{
		Addr:              ":" + cfg.Sandbox.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
