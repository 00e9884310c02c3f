package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"watchlist-news/internal/app"
	"watchlist-news/internal/logger"
)

func main() {
	if err := app.InitializeSystem(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	cfg, err := app.LoadConfig(ctx, configPath)
	if err != nil {
		log.Fatal(err)
	}

	rs, err := initializeReadStore(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open read store", err)
		log.Fatal(err)
	}

	srv, journal := initializeServer(ctx, cfg, rs)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info(ctx, "API server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "Server error", err)
			sigc <- syscall.SIGTERM
		}
	}()

	<-sigc
	logger.Info(ctx, "Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(ctx, "Server shutdown failed", err)
	}
	app.WriteDigest(shutdownCtx, journal)
	if c, ok := rs.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	app.Shutdown(shutdownCtx)
}
