package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"watchlist-news/internal/app"
	"watchlist-news/internal/cyclelog"
	"watchlist-news/internal/feedstate"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/server"
	"watchlist-news/internal/store"
)

// initializeReadStore opens the configured read-item store
func initializeReadStore(ctx context.Context, cfg *store.Config) (feedstate.ReadStore, error) {
	rs, err := feedstate.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Read store ready", "store", cfg.FeedState.Store)
	return rs, nil
}

// initializeServer builds the HTTP server around the news service
func initializeServer(ctx context.Context, cfg *store.Config, rs feedstate.ReadStore) (*http.Server, *cyclelog.Journal) {
	if !logger.IsDebugEnabled() {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := app.NewsService(ctx, cfg)
	journal := app.AttachJournal(ctx, cfg, svc)

	h := server.NewHandler(
		svc,
		app.ResolverFactory(cfg),
		app.KeyTester(cfg),
		rs,
		store.APIKeysFromEnv(),
	)
	h.SetMarketNews(app.Finnhub(cfg))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.NewRouter(h, cfg.Server.AllowedOrigins),
	}, journal
}
