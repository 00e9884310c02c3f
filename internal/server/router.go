package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"watchlist-news/internal/logger"
)

// NewRouter wires the handlers. Routes exist both bare and under /api.
func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type",
			HeaderAlphaVantageKey, HeaderNewsAPIKey, HeaderFinnhubKey, HeaderWatchlist,
		},
		MaxAge: 12 * time.Hour,
	}))

	for _, g := range []*gin.RouterGroup{&r.RouterGroup, r.Group("/api")} {
		g.GET("/news-aggregator", h.GetNewsFeed)
		g.GET("/ticker-industry", h.GetTickerIndustry)
		g.GET("/market-news", h.GetMarketNews)
		g.GET("/test-key", h.TestKey)
		g.GET("/read-items", h.GetReadItems)
		g.POST("/read-items", h.MarkRead)
	}
	r.GET("/health", h.GetHealth)

	return r
}

// requestLogger logs the path only. Query strings may carry API keys.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() >= 500 {
			logger.Warn(ctx, "HTTP request failed", fields...)
			return
		}
		logger.Debug(ctx, "HTTP request", fields...)
	}
}
