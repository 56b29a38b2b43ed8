package server

import (
	"errors"
	"net/http"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/metrics"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	// Set custom error handler for consistent JSON responses
	e.HTTPErrorHandler = JSONErrors(cfg.DevMode)

	// Apply global middleware
	e.Use(SetJSONContentType) // Ensure all responses are JSON
	e.Use(SetNoCacheHeaders)  // Prevent caching of API responses

	// Optional API key authentication; probes and scrapes stay open
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key", // Look for API key in X-API-Key header
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return p == "/v1/health" || p == "/metrics"
			},
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil // Simple string comparison
			},
			ErrorHandler: func(err error, c echo.Context) error {
				var missing *middleware.ErrKeyAuthMissing
				if errors.As(err, &missing) {
					return echo.NewHTTPError(http.StatusUnauthorized, "missing api key")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
			},
		}))
	}

	// Prometheus scrape endpoint
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// API v1 routes
	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)     // Health check endpoint
	v1.GET("/networks", h.Networks) // Supported networks
	v1.GET("/tokens", h.Tokens)     // Recently updated token cards
	v1.DELETE("/cache", h.InvalidateCache)

	// Pool dashboard
	pools := v1.Group("/pools")
	pools.GET("", h.PoolOverview) // Table, top cards, bars and pie
	pools.GET("/top", h.TopPools) // Ranking by any column

	v1.GET("/networks/:network/pools/:pool/ohlcv/:timeframe", h.PoolOHLCV)

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
