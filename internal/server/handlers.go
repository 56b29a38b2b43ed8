package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/constants"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/dashboard"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/gecko"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/table"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Dashboard *dashboard.Service // Pool and token dashboard pipeline
	Nulls     table.NullPolicy   // Default null policy for rankings
	Timeout   time.Duration      // Upstream budget per request
	DevMode   bool               // Enable detailed error responses in development
	Logger    *logrus.Logger     // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// fail logs a dashboard error and answers with the status statusOf picks
// An expired request budget wins over whatever error it caused
func (h *Handlers) fail(ctx context.Context, c echo.Context, err error, msg string) error {
	details := map[string]any{"cause": err.Error()}
	log := h.Logger.WithError(err).WithField("path", c.Path())

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Warn("upstream timed out")
		return h.err(c, http.StatusGatewayTimeout, "upstream timeout", details)
	}

	code, public := statusOf(err)
	if code == http.StatusInternalServerError {
		log.Error(msg)
		return h.err(c, code, msg, details)
	}
	if code > http.StatusInternalServerError {
		log.Warn(public)
	}
	return h.err(c, code, public, details)
}

// Health reports liveness and the response cache status
func (h *Handlers) Health(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.Dashboard.Ready(ctx); err != nil {
		h.Logger.WithError(err).Warn("response cache unreachable")
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{OK: false, Cache: "unavailable"})
	}
	return c.JSON(http.StatusOK, HealthResponse{OK: true, Cache: "ok"})
}

// Networks lists the networks GeckoTerminal tracks
func (h *Handlers) Networks(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	items, err := h.Dashboard.Networks(ctx)
	if err != nil {
		return h.fail(ctx, c, err, "failed to list networks")
	}
	return c.JSON(http.StatusOK, NetworksResponse{Items: items})
}

// PoolOverview returns the pool table with its top cards, bar and pie charts
// Accepts an optional network query parameter; empty means new pools everywhere
func (h *Handlers) PoolOverview(c echo.Context) error {
	network := strings.TrimSpace(c.QueryParam("network"))

	ctx, cancel := h.withTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	page, err := h.Dashboard.PoolOverview(ctx, network)
	if err != nil {
		return h.fail(ctx, c, err, "failed to build pool overview")
	}
	return c.JSON(http.StatusOK, page)
}

// TopPools ranks pools by any column
// Accepts column, n (1-100), nulls (zero|last) and network query parameters
func (h *Handlers) TopPools(c echo.Context) error {
	network := strings.TrimSpace(c.QueryParam("network"))
	column := strings.TrimSpace(c.QueryParam("column"))

	n := 0
	if v := strings.TrimSpace(c.QueryParam("n")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid n", map[string]any{"n": "must be an integer"})
		}
		if parsed < 1 || parsed > constants.MaxTopN {
			return h.err(c, http.StatusBadRequest, "invalid n", map[string]any{"n": "min 1 max " + strconv.Itoa(constants.MaxTopN)})
		}
		n = parsed
	}

	nulls := h.Nulls
	if v := c.QueryParam("nulls"); v != "" {
		p, err := table.ParseNullPolicy(v)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid nulls", map[string]any{"nulls": "must be zero or last"})
		}
		nulls = p
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	if column == "" {
		column = h.Dashboard.RankColumn()
	}
	top, err := h.Dashboard.TopPools(ctx, network, column, n, nulls)
	if err != nil {
		return h.fail(ctx, c, err, "failed to rank pools")
	}
	return c.JSON(http.StatusOK, TopPoolsResponse{
		Network: network,
		Column:  column,
		N:       n,
		Nulls:   nulls.String(),
		Table:   top,
	})
}

// Tokens returns cards for recently updated tokens
func (h *Handlers) Tokens(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	page, err := h.Dashboard.TokenPage(ctx)
	if err != nil {
		return h.fail(ctx, c, err, "failed to load tokens")
	}
	return c.JSON(http.StatusOK, page)
}

// PoolOHLCV returns the candlestick series of one pool
// Accepts aggregate, limit, currency, token and before_timestamp query parameters
func (h *Handlers) PoolOHLCV(c echo.Context) error {
	network := strings.TrimSpace(c.Param("network"))
	pool := strings.TrimSpace(c.Param("pool"))
	timeframe := strings.ToLower(strings.TrimSpace(c.Param("timeframe")))
	if network == "" || pool == "" {
		return h.err(c, http.StatusBadRequest, "invalid pool", nil)
	}

	var q gecko.OHLCVQuery
	for name, dst := range map[string]*int{"aggregate": &q.Aggregate, "limit": &q.Limit} {
		v := strings.TrimSpace(c.QueryParam(name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid "+name, map[string]any{name: "must be an integer"})
		}
		*dst = n
	}
	if v := strings.TrimSpace(c.QueryParam("before_timestamp")); v != "" {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid before_timestamp", map[string]any{"before_timestamp": "must be unix seconds"})
		}
		q.BeforeTimestamp = ts
	}
	q.Currency = strings.ToLower(strings.TrimSpace(c.QueryParam("currency")))
	q.Token = strings.ToLower(strings.TrimSpace(c.QueryParam("token")))

	if err := q.Validate(timeframe); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid ohlcv query", map[string]any{"query": err.Error()})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	view, err := h.Dashboard.PoolOHLCV(ctx, network, pool, timeframe, q)
	if err != nil {
		return h.fail(ctx, c, err, "failed to load ohlcv")
	}
	return c.JSON(http.StatusOK, view)
}

// InvalidateCache drops every cached upstream response
// Returns 204 No Content on success
func (h *Handlers) InvalidateCache(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Dashboard.InvalidateCache(ctx); err != nil {
		h.Logger.WithError(err).Error("failed to purge response cache")
		return h.err(c, http.StatusInternalServerError, "failed to purge cache", nil)
	}
	h.Logger.Info("response cache purged")
	return c.NoContent(http.StatusNoContent)
}
