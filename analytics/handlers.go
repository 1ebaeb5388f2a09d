package analytics

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/summitlog/summitlog/ratelimit"
)

// Handler serves the analytics collection and stats endpoints.
type Handler struct {
	store   *Store
	limiter *ratelimit.Limiter
}

// NewHandler creates an analytics Handler. The collect endpoint is
// rate-limited to 100 requests per client per 15 minutes.
func NewHandler(store *Store, limiterStore ratelimit.CounterStore) *Handler {
	return &Handler{
		store:   store,
		limiter: ratelimit.New(limiterStore, 100, 15*time.Minute),
	}
}

// Collect handles POST /api/analytics. The endpoint always acknowledges a
// valid batch; storage failures are logged rather than reported so a
// broken analytics store never surfaces in the client.
func (h *Handler) Collect(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many analytics requests")
	}

	// Honor Do Not Track.
	if c.Request().Header.Get("DNT") == "1" {
		return c.NoContent(http.StatusNoContent)
	}

	var req CollectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid analytics data format")
	}
	if err := validateCollectRequest(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid analytics data format: "+err.Error())
	}

	if err := h.store.SaveBatch(&req, h.store.HashIP(c.RealIP())); err != nil {
		c.Logger().Errorf("save analytics batch: %v", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"received":  len(req.Events),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// StatsJSON handles GET /api/analytics/stats with 30-day aggregates.
func (h *Handler) StatsJSON(c echo.Context) error {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)
	stats, err := h.store.GetStats(from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// MethodNotAllowed rejects disallowed verbs on the analytics routes.
func MethodNotAllowed(c echo.Context) error {
	return echo.NewHTTPError(http.StatusMethodNotAllowed, "Method not allowed")
}
