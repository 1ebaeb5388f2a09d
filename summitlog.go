// Package summitlog is the editorial backend for a static mountaineering
// blog built with Go, Echo, and templ. It ingests multipart adventure posts
// into a flat-file markdown collection, serves search over the published
// collection, handles image uploads, and collects privacy-conscious
// analytics.
//
// The static site generator owns rendering; summitlog owns the write path
// and the JSON API. Embedding apps may supply their own templ components via
// ViewFuncs to get a server-rendered editor shell.
package summitlog

import (
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/summitlog/summitlog/analytics"
	"github.com/summitlog/summitlog/content"
	"github.com/summitlog/summitlog/images"
	"github.com/summitlog/summitlog/ratelimit"
)

// Search rate limit: 50 requests per 10 minutes per client IP.
const (
	searchLimitMax    = 50
	searchLimitWindow = 10 * time.Minute
)

// ViewFuncs holds caller-provided templ components for the editor shell and
// error pages. All fields are optional; the editor routes are registered
// only when Dashboard is set, and the error handler falls back to plain
// responses when the error views are nil.
type ViewFuncs struct {
	Dashboard   func(records []content.PeakRecord, siteURL string) templ.Component
	EditForm    func(record content.PeakRecord, siteURL string) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central summitlog application. It wires together the content
// store, collection cache, image saver, rate limiters, analytics, and the
// HTTP surface.
type App struct {
	Config     Config
	Echo       *echo.Echo
	Store      *content.Store
	Collection *collectionCache
	Images     *images.Saver
	Views      ViewFuncs

	// collection reads straight from disk; update handlers use it so
	// carry-forward never sees a stale cache snapshot.
	collection *content.Collection

	limiterStore  ratelimit.CounterStore
	searchLimiter *ratelimit.Limiter

	analyticsStore   *analytics.Store
	analyticsHandler *analytics.Handler

	customRoutes []func(*App)
	staticDir    string
}

// New creates a summitlog App with the given configuration and views.
func New(cfg Config, views ViewFuncs, opts ...Option) *App {
	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the stores, middleware, and routes, then runs the
// server until it is shut down.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}

	if a.analyticsStore != nil {
		stopCleanup := a.analyticsStore.StartCleanupScheduler(a.Config.AnalyticsRetentionDays, 24*time.Hour)
		defer stopCleanup()
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// init wires the app without starting the listener. Split out so tests can
// exercise the full route table against httptest.
func (a *App) init() error {
	a.Store = content.NewStore(a.Config.ContentDir)
	a.collection = content.NewCollection(a.Config.ContentDir)
	a.Collection = newCollectionCache(a.collection, a.Config.CollectionCacheTTL)
	a.Images = images.NewSaver(a.Config.ImageDir)

	if a.limiterStore == nil {
		a.limiterStore = ratelimit.NewMemory()
	}
	a.searchLimiter = ratelimit.New(a.limiterStore, searchLimitMax, searchLimitWindow)

	if a.Config.AnalyticsEnabled {
		store, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("summitlog: init analytics: %w", err)
		}
		a.analyticsStore = store
		a.analyticsHandler = analytics.NewHandler(store, a.limiterStore)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Static assets. Images are written by the Saver under ImageDir and
	// served back from the same tree.
	e.Static("/public", a.staticDir)
	e.Static("/images", a.Config.ImageDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Published-collection surfaces.
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Ingestion API.
	e.POST("/api/create-post", a.handleCreatePost)
	e.POST("/api/update-post", a.handleUpdatePost)
	e.POST("/api/upload-image", a.handleUploadImage)

	// Search is GET-only; the other verbs answer 405 explicitly.
	e.GET("/api/search", a.handleSearch)
	e.POST("/api/search", handleMethodNotAllowed)
	e.PUT("/api/search", handleMethodNotAllowed)
	e.DELETE("/api/search", handleMethodNotAllowed)

	if a.analyticsHandler != nil {
		e.POST("/api/analytics", a.analyticsHandler.Collect)
		e.GET("/api/analytics", analytics.MethodNotAllowed)
		e.GET("/api/analytics/stats", a.analyticsHandler.StatsJSON)
	}

	// Editor shell, only when the embedding app supplies views.
	if a.Views.Dashboard != nil {
		e.GET("/admin/", a.handleAdminDashboard)
		e.GET("/admin/edit/:slug", a.handleAdminEdit)
	}
}

// Close releases resources. Call when the app is shutting down.
func (a *App) Close() error {
	if a.analyticsStore != nil {
		return a.analyticsStore.Close()
	}
	return nil
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) handleAdminDashboard(c echo.Context) error {
	records, err := a.Collection.List()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Dashboard(records, a.Config.SiteURL))
}

func (a *App) handleAdminEdit(c echo.Context) error {
	record, err := a.Collection.Get(c.Param("slug"))
	if err != nil {
		if err == content.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return err
	}
	return Render(c, a.Views.EditForm(record, a.Config.SiteURL))
}

func handleMethodNotAllowed(c echo.Context) error {
	return echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed")
}
