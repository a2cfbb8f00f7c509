package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grupoquokka/diagnostico/internal/cache"
	"github.com/grupoquokka/diagnostico/internal/database"
	apperrors "github.com/grupoquokka/diagnostico/internal/errors"
	"github.com/grupoquokka/diagnostico/internal/frontend"
	"github.com/grupoquokka/diagnostico/internal/monitoring"
	"github.com/grupoquokka/diagnostico/internal/quiz"
	"github.com/grupoquokka/diagnostico/internal/ratelimit"
	"github.com/grupoquokka/diagnostico/internal/relay"
	"github.com/grupoquokka/diagnostico/internal/security"
	"github.com/grupoquokka/diagnostico/internal/session"
)

// deps are the components the router wires together. leads may be nil when
// the ledger is disabled; limiter and scores may be nil to disable rate
// limiting and score caching.
type deps struct {
	catalog *quiz.Catalog
	relay   *relay.Service
	leads   *database.LeadService
	limiter *ratelimit.Limiter
	scores  *cache.Cache
	metrics *monitoring.Metrics
	logger  *monitoring.Logger

	origins []string
	hsts    bool

	// health sections added to /health/details
	health map[string]func() interface{}
}

func setupRouter(d deps) (*gin.Engine, error) {
	r := gin.New()

	r.Use(apperrors.RecoveryHandler())
	r.Use(monitoring.MonitoringMiddleware(d.metrics, d.logger))
	r.Use(security.SecurityHeadersMiddleware(d.hsts))
	r.Use(security.MaxBodyMiddleware(security.DefaultMaxBodyBytes))

	a := &api{catalog: d.catalog, leads: d.leads, metrics: d.metrics}

	r.GET("/health", a.health)
	r.GET("/health/details", a.healthDetails(d.health))

	apiGroup := r.Group("/api")
	apiGroup.Use(security.CORSMiddleware(d.origins))
	{
		send := []gin.HandlerFunc{}
		if d.limiter != nil {
			send = append(send, d.limiter.IPRateLimitMiddleware(d.metrics))
		}
		send = append(send, relay.NewHandler(d.relay, d.logger, d.metrics).Send)
		apiGroup.Any("/send", send...)

		jsonAPI := apiGroup.Group("")
		jsonAPI.Use(apperrors.ErrorHandler())
		jsonAPI.GET("/diagnostics", a.listDiagnostics)
		jsonAPI.GET("/diagnostics/:slug", a.getDiagnostic)
		score := []gin.HandlerFunc{security.RequireJSON()}
		if d.scores != nil {
			score = append(score, d.scores.Middleware(d.metrics))
		}
		jsonAPI.POST("/diagnostics/:slug/score", append(score, a.scoreDiagnostic)...)
		jsonAPI.GET("/leads/stats", a.leadStats)
		jsonAPI.GET("/leads/recent", a.recentLeads)
	}

	pages, err := frontend.NewHandler(d.catalog, d.relay, session.CloseResult)
	if err != nil {
		return nil, err
	}
	pageGroup := r.Group("/")
	pageGroup.Use(security.CSPMiddleware())
	pages.Register(pageGroup)

	r.StaticFS("/static", http.FS(frontend.StaticFS()))

	return r, nil
}
