package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loopplatform/merchant-pulse/api/controllers"
	reportcontrollers "github.com/loopplatform/merchant-pulse/api/controllers/reports"
	"github.com/loopplatform/merchant-pulse/api/middleware"
	"github.com/loopplatform/merchant-pulse/internal/reports"
	"github.com/loopplatform/merchant-pulse/pkg/config"
	"github.com/loopplatform/merchant-pulse/pkg/db"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
	"github.com/loopplatform/merchant-pulse/pkg/redis"
)

// NewRouter assembles the reporting API. The surface is read-only and
// unauthenticated; the export route carries a redis fixed-window rate
// limit because it walks the full opportunity table.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	reportsService reports.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	exportPolicy := middleware.NewExportRateLimitPolicy(
		"export",
		cfg.Reports.ExportRateWindow,
		cfg.Reports.ExportRateLimit,
	)

	// A typed nil *redis.Client would slip through the interface nil
	// checks in the readiness controller and the rate limiter, so both
	// get wired only when the client exists.
	var cachePinger controllers.Pinger
	exportLimit := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		cachePinger = redisClient
		exportLimit = middleware.ExportRateLimit(exportPolicy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePinger))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/performance", reportcontrollers.ListPerformance(reportsService, logg, cfg.Reports))
		r.With(exportLimit).
			Get("/performance/export", reportcontrollers.ExportPerformance(reportsService, logg, cfg.Reports))
		r.Get("/performance/{accountID}", reportcontrollers.MerchantPerformance(reportsService, logg, cfg.Reports))
		r.Get("/summary", reportcontrollers.ProgramSummary(reportsService, logg, cfg.Reports))
		r.Get("/data-quality", reportcontrollers.DataQuality(reportsService, logg))
	})

	return r
}
