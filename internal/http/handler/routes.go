package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"

	"doccompare/docs"
	"doccompare/internal/extract"
	"doccompare/internal/http/middleware"
	"doccompare/internal/metrics"
	"doccompare/internal/ratelimit"
	"doccompare/internal/service"
)

// Dependencies are the collaborators the routes need. DB, Limiter, Metrics and
// Gatherer may be nil.
type Dependencies struct {
	DB         *sql.DB
	Comparator service.ComparisonService
	Reports    service.ReportService
	Extractor  extract.Extractor
	Limiter    ratelimit.Limiter
	Metrics    *metrics.Comparison
	Gatherer   prometheus.Gatherer
	CORSOrigin string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Methods other than those registered below get a 405 from the router.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/health", HealthCheck(deps.DB))
	app.Get("/healthz", LivenessProbe())
	if deps.Gatherer != nil {
		app.Get("/metrics", Metrics(deps.Gatherer))
	}
	app.Get("/swagger/*", SwaggerUI())

	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	api := app.Group("/api", middleware.CORS(deps.CORSOrigin))
	api.Post("/compare", middleware.RateLimit(limiter, deps.Metrics), Compare(deps.Comparator))
	api.Post("/extract", Extract(deps.Extractor))
	api.Post("/reports/export", ExportReport(deps.Reports))
	api.Post("/reports", PublishReport(deps.Reports))
}

// SwaggerUI serves the API docs with host and scheme taken from the request.
func SwaggerUI() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get(fiber.HeaderXForwardedProto); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get(fiber.HeaderHost)
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	}
}
