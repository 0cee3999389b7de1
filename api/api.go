// Package api provides HTTP handlers for the enrichment API.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/latisnere77/suplementia-enrichment/engine"
	"github.com/latisnere77/suplementia-enrichment/job"
	"github.com/latisnere77/suplementia-enrichment/metrics"
)

// API wires all Forge-style HTTP handlers together for the enrichment
// system.
type API struct {
	eng    *engine.Engine
	router forge.Router
}

// New creates an API from an enrichment Engine.
func New(eng *engine.Engine, router forge.Router) *API {
	return &API{eng: eng, router: router}
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	a.RegisterRoutes(a.router)
	return a.router.Handler()
}

// RegisterRoutes registers all enrichment API routes into the given Forge
// router with full OpenAPI metadata.
func (a *API) RegisterRoutes(router forge.Router) {
	a.registerEnrichmentRoutes(router)
	a.registerMetricsRoutes(router)
}

// registerEnrichmentRoutes registers job submission and polling routes.
func (a *API) registerEnrichmentRoutes(router forge.Router) {
	g := router.Group("/v1", forge.WithGroupTags("enrichment"))

	_ = g.POST("/enrichment", a.startEnrichment,
		forge.WithSummary("Start enrichment"),
		forge.WithDescription("Creates an analysis job for a supplement and returns its ID for polling."),
		forge.WithOperationID("startEnrichment"),
		forge.WithRequestSchema(EnrichRequest{}),
		forge.WithResponseSchema(http.StatusAccepted, "Job accepted", EnrichResponse{}),
		forge.WithErrorResponses(),
	)

	_ = g.GET("/enrichment/jobs/:jobId", a.getJob,
		forge.WithSummary("Get enrichment job"),
		forge.WithDescription("Returns the status and, once finished, the result of an enrichment job."),
		forge.WithOperationID("getEnrichmentJob"),
		forge.WithResponseSchema(http.StatusOK, "Job details", &job.Job{}),
		forge.WithErrorResponses(),
	)

	_ = g.POST("/enrichment/jobs/:jobId/retry", a.retryEnrichment,
		forge.WithSummary("Retry enrichment"),
		forge.WithDescription("Creates a new job continuing the given job's retry chain."),
		forge.WithOperationID("retryEnrichment"),
		forge.WithRequestSchema(RetryRequest{}),
		forge.WithResponseSchema(http.StatusAccepted, "Retry accepted", EnrichResponse{}),
		forge.WithErrorResponses(),
	)
}

// registerMetricsRoutes registers collector read-out routes.
func (a *API) registerMetricsRoutes(router forge.Router) {
	g := router.Group("/v1", forge.WithGroupTags("metrics"))

	_ = g.GET("/metrics", a.metricsSummary,
		forge.WithSummary("Metrics summary"),
		forge.WithDescription("Returns lifecycle counters, error counts, and latency percentiles."),
		forge.WithOperationID("metricsSummary"),
		forge.WithResponseSchema(http.StatusOK, "Metrics summary", metrics.Summary{}),
		forge.WithErrorResponses(),
	)

	_ = g.GET("/metrics/latency", a.latencySummary,
		forge.WithSummary("Latency summary"),
		forge.WithDescription("Returns latency percentiles over the rolling sample window."),
		forge.WithOperationID("latencySummary"),
		forge.WithResponseSchema(http.StatusOK, "Latency summary", metrics.LatencyMetrics{}),
		forge.WithErrorResponses(),
	)
}
