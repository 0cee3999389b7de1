package api

import (
	"net/http"

	"github.com/xraph/forge"
)

func (a *API) metricsSummary(ctx forge.Context) error {
	return ctx.JSON(http.StatusOK, a.eng.Collector().Summary())
}

func (a *API) latencySummary(ctx forge.Context) error {
	return ctx.JSON(http.StatusOK, a.eng.Collector().LatencySummary())
}
