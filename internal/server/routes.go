package server

import (
	"net/http"

	"github.com/OFFIS-RIT/graphlift/internal/server/routes"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo, gatherer prometheus.Gatherer) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	e.GET("/", routes.GetRootHandler)
	e.GET("/stats", routes.GetStatsHandler)

	// Retrieval routes
	e.GET("/search", routes.GetSearchHandler)
	e.GET("/semantic", routes.GetSemanticHandler)
	e.GET("/ask", routes.GetAskHandler)

	// Graph routes
	e.GET("/entity", routes.GetEntityHandler)
	e.GET("/entities", routes.GetEntitiesHandler)
	e.GET("/communities", routes.GetCommunitiesHandler)
}
