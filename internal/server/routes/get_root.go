package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/graphlift/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// GetRootHandler describes the API and whether semantic search is usable.
func GetRootHandler(c echo.Context) error {
	type rootResponse struct {
		Status         string            `json:"status"`
		Message        string            `json:"message"`
		SemanticSearch bool              `json:"semantic_search"`
		Endpoints      map[string]string `json:"endpoints"`
	}

	app := middleware.GetApp(c)
	return c.JSON(http.StatusOK, rootResponse{
		Status:         "ok",
		Message:        "graphlift API running",
		SemanticSearch: app.Query.SemanticEnabled(),
		Endpoints: map[string]string{
			"stats":       "/stats - Get graph statistics",
			"search":      "/search?q=keyword - Keyword search",
			"semantic":    "/semantic?q=question - Semantic search over entity embeddings",
			"entity":      "/entity?name=entity_name&depth=1 - Get entity details",
			"communities": "/communities?q=keyword - Search communities",
			"ask":         "/ask?question=query - Natural language question",
			"entities":    "/entities?limit=100 - List entities by degree",
			"metrics":     "/metrics - Prometheus metrics",
		},
	})
}
