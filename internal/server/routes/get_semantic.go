package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/graphlift/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// GetSemanticHandler runs a vector search over entity embeddings. The
// search_type field names the strategy that actually answered, which is
// "keyword" after a fallback.
func GetSemanticHandler(c echo.Context) error {
	type semanticParams struct {
		Q     string `query:"q" validate:"required"`
		Limit int    `query:"limit" validate:"min=1,max=20"`
	}

	params := &semanticParams{Limit: 5}
	if err := c.Bind(params); err != nil {
		return err
	}
	if err := c.Validate(params); err != nil {
		return err
	}

	ctx := c.Request().Context()
	out, err := middleware.GetApp(c).Query.SemanticSearch(ctx, params.Q, params.Limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, searchResponse{
		Status:     "success",
		Query:      params.Q,
		SearchType: string(out.Strategy),
		Fallback:   out.Fallback,
		Count:      len(out.Results),
		Results:    out.Results,
	})
}
