package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/graphlift/internal/server/middleware"
	"github.com/OFFIS-RIT/graphlift/pkg/common"

	"github.com/labstack/echo/v4"
)

type searchResponse struct {
	Status     string                `json:"status"`
	Query      string                `json:"query"`
	SearchType string                `json:"search_type"`
	Fallback   bool                  `json:"fallback"`
	Count      int                   `json:"count"`
	Results    []common.SearchResult `json:"results"`
}

// GetSearchHandler runs a case insensitive substring search on entities.
func GetSearchHandler(c echo.Context) error {
	type searchParams struct {
		Q     string `query:"q" validate:"required"`
		Limit int    `query:"limit" validate:"min=1,max=100"`
	}

	params := &searchParams{Limit: 10}
	if err := c.Bind(params); err != nil {
		return err
	}
	if err := c.Validate(params); err != nil {
		return err
	}

	ctx := c.Request().Context()
	out, err := middleware.GetApp(c).Query.KeywordSearch(ctx, params.Q, params.Limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, searchResponse{
		Status:     "success",
		Query:      params.Q,
		SearchType: string(out.Strategy),
		Count:      len(out.Results),
		Results:    out.Results,
	})
}
