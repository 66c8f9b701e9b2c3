package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/graphlift/internal/server/middleware"
	"github.com/OFFIS-RIT/graphlift/pkg/common"

	"github.com/labstack/echo/v4"
)

// GetCommunitiesHandler searches communities by member name, or lists the
// highest ranked ones without q.
func GetCommunitiesHandler(c echo.Context) error {
	type communitiesParams struct {
		Q     string `query:"q"`
		Limit int    `query:"limit" validate:"min=1,max=50"`
	}

	type communitiesResponse struct {
		Status  string                    `json:"status"`
		Query   *string                   `json:"query"`
		Count   int                       `json:"count"`
		Results []common.CommunitySummary `json:"results"`
	}

	params := &communitiesParams{Limit: 10}
	if err := c.Bind(params); err != nil {
		return err
	}
	if err := c.Validate(params); err != nil {
		return err
	}

	ctx := c.Request().Context()
	results, err := middleware.GetApp(c).Query.Communities(ctx, params.Q, params.Limit)
	if err != nil {
		return err
	}
	if results == nil {
		results = []common.CommunitySummary{}
	}

	res := communitiesResponse{Status: "success", Count: len(results), Results: results}
	if params.Q != "" {
		res.Query = &params.Q
	}
	return c.JSON(http.StatusOK, res)
}
