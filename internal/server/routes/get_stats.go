package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/graphlift/internal/server/middleware"
	"github.com/OFFIS-RIT/graphlift/pkg/common"

	"github.com/labstack/echo/v4"
)

func GetStatsHandler(c echo.Context) error {
	type statsResponse struct {
		Status string            `json:"status"`
		Data   common.GraphStats `json:"data"`
	}

	ctx := c.Request().Context()
	stats, err := middleware.GetApp(c).Query.Stats(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{Status: "success", Data: stats})
}
