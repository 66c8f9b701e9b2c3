package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/graphlift/internal/server/middleware"
	"github.com/OFFIS-RIT/graphlift/pkg/common"

	"github.com/labstack/echo/v4"
)

func GetEntityHandler(c echo.Context) error {
	type entityParams struct {
		Name  string `query:"name" validate:"required"`
		Depth int    `query:"depth" validate:"min=1,max=3"`
	}

	type entityResponse struct {
		Status string               `json:"status"`
		Data   *common.EntityDetail `json:"data"`
	}

	params := &entityParams{Depth: 1}
	if err := c.Bind(params); err != nil {
		return err
	}
	if err := c.Validate(params); err != nil {
		return err
	}

	ctx := c.Request().Context()
	detail, err := middleware.GetApp(c).Query.EntityDetail(ctx, params.Name, params.Depth)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entityResponse{Status: "success", Data: detail})
}
