package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/graphlift/internal/server/middleware"
	"github.com/OFFIS-RIT/graphlift/pkg/common"

	"github.com/labstack/echo/v4"
)

// GetEntitiesHandler lists entities by degree. Without limit every entity
// is returned.
func GetEntitiesHandler(c echo.Context) error {
	type entitiesParams struct {
		Limit int `query:"limit" validate:"omitempty,min=1,max=10000"`
	}

	type entitiesResponse struct {
		Status   string                 `json:"status"`
		Count    int                    `json:"count"`
		Entities []common.EntitySummary `json:"entities"`
	}

	params := &entitiesParams{}
	if err := c.Bind(params); err != nil {
		return err
	}
	if err := c.Validate(params); err != nil {
		return err
	}

	ctx := c.Request().Context()
	entities, err := middleware.GetApp(c).Query.Entities(ctx, params.Limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entitiesResponse{Status: "success", Count: len(entities), Entities: entities})
}
