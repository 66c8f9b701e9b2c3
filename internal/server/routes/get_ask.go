package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/graphlift/internal/server/middleware"
	"github.com/OFFIS-RIT/graphlift/pkg/query"

	"github.com/labstack/echo/v4"
)

func GetAskHandler(c echo.Context) error {
	type askParams struct {
		Question string `query:"question" validate:"required"`
	}

	type askResponse struct {
		Status       string         `json:"status"`
		Question     string         `json:"question"`
		SearchMethod string         `json:"search_method"`
		Fallback     bool           `json:"fallback"`
		Count        int            `json:"count"`
		Results      []query.Answer `json:"results"`
	}

	params := &askParams{}
	if err := c.Bind(params); err != nil {
		return err
	}
	if err := c.Validate(params); err != nil {
		return err
	}

	ctx := c.Request().Context()
	out, err := middleware.GetApp(c).Query.Ask(ctx, params.Question)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, askResponse{
		Status:       "success",
		Question:     params.Question,
		SearchMethod: string(out.Strategy),
		Fallback:     out.Fallback,
		Count:        len(out.Answers),
		Results:      out.Answers,
	})
}
