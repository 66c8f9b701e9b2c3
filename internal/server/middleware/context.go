package middleware

import (
	"github.com/OFFIS-RIT/graphlift/pkg/query"

	"github.com/labstack/echo/v4"
)

type App struct {
	Query *query.Service
}

type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware hands the shared App to every handler. The App is
// built once at startup; handlers keep no state of their own.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}

// GetApp returns the App of a request.
func GetApp(c echo.Context) *App {
	return c.(*AppContext).App
}
