package util

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/OFFIS-RIT/graphlift/pkg/logger"
	"github.com/OFFIS-RIT/graphlift/pkg/query"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// HTTPErrorHandler writes errors as ErrorResponse. Validation failures are
// 422, service sentinels map to their status and anything else is a 500
// carrying the error message.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, detail := Classify(err)
	if code >= http.StatusInternalServerError {
		logger.Error("[Server] Request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"status", code,
			"err", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, ErrorResponse{Status: "error", Detail: detail})
}

// Classify maps an error to a status code and a client facing detail.
func Classify(err error) (int, string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusUnprocessableEntity, validationDetail(verrs)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	switch {
	case errors.Is(err, query.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, query.ErrSemanticDisabled):
		return http.StatusServiceUnavailable, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

func validationDetail(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
