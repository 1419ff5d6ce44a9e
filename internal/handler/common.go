package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/StoryBuilderAi/storybuilder/internal/service"
)

const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func queryID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.QueryParam(name), 10, 64)
	return id, err == nil && id != 0
}

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"error": msg})
}

func notFound(c echo.Context, what string) error {
	return errorJSON(c, http.StatusNotFound, what+" not found")
}

func invalidID(c echo.Context) error {
	return errorJSON(c, http.StatusBadRequest, "Invalid id")
}

// classify maps known service errors to a status and body.
func classify(err error) (int, echo.Map, bool) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		body := echo.Map{"error": verr.Message}
		if len(verr.Details) > 0 {
			body["details"] = verr.Details
		}
		return http.StatusBadRequest, body, true
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, echo.Map{"error": err.Error()}, true
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, echo.Map{"error": "Forbidden"}, true
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidSession):
		return http.StatusUnauthorized, echo.Map{"error": err.Error()}, true
	case errors.Is(err, service.ErrWrongPassword):
		return http.StatusBadRequest, echo.Map{"error": err.Error()}, true
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, echo.Map{"error": err.Error()}, true
	}
	return 0, nil, false
}

// writeError answers known service errors directly and hands anything else
// to the central error handler.
func writeError(c echo.Context, err error) error {
	if code, body, ok := classify(err); ok {
		return c.JSON(code, body)
	}
	return err
}

// bind decodes the request into req and runs struct validation.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return &service.ValidationError{Message: "Invalid request body"}
	}
	return c.Validate(req)
}
