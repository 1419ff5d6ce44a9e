package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ErrorHandler renders every error that escapes a handler as a JSON body.
// Unmatched routes become 404 and unexpected failures become 500 without
// leaking the cause to the client.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if code, body, ok := classify(err); ok {
			if werr := c.JSON(code, body); werr != nil {
				log.Error().Err(werr).Msg("write error response")
			}
			return
		}
		code, msg := http.StatusInternalServerError, "Internal server error"

		var he *echo.HTTPError
		switch {
		case errors.Is(err, echo.ErrNotFound), errors.Is(err, echo.ErrMethodNotAllowed):
			code, msg = http.StatusNotFound, "Route not found"
		case errors.As(err, &he):
			code = he.Code
			if code >= http.StatusInternalServerError {
				log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
			} else {
				msg = fmt.Sprint(he.Message)
			}
		default:
			log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"error": msg})
		}
		if err != nil {
			log.Error().Err(err).Msg("write error response")
		}
	}
}
