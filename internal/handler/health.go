package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health reports liveness for load balancers and monitors.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "OK",
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func Hello(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Hello from StoryBuilder API!",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
