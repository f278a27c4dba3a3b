package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Root reports the service name and version.
func Root(name, version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": name, "version": version})
	}
}

// Health is a liveness probe for load balancers and monitoring.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
