package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *APIV1Service) getDashboardStats(c echo.Context) error {
	dashboardStats, err := s.Collector.GetDashboardStats(c.Request().Context())
	if err != nil {
		slog.Error("failed to collect dashboard stats", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to collect statistics")
	}
	return c.JSON(http.StatusOK, dashboardStats)
}
