package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetAIUsage reports accumulated AI call counts and estimated spend
// since the server started.
func (s *APIV1Service) GetAIUsage(c echo.Context) error {
	return c.JSON(http.StatusOK, s.CostMonitor.GetReport())
}
