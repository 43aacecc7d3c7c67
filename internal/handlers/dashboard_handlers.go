package handlers

import (
	"net/http"

	"wifibilling/internal/common"
	"wifibilling/internal/services"

	"github.com/labstack/echo/v4"
)

type DashboardHandler struct {
	dashboard services.DashboardService
}

func NewDashboardHandler(dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Stats(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}

	stats, err := h.dashboard.Stats(c.Request().Context(), tenantID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
