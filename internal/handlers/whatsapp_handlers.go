package handlers

import (
	"net/http"

	"wifibilling/internal/common"
	"wifibilling/internal/whatsapp"

	"github.com/labstack/echo/v4"
)

type WhatsAppHandler struct {
	gateway whatsapp.Gateway
	manager *whatsapp.Manager
}

func NewWhatsAppHandler(gateway whatsapp.Gateway, manager *whatsapp.Manager) *WhatsAppHandler {
	return &WhatsAppHandler{gateway: gateway, manager: manager}
}

// Status reports the gateway connection state. The poll also feeds the
// manager's reconnect tracking.
func (h *WhatsAppHandler) Status(c echo.Context) error {
	status := h.manager.Refresh(c.Request().Context())
	return c.JSON(http.StatusOK, status)
}

func (h *WhatsAppHandler) PairingCode(c echo.Context) error {
	code, err := h.gateway.PairingCode(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"code": code})
}

func (h *WhatsAppHandler) Reconnect(c echo.Context) error {
	if err := h.manager.Reconnect(c.Request().Context()); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "reconnecting"})
}

func (h *WhatsAppHandler) Logout(c echo.Context) error {
	if err := h.manager.Logout(c.Request().Context()); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "logged_out"})
}
