// Package handlers exposes the HTTP surface. Handlers bind input, pull
// the caller identity from the request context and delegate to services.
package handlers

import (
	"net/http"

	"wifibilling/internal/common"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// tenantAndActor reads the verified identity placed by the auth
// middleware. Requests without it never reach the handlers.
func tenantAndActor(c echo.Context) (uuid.UUID, string, error) {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, "", common.SendUnauthorizedError(c)
	}
	return tenantID, common.GetActorFromContext(c.Request().Context()), nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	return common.ValidateUUID(c.Param("id"), "id")
}

type healthHandler struct{}

func NewHealthHandler() *healthHandler {
	return &healthHandler{}
}

func (h *healthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
