package handlers

import (
	"net/http"

	"wifibilling/internal/common"
	"wifibilling/internal/services"

	"github.com/labstack/echo/v4"
)

type TemplateHandler struct {
	templates services.TemplateService
}

func NewTemplateHandler(templates services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

func (h *TemplateHandler) Create(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}

	var input services.TemplateInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	template, err := h.templates.Create(c.Request().Context(), tenantID, input)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, template)
}

func (h *TemplateHandler) Get(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	template, err := h.templates.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) Update(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var input services.TemplateInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	template, err := h.templates.Update(c.Request().Context(), tenantID, id, input)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) Delete(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.templates.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TemplateHandler) List(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}

	templates, err := h.templates.List(c.Request().Context(), tenantID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, templates)
}

func (h *TemplateHandler) SetDefault(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	template, err := h.templates.SetDefault(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, template)
}
