package handlers

import (
	"net/http"
	"strconv"

	"wifibilling/internal/common"
	"wifibilling/internal/repositories"
	"wifibilling/internal/services"

	"github.com/labstack/echo/v4"
)

type CustomerHandler struct {
	customers services.CustomerService
	importer  services.ImportService
}

func NewCustomerHandler(customers services.CustomerService, importer services.ImportService) *CustomerHandler {
	return &CustomerHandler{customers: customers, importer: importer}
}

func (h *CustomerHandler) Create(c echo.Context) error {
	tenantID, actor, err := tenantAndActor(c)
	if err != nil {
		return err
	}

	var input services.CustomerInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	customer, err := h.customers.Create(c.Request().Context(), tenantID, input, actor)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) Get(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	customer, err := h.customers.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Update(c echo.Context) error {
	tenantID, actor, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var input services.CustomerInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	customer, err := h.customers.Update(c.Request().Context(), tenantID, id, input, actor)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.customers.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CustomerHandler) List(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	customers, err := h.customers.List(c.Request().Context(), tenantID, repositories.CustomerFilter{
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, customers)
}

// Import accepts an xlsx upload under the "file" form field.
func (h *CustomerHandler) Import(c echo.Context) error {
	tenantID, actor, err := tenantAndActor(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "spreadsheet file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendValidationError(c, "file", "could not open uploaded file")
	}
	defer file.Close()

	result, err := h.importer.ImportCustomers(c.Request().Context(), tenantID, file, actor)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
