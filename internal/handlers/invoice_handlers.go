package handlers

import (
	"net/http"
	"strconv"

	"wifibilling/internal/common"
	"wifibilling/internal/repositories"
	"wifibilling/internal/services"

	"github.com/labstack/echo/v4"
)

type InvoiceHandler struct {
	invoices services.InvoiceService
}

func NewInvoiceHandler(invoices services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Generate creates an invoice. A render failure still leaves the invoice
// persisted; the error response tells the client the document is missing.
func (h *InvoiceHandler) Generate(c echo.Context) error {
	tenantID, actor, err := tenantAndActor(c)
	if err != nil {
		return err
	}

	var input services.GenerateInvoiceInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	invoice, err := h.invoices.Generate(c.Request().Context(), tenantID, input, actor)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) Get(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	invoice, err := h.invoices.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) List(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}

	filter := repositories.InvoiceFilter{Status: c.QueryParam("status")}
	if raw := c.QueryParam("customer_id"); raw != "" {
		customerID, err := common.ValidateUUID(raw, "customer_id")
		if err != nil {
			return common.SendError(c, err)
		}
		filter.CustomerID = customerID
	}
	if raw := c.QueryParam("from"); raw != "" {
		from, err := common.ValidateDateFormat(raw, "from")
		if err != nil {
			return common.SendError(c, err)
		}
		filter.From = from
	}
	if raw := c.QueryParam("to"); raw != "" {
		to, err := common.ValidateDateFormat(raw, "to")
		if err != nil {
			return common.SendError(c, err)
		}
		filter.To = to
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter.Limit, filter.Offset = common.ValidatePaginationParams(limit, offset)

	invoices, err := h.invoices.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) Edit(c echo.Context) error {
	tenantID, actor, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var input services.EditInvoiceInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	invoice, err := h.invoices.Edit(c.Request().Context(), tenantID, id, input, actor)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) MarkPaid(c echo.Context) error {
	tenantID, actor, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var input services.MarkPaidInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	invoice, err := h.invoices.MarkPaid(c.Request().Context(), tenantID, id, input, actor)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) Send(c echo.Context) error {
	tenantID, actor, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	invoice, err := h.invoices.Send(c.Request().Context(), tenantID, id, actor)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) BulkSend(c echo.Context) error {
	tenantID, actor, err := tenantAndActor(c)
	if err != nil {
		return err
	}

	var input services.BulkSendInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	result, err := h.invoices.BulkSend(c.Request().Context(), tenantID, input, actor)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *InvoiceHandler) Download(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	pdf, filename, err := h.invoices.Download(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func (h *InvoiceHandler) Delete(c echo.Context) error {
	tenantID, _, err := tenantAndActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.invoices.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
