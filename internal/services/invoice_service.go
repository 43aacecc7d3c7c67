package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wifibilling/internal/billing"
	"wifibilling/internal/caching"
	"wifibilling/internal/common"
	"wifibilling/internal/documents"
	"wifibilling/internal/models"
	"wifibilling/internal/money"
	"wifibilling/internal/repositories"
	"wifibilling/internal/whatsapp"

	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// GenerateInvoiceInput drives invoice creation. Status may be draft or
// paid; every other lifecycle state is reached through transitions.
type GenerateInvoiceInput struct {
	CustomerID              uuid.UUID       `json:"customer_id"`
	Amount                  decimal.Decimal `json:"amount"`
	IncludeRouterCost       bool            `json:"include_router_cost"`
	IncludeInstallationCost bool            `json:"include_installation_cost"`
	Tax                     decimal.Decimal `json:"tax"`
	PeriodStart             time.Time       `json:"period_start"`
	PeriodEnd               time.Time       `json:"period_end"`
	DueDate                 time.Time       `json:"due_date"`
	Notes                   string          `json:"notes"`
	Status                  string          `json:"status"`
	PaymentMethod           string          `json:"payment_method"`
	SendWhatsApp            bool            `json:"send_whatsapp"`
}

// EditInvoiceInput updates an existing invoice. Nil fields are left
// unchanged; the total is always recomputed after applying them.
type EditInvoiceInput struct {
	Amount               *decimal.Decimal `json:"amount"`
	RouterCost           *decimal.Decimal `json:"router_cost"`
	InstallationCost     *decimal.Decimal `json:"installation_cost"`
	OtherFees            *decimal.Decimal `json:"other_fees"`
	InstallationDiscount *decimal.Decimal `json:"installation_discount"`
	Tax                  *decimal.Decimal `json:"tax"`
	PeriodStart          *time.Time       `json:"period_start"`
	PeriodEnd            *time.Time       `json:"period_end"`
	DueDate              *time.Time       `json:"due_date"`
	Notes                *string          `json:"notes"`
}

// MarkPaidInput records an incoming payment.
type MarkPaidInput struct {
	PaymentMethod       string     `json:"payment_method"`
	PaymentReceivedDate *time.Time `json:"payment_received_date"`
}

// BulkSendInput creates and delivers one plain subscription invoice per
// customer. Empty CustomerIDs targets every active customer.
type BulkSendInput struct {
	CustomerIDs []uuid.UUID     `json:"customer_ids"`
	Amount      decimal.Decimal `json:"amount"`
	Tax         decimal.Decimal `json:"tax"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	DueDate     time.Time       `json:"due_date"`
	Notes       string          `json:"notes"`
}

type BulkSendItem struct {
	CustomerID    uuid.UUID `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	Sent          bool      `json:"sent"`
	Error         string    `json:"error,omitempty"`
}

type BulkSendResult struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Items     []BulkSendItem `json:"items"`
}

// DocumentRenderer turns an invoice plus its customer snapshot into PDF
// bytes.
type DocumentRenderer interface {
	Render(invoice *models.Invoice, customer *models.Customer) ([]byte, error)
}

type InvoiceService interface {
	Generate(ctx context.Context, tenantID uuid.UUID, input GenerateInvoiceInput, actor string) (*models.Invoice, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter repositories.InvoiceFilter) ([]*models.Invoice, error)
	Edit(ctx context.Context, tenantID, id uuid.UUID, input EditInvoiceInput, actor string) (*models.Invoice, error)
	MarkPaid(ctx context.Context, tenantID, id uuid.UUID, input MarkPaidInput, actor string) (*models.Invoice, error)
	Send(ctx context.Context, tenantID, id uuid.UUID, actor string) (*models.Invoice, error)
	BulkSend(ctx context.Context, tenantID uuid.UUID, input BulkSendInput, actor string) (*BulkSendResult, error)
	Download(ctx context.Context, tenantID, id uuid.UUID) ([]byte, string, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type invoiceService struct {
	invoices  repositories.InvoiceRepository
	customers repositories.CustomerRepository
	templates repositories.TemplateRepository
	renderer  DocumentRenderer
	store     documents.Store
	gateway   whatsapp.Gateway
	cache     caching.CacheService
	now       func() time.Time
}

func NewInvoiceService(
	invoices repositories.InvoiceRepository,
	customers repositories.CustomerRepository,
	templates repositories.TemplateRepository,
	renderer DocumentRenderer,
	store documents.Store,
	gateway whatsapp.Gateway,
	cache caching.CacheService,
) InvoiceService {
	return &invoiceService{
		invoices:  invoices,
		customers: customers,
		templates: templates,
		renderer:  renderer,
		store:     store,
		gateway:   gateway,
		cache:     cache,
		now:       time.Now,
	}
}

func newInvoiceNumber(at time.Time) string {
	return fmt.Sprintf("INV-%s-%s", at.Format("20060102"), random.String(8, random.Uppercase+random.Numeric))
}

func newReceiptNumber() string {
	return random.String(10, random.Numeric)
}

// Generate creates the invoice, renders its PDF and optionally delivers
// it. The invoice is persisted before rendering: a render failure is
// reported to the caller but never rolls the invoice back. A delivery
// failure on generate is logged and swallowed.
func (s *invoiceService) Generate(ctx context.Context, tenantID uuid.UUID, input GenerateInvoiceInput, actor string) (*models.Invoice, error) {
	if input.CustomerID == uuid.Nil {
		return nil, common.ValidationErrorf("customer_id is required")
	}

	// Supplying a payment method at creation means the invoice is already
	// settled, so it starts out paid rather than draft.
	status := input.Status
	if status == "" {
		if input.PaymentMethod != "" {
			status = models.InvoicePaid
		} else {
			status = models.InvoiceDraft
		}
	}
	if status != models.InvoiceDraft && status != models.InvoicePaid {
		return nil, common.ValidationErrorf("status must be draft or paid at creation")
	}

	customer, err := s.customers.GetByID(ctx, tenantID, input.CustomerID)
	if err != nil {
		return nil, err
	}

	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = customer.NextDueDate
	}
	if dueDate.IsZero() {
		return nil, common.ValidationErrorf("due_date is required")
	}

	breakdown, err := billing.Compute(billing.ComputeInput{
		Amount:                  input.Amount,
		Customer:                customer,
		IncludeRouterCost:       input.IncludeRouterCost,
		IncludeInstallationCost: input.IncludeInstallationCost,
		Tax:                     input.Tax,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	periodStart := input.PeriodStart
	periodEnd := input.PeriodEnd
	if periodStart.IsZero() {
		periodStart = now
	}
	if periodEnd.IsZero() {
		periodEnd = periodStart.AddDate(0, 1, 0)
	}

	invoice := &models.Invoice{
		ID:                   uuid.New(),
		TenantID:             tenantID,
		InvoiceNumber:        newInvoiceNumber(now),
		PaymentReceiptNumber: newReceiptNumber(),
		CustomerID:           customer.ID,
		CustomerName:         customer.Name,
		CustomerPhone:        customer.PhoneWhatsApp,
		Package:              customer.Package,
		PeriodStart:          periodStart,
		PeriodEnd:            periodEnd,
		Amount:               breakdown.Amount,
		RouterCost:           breakdown.RouterCost,
		InstallationCost:     breakdown.InstallationCost,
		OtherFees:            breakdown.OtherFees,
		InstallationDiscount: breakdown.InstallationDiscount,
		Tax:                  breakdown.Tax,
		TotalAmount:          breakdown.TotalAmount,
		DueDate:              dueDate,
		InvoiceDate:          now,
		Status:               status,
		Notes:                input.Notes,
		CreatedBy:            actor,
		UpdatedBy:            actor,
	}

	if status == models.InvoicePaid {
		method := input.PaymentMethod
		if method == "" {
			method = models.PaymentCash
		}
		receivedAt := now
		invoice.PaymentReceivedDate = &receivedAt
		invoice.PaymentMethod = &method
		invoice.ReceivedBy = &actor
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}
	s.invalidateDashboard(ctx, tenantID)

	if invoice.Status == models.InvoicePaid {
		s.cascadeLastPayment(ctx, invoice, actor)
	}

	if err := s.renderAndStore(ctx, invoice, customer); err != nil {
		log.Error().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("invoice persisted but pdf render failed")
		return invoice, common.RenderErrorf("invoice %s created but document rendering failed", invoice.InvoiceNumber)
	}

	if input.SendWhatsApp {
		if err := s.deliver(ctx, invoice, actor); err != nil {
			log.Warn().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("whatsapp delivery on generate failed")
		}
	}

	return invoice, nil
}

func (s *invoiceService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	invoice.Status = invoice.EffectiveStatus(s.now())
	return invoice, nil
}

func (s *invoiceService) List(ctx context.Context, tenantID uuid.UUID, filter repositories.InvoiceFilter) ([]*models.Invoice, error) {
	invoices, err := s.invoices.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, invoice := range invoices {
		invoice.Status = invoice.EffectiveStatus(now)
	}
	return invoices, nil
}

// Edit applies partial updates and recomputes the total. The PDF is
// regenerated best-effort; when rendering fails the previous document is
// left in place and the field update still succeeds.
func (s *invoiceService) Edit(ctx context.Context, tenantID, id uuid.UUID, input EditInvoiceInput, actor string) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, common.ValidationErrorf("amount must be a positive number")
		}
		invoice.Amount = *input.Amount
	}
	if input.RouterCost != nil {
		invoice.RouterCost = *input.RouterCost
	}
	if input.InstallationCost != nil {
		invoice.InstallationCost = *input.InstallationCost
	}
	if input.OtherFees != nil {
		invoice.OtherFees = *input.OtherFees
	}
	if input.InstallationDiscount != nil {
		invoice.InstallationDiscount = *input.InstallationDiscount
	}
	if input.Tax != nil {
		invoice.Tax = *input.Tax
	}
	if input.PeriodStart != nil {
		invoice.PeriodStart = *input.PeriodStart
	}
	if input.PeriodEnd != nil {
		invoice.PeriodEnd = *input.PeriodEnd
	}
	if input.DueDate != nil {
		invoice.DueDate = *input.DueDate
	}
	if input.Notes != nil {
		invoice.Notes = *input.Notes
	}
	invoice.RecalculateTotal()
	invoice.UpdatedBy = actor

	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}
	s.invalidateDashboard(ctx, tenantID)

	customer, err := s.customers.GetByID(ctx, tenantID, invoice.CustomerID)
	if err == nil {
		if err := s.renderAndStore(ctx, invoice, customer); err != nil {
			log.Warn().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("pdf regeneration failed, previous document kept")
		}
	}

	return invoice, nil
}

// MarkPaid transitions the invoice to paid and cascades the payment onto
// the customer record best-effort.
func (s *invoiceService) MarkPaid(ctx context.Context, tenantID, id uuid.UUID, input MarkPaidInput, actor string) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoicePaid {
		return nil, common.ConflictErrorf("invoice %s is already paid", invoice.InvoiceNumber)
	}
	if invoice.Status == models.InvoiceCancelled {
		return nil, common.ValidationErrorf("cancelled invoice cannot be marked paid")
	}

	method := input.PaymentMethod
	if method == "" {
		method = models.PaymentCash
	}
	receivedAt := s.now()
	if input.PaymentReceivedDate != nil {
		receivedAt = *input.PaymentReceivedDate
	}

	invoice.Status = models.InvoicePaid
	invoice.PaymentReceivedDate = &receivedAt
	invoice.PaymentMethod = &method
	invoice.ReceivedBy = &actor
	invoice.UpdatedBy = actor

	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}
	s.invalidateDashboard(ctx, tenantID)
	s.cascadeLastPayment(ctx, invoice, actor)

	customer, err := s.customers.GetByID(ctx, tenantID, invoice.CustomerID)
	if err == nil {
		if err := s.renderAndStore(ctx, invoice, customer); err != nil {
			log.Warn().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("pdf regeneration failed, previous document kept")
		}
	}

	return invoice, nil
}

// Send delivers the invoice document over WhatsApp. Unlike delivery on
// generate, a gateway failure here is the operation's result.
func (s *invoiceService) Send(ctx context.Context, tenantID, id uuid.UUID, actor string) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := s.deliver(ctx, invoice, actor); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) deliver(ctx context.Context, invoice *models.Invoice, actor string) error {
	pdf, err := s.documentBytes(ctx, invoice)
	if err != nil {
		return err
	}

	caption := s.composeCaption(ctx, invoice)
	filename := invoice.InvoiceNumber + ".pdf"
	if err := s.gateway.SendDocument(ctx, invoice.CustomerPhone, caption, filename, pdf); err != nil {
		return err
	}

	sentAt := s.now()
	via := models.SentViaWhatsApp
	invoice.SentAt = &sentAt
	invoice.SentVia = &via
	if invoice.Status == models.InvoiceDraft {
		invoice.Status = models.InvoiceSent
	}
	invoice.UpdatedBy = actor

	if err := s.invoices.Update(ctx, invoice); err != nil {
		log.Warn().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("sent but status update failed")
	}
	return nil
}

// documentBytes fetches the stored PDF, rendering it on demand when the
// object is missing.
func (s *invoiceService) documentBytes(ctx context.Context, invoice *models.Invoice) ([]byte, error) {
	pdf, err := s.store.Read(ctx, invoice.InvoiceNumber)
	if err == nil {
		return pdf, nil
	}
	if !common.IsNotFound(err) {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, invoice.TenantID, invoice.CustomerID)
	if err != nil {
		return nil, err
	}
	pdf, err = s.renderer.Render(invoice, customer)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Save(ctx, invoice.InvoiceNumber, pdf); err != nil {
		log.Warn().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("on-demand pdf store failed")
	}
	return pdf, nil
}

func (s *invoiceService) renderAndStore(ctx context.Context, invoice *models.Invoice, customer *models.Customer) error {
	pdf, err := s.renderer.Render(invoice, customer)
	if err != nil {
		return err
	}

	path, err := s.store.Save(ctx, invoice.InvoiceNumber, pdf)
	if err != nil {
		return err
	}

	invoice.PDFURL = &path
	if err := s.invoices.Update(ctx, invoice); err != nil {
		log.Warn().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("pdf url update failed")
	}
	return nil
}

// BulkSend creates one plain subscription invoice per target customer and
// delivers it. Items are isolated: one failure never aborts the batch.
func (s *invoiceService) BulkSend(ctx context.Context, tenantID uuid.UUID, input BulkSendInput, actor string) (*BulkSendResult, error) {
	if !input.Amount.IsPositive() {
		return nil, common.ValidationErrorf("amount must be a positive number")
	}
	if input.DueDate.IsZero() {
		return nil, common.ValidationErrorf("due_date is required")
	}

	result := &BulkSendResult{}
	var targets []*models.Customer
	if len(input.CustomerIDs) == 0 {
		all, err := s.customers.ListActive(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		targets = all
	} else {
		for _, customerID := range input.CustomerIDs {
			customer, err := s.customers.GetByID(ctx, tenantID, customerID)
			if err != nil {
				result.Failed++
				result.Items = append(result.Items, BulkSendItem{CustomerID: customerID, Error: err.Error()})
				continue
			}
			targets = append(targets, customer)
		}
	}

	for _, customer := range targets {
		item := s.bulkSendOne(ctx, tenantID, customer, input, actor)
		if item.Sent {
			result.Succeeded++
		} else {
			result.Failed++
		}
		result.Items = append(result.Items, item)
	}
	result.Total = len(result.Items)

	s.invalidateDashboard(ctx, tenantID)
	log.Info().Int("total", result.Total).Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).Msg("bulk invoice send finished")
	return result, nil
}

func (s *invoiceService) bulkSendOne(ctx context.Context, tenantID uuid.UUID, customer *models.Customer, input BulkSendInput, actor string) BulkSendItem {
	item := BulkSendItem{CustomerID: customer.ID, CustomerName: customer.Name}

	now := s.now()
	periodStart := input.PeriodStart
	periodEnd := input.PeriodEnd
	if periodStart.IsZero() {
		periodStart = now
	}
	if periodEnd.IsZero() {
		periodEnd = periodStart.AddDate(0, 1, 0)
	}

	// Bulk invoices are subscription-only: no router, installation or
	// discount lines regardless of the customer's cost snapshot.
	invoice := &models.Invoice{
		ID:                   uuid.New(),
		TenantID:             tenantID,
		InvoiceNumber:        newInvoiceNumber(now),
		PaymentReceiptNumber: newReceiptNumber(),
		CustomerID:           customer.ID,
		CustomerName:         customer.Name,
		CustomerPhone:        customer.PhoneWhatsApp,
		Package:              customer.Package,
		PeriodStart:          periodStart,
		PeriodEnd:            periodEnd,
		Amount:               input.Amount,
		RouterCost:           decimal.Zero,
		InstallationCost:     decimal.Zero,
		OtherFees:            decimal.Zero,
		InstallationDiscount: decimal.Zero,
		Tax:                  input.Tax,
		DueDate:              input.DueDate,
		InvoiceDate:          now,
		Status:               models.InvoiceDraft,
		Notes:                input.Notes,
		CreatedBy:            actor,
		UpdatedBy:            actor,
	}
	invoice.RecalculateTotal()

	if err := s.invoices.Create(ctx, invoice); err != nil {
		item.Error = err.Error()
		return item
	}
	item.InvoiceNumber = invoice.InvoiceNumber

	if err := s.renderAndStore(ctx, invoice, customer); err != nil {
		item.Error = fmt.Sprintf("render failed: %v", err)
		return item
	}

	if err := s.deliver(ctx, invoice, actor); err != nil {
		item.Error = fmt.Sprintf("delivery failed: %v", err)
		return item
	}

	item.Sent = true
	return item
}

func (s *invoiceService) Download(ctx context.Context, tenantID, id uuid.UUID) ([]byte, string, error) {
	invoice, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.documentBytes(ctx, invoice)
	if err != nil {
		return nil, "", err
	}
	return pdf, invoice.InvoiceNumber + ".pdf", nil
}

func (s *invoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	invoice, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if err := s.invoices.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.invalidateDashboard(ctx, tenantID)

	if err := s.store.Delete(ctx, invoice.InvoiceNumber); err != nil {
		log.Warn().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("stored document cleanup failed")
	}
	return nil
}

// cascadeLastPayment mirrors the payment onto the customer record. A
// failure here never fails the payment itself.
func (s *invoiceService) cascadeLastPayment(ctx context.Context, invoice *models.Invoice, actor string) {
	paidAt := s.now()
	if invoice.PaymentReceivedDate != nil {
		paidAt = *invoice.PaymentReceivedDate
	}
	err := s.customers.UpdateLastPayment(ctx, invoice.TenantID, invoice.CustomerID, paidAt, invoice.TotalAmount, actor)
	if err != nil {
		log.Warn().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("customer last payment cascade failed")
		return
	}
	if err := s.cache.DeleteCustomer(ctx, invoice.TenantID, invoice.CustomerID); err != nil {
		log.Warn().Err(err).Msg("customer cache invalidation failed")
	}
}

const defaultCaption = "Halo {customer_name},\n\n" +
	"Tagihan WiFi Anda telah terbit.\n\n" +
	"No. Invoice: {invoice_number}\n" +
	"No. Bukti: {payment_receipt_number}\n" +
	"Paket: {package}\n" +
	"Periode: {period}\n" +
	"Total: {total_amount}\n" +
	"Jatuh tempo: {due_date}\n\n" +
	"Mohon lakukan pembayaran sebelum tanggal jatuh tempo. Terima kasih."

// composeCaption fills the tenant's default template, falling back to the
// built-in caption when none is configured.
func (s *invoiceService) composeCaption(ctx context.Context, invoice *models.Invoice) string {
	body := defaultCaption
	if template, err := s.templates.GetDefault(ctx, invoice.TenantID); err == nil {
		body = template.Body
	}

	return strings.NewReplacer(
		"{customer_name}", invoice.CustomerName,
		"{invoice_number}", invoice.InvoiceNumber,
		"{payment_receipt_number}", invoice.PaymentReceiptNumber,
		"{package}", invoice.Package,
		"{amount}", money.FormatRupiah(invoice.Amount),
		"{total_amount}", money.FormatRupiah(invoice.TotalAmount),
		"{due_date}", money.FormatLongDate(invoice.DueDate),
		"{period}", money.FormatShortDate(invoice.PeriodStart)+" - "+money.FormatShortDate(invoice.PeriodEnd),
	).Replace(body)
}

func (s *invoiceService) invalidateDashboard(ctx context.Context, tenantID uuid.UUID) {
	if err := s.cache.DeleteDashboardStats(ctx, tenantID); err != nil {
		log.Warn().Err(err).Msg("dashboard cache invalidation failed")
	}
}
