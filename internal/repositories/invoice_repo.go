package repositories

import (
	"context"
	"fmt"
	"time"

	"wifibilling/internal/common"
	"wifibilling/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceFilter narrows List results. Zero values mean no filtering.
type InvoiceFilter struct {
	Status     string
	CustomerID uuid.UUID
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// RevenueSummary aggregates paid and outstanding amounts for dashboards.
type RevenueSummary struct {
	PaidTotal        decimal.Decimal `json:"paid_total"`
	OutstandingTotal decimal.Decimal `json:"outstanding_total"`
	PaidCount        int             `json:"paid_count"`
	UnpaidCount      int             `json:"unpaid_count"`
	OverdueCount     int             `json:"overdue_count"`
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]*models.Invoice, error)
	RevenueSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*RevenueSummary, error)
}

type invoiceRepo struct {
	db Database
}

func NewInvoiceRepo(db Database) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceColumns = `id, tenant_id, invoice_number, payment_receipt_number, customer_id,
	customer_name, customer_phone, package, period_start, period_end,
	amount, router_cost, installation_cost, other_fees, installation_discount, tax, total_amount,
	due_date, invoice_date, status, payment_received_date, payment_method, received_by,
	notes, pdf_url, sent_at, sent_via, created_by, updated_by, created_at, updated_at`

func (r *invoiceRepo) scanInvoice(row interface{ Scan(...interface{}) error }) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	err := row.Scan(
		&invoice.ID, &invoice.TenantID, &invoice.InvoiceNumber, &invoice.PaymentReceiptNumber,
		&invoice.CustomerID, &invoice.CustomerName, &invoice.CustomerPhone, &invoice.Package,
		&invoice.PeriodStart, &invoice.PeriodEnd, &invoice.Amount, &invoice.RouterCost,
		&invoice.InstallationCost, &invoice.OtherFees, &invoice.InstallationDiscount,
		&invoice.Tax, &invoice.TotalAmount, &invoice.DueDate, &invoice.InvoiceDate,
		&invoice.Status, &invoice.PaymentReceivedDate, &invoice.PaymentMethod, &invoice.ReceivedBy,
		&invoice.Notes, &invoice.PDFURL, &invoice.SentAt, &invoice.SentVia,
		&invoice.CreatedBy, &invoice.UpdatedBy, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (id, tenant_id, invoice_number, payment_receipt_number, customer_id,
			customer_name, customer_phone, package, period_start, period_end,
			amount, router_cost, installation_cost, other_fees, installation_discount, tax, total_amount,
			due_date, invoice_date, status, payment_received_date, payment_method, received_by,
			notes, pdf_url, sent_at, sent_via, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		invoice.ID, invoice.TenantID, invoice.InvoiceNumber, invoice.PaymentReceiptNumber,
		invoice.CustomerID, invoice.CustomerName, invoice.CustomerPhone, invoice.Package,
		invoice.PeriodStart, invoice.PeriodEnd, invoice.Amount, invoice.RouterCost,
		invoice.InstallationCost, invoice.OtherFees, invoice.InstallationDiscount,
		invoice.Tax, invoice.TotalAmount, invoice.DueDate, invoice.InvoiceDate,
		invoice.Status, invoice.PaymentReceivedDate, invoice.PaymentMethod, invoice.ReceivedBy,
		invoice.Notes, invoice.PDFURL, invoice.SentAt, invoice.SentVia,
		invoice.CreatedBy, invoice.UpdatedBy)
	return mapError(err, "invoice not found")
}

func (r *invoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE tenant_id = $1 AND id = $2`, invoiceColumns)
	invoice, err := r.scanInvoice(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, mapError(err, "invoice not found")
	}
	return invoice, nil
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	query := `
		UPDATE invoices
		SET amount = $1, router_cost = $2, installation_cost = $3, other_fees = $4,
			installation_discount = $5, tax = $6, total_amount = $7,
			period_start = $8, period_end = $9, due_date = $10, status = $11,
			payment_received_date = $12, payment_method = $13, received_by = $14,
			notes = $15, pdf_url = $16, sent_at = $17, sent_via = $18,
			updated_by = $19, updated_at = NOW()
		WHERE tenant_id = $20 AND id = $21
	`
	tag, err := r.db.Exec(ctx, query,
		invoice.Amount, invoice.RouterCost, invoice.InstallationCost, invoice.OtherFees,
		invoice.InstallationDiscount, invoice.Tax, invoice.TotalAmount,
		invoice.PeriodStart, invoice.PeriodEnd, invoice.DueDate, invoice.Status,
		invoice.PaymentReceivedDate, invoice.PaymentMethod, invoice.ReceivedBy,
		invoice.Notes, invoice.PDFURL, invoice.SentAt, invoice.SentVia,
		invoice.UpdatedBy, invoice.TenantID, invoice.ID)
	if err != nil {
		return mapError(err, "invoice not found")
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundErrorf("invoice not found")
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundErrorf("invoice not found")
	}
	return nil
}

func (r *invoiceRepo) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]*models.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE tenant_id = $1`, invoiceColumns)
	args := []interface{}{tenantID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.CustomerID != uuid.Nil {
		args = append(args, filter.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND invoice_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND invoice_date <= $%d", len(args))
	}

	query += " ORDER BY invoice_date DESC, created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := r.scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

// RevenueSummary aggregates invoice amounts for the period. Overdue is
// derived from the due date, it is never a stored status.
func (r *invoiceRepo) RevenueSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*RevenueSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'paid'), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE status NOT IN ('paid', 'cancelled')), 0),
			COUNT(*) FILTER (WHERE status = 'paid'),
			COUNT(*) FILTER (WHERE status NOT IN ('paid', 'cancelled')),
			COUNT(*) FILTER (WHERE status NOT IN ('paid', 'cancelled') AND due_date < NOW())
		FROM invoices
		WHERE tenant_id = $1 AND invoice_date BETWEEN $2 AND $3
	`
	summary := &RevenueSummary{}
	err := r.db.QueryRow(ctx, query, tenantID, from, to).Scan(
		&summary.PaidTotal, &summary.OutstandingTotal,
		&summary.PaidCount, &summary.UnpaidCount, &summary.OverdueCount)
	if err != nil {
		return nil, err
	}
	return summary, nil
}
