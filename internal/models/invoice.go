package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice statuses
const (
	InvoiceDraft     = "draft"
	InvoiceSent      = "sent"
	InvoiceViewed    = "viewed"
	InvoicePaid      = "paid"
	InvoiceOverdue   = "overdue"
	InvoiceCancelled = "cancelled"
)

// Payment methods
const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
	PaymentCheck    = "check"
	PaymentOther    = "other"
)

// Delivery channels
const (
	SentViaWhatsApp = "whatsapp"
	SentViaEmail    = "email"
	SentViaManual   = "manual"
)

// Invoice is a tenant-scoped bill linked to exactly one customer. Customer
// name/phone/package are denormalized at creation so historical invoices
// stay stable when the customer record changes later.
type Invoice struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	TenantID             uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	InvoiceNumber        string          `json:"invoice_number" db:"invoice_number"`
	PaymentReceiptNumber string          `json:"payment_receipt_number" db:"payment_receipt_number"`
	CustomerID           uuid.UUID       `json:"customer_id" db:"customer_id"`
	CustomerName         string          `json:"customer_name" db:"customer_name"`
	CustomerPhone        string          `json:"customer_phone" db:"customer_phone"`
	Package              string          `json:"package" db:"package"`
	PeriodStart          time.Time       `json:"period_start" db:"period_start"`
	PeriodEnd            time.Time       `json:"period_end" db:"period_end"`
	Amount               decimal.Decimal `json:"amount" db:"amount"`
	RouterCost           decimal.Decimal `json:"router_cost" db:"router_cost"`
	InstallationCost     decimal.Decimal `json:"installation_cost" db:"installation_cost"`
	OtherFees            decimal.Decimal `json:"other_fees" db:"other_fees"`
	InstallationDiscount decimal.Decimal `json:"installation_discount" db:"installation_discount"`
	Tax                  decimal.Decimal `json:"tax" db:"tax"`
	TotalAmount          decimal.Decimal `json:"total_amount" db:"total_amount"`
	DueDate              time.Time       `json:"due_date" db:"due_date"`
	InvoiceDate          time.Time       `json:"invoice_date" db:"invoice_date"`
	Status               string          `json:"status" db:"status"`
	PaymentReceivedDate  *time.Time      `json:"payment_received_date" db:"payment_received_date"`
	PaymentMethod        *string         `json:"payment_method" db:"payment_method"`
	ReceivedBy           *string         `json:"received_by" db:"received_by"`
	Notes                string          `json:"notes" db:"notes"`
	PDFURL               *string         `json:"pdf_url" db:"pdf_url"`
	SentAt               *time.Time      `json:"sent_at" db:"sent_at"`
	SentVia              *string         `json:"sent_via" db:"sent_via"`
	CreatedBy            string          `json:"created_by" db:"created_by"`
	UpdatedBy            string          `json:"updated_by" db:"updated_by"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// RecalculateTotal reapplies the total invariant from the constituent
// fields. Negative totals are kept as-is; discounts may exceed charges.
func (i *Invoice) RecalculateTotal() {
	i.TotalAmount = i.Amount.
		Add(i.RouterCost).
		Add(i.InstallationCost).
		Add(i.OtherFees).
		Sub(i.InstallationDiscount).
		Add(i.Tax)
}

// EffectiveStatus derives overdue at read time. Overdue is never stored:
// a non-paid, non-cancelled invoice past its due date reads as overdue.
func (i *Invoice) EffectiveStatus(now time.Time) string {
	switch i.Status {
	case InvoicePaid, InvoiceCancelled:
		return i.Status
	}
	if now.After(i.DueDate) {
		return InvoiceOverdue
	}
	return i.Status
}
