package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer statuses
const (
	CustomerActive    = "active"
	CustomerSuspended = "suspended"
	CustomerCancelled = "cancelled"
)

// Customer is a tenant-scoped subscriber record. CustomerID is the
// human-facing generated identifier; WifiID is unique within the tenant.
type Customer struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	TenantID              uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	CustomerID            string          `json:"customer_id" db:"customer_id"`
	Name                  string          `json:"name" db:"name"`
	Address               string          `json:"address" db:"address"`
	Package               string          `json:"package" db:"package"`
	WifiID                string          `json:"wifi_id" db:"wifi_id"`
	RouterPurchasePrice   decimal.Decimal `json:"router_purchase_price" db:"router_purchase_price"`
	RegistrationFee       decimal.Decimal `json:"registration_fee" db:"registration_fee"`
	InstallationDiscount  decimal.Decimal `json:"installation_discount" db:"installation_discount"`
	OtherFees             decimal.Decimal `json:"other_fees" db:"other_fees"`
	SubscriptionStartDate time.Time       `json:"subscription_start_date" db:"subscription_start_date"`
	NextDueDate           time.Time       `json:"next_due_date" db:"next_due_date"`
	LastPaymentDate       *time.Time      `json:"last_payment_date" db:"last_payment_date"`
	LastPaymentAmount     decimal.Decimal `json:"last_payment_amount" db:"last_payment_amount"`
	PhoneWhatsApp         string          `json:"phone_whatsapp" db:"phone_whatsapp"`
	Status                string          `json:"status" db:"status"`
	Notes                 string          `json:"notes" db:"notes"`
	CreatedBy             string          `json:"created_by" db:"created_by"`
	UpdatedBy             string          `json:"updated_by" db:"updated_by"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}
