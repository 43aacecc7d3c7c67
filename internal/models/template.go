package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceTemplate is tenant-scoped message content used when composing the
// delivery caption. The PDF layout is fixed and does not use templates.
// At most one template per tenant is the default.
type InvoiceTemplate struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	Subject   string    `json:"subject" db:"subject"`
	Body      string    `json:"body" db:"body"`
	Variables []string  `json:"variables" db:"variables"`
	IsDefault bool      `json:"is_default" db:"is_default"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
