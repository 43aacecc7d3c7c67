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

// CustomerFilter narrows List results. Search matches name, customer_id,
// wifi_id and phone. Zero values mean no filtering.
type CustomerFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter CustomerFilter) ([]*models.Customer, error)
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Customer, error)
	UpdateLastPayment(ctx context.Context, tenantID, id uuid.UUID, paidAt time.Time, amount decimal.Decimal, updatedBy string) error
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int, error)
	Tenants(ctx context.Context) ([]uuid.UUID, error)
}

type customerRepo struct {
	db Database
}

func NewCustomerRepo(db Database) CustomerRepository {
	return &customerRepo{db: db}
}

const customerColumns = `id, tenant_id, customer_id, name, address, package, wifi_id,
	router_purchase_price, registration_fee, installation_discount, other_fees,
	subscription_start_date, next_due_date, last_payment_date, last_payment_amount,
	phone_whatsapp, status, notes, created_by, updated_by, created_at, updated_at`

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, tenant_id, customer_id, name, address, package, wifi_id,
			router_purchase_price, registration_fee, installation_discount, other_fees,
			subscription_start_date, next_due_date, last_payment_date, last_payment_amount,
			phone_whatsapp, status, notes, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		customer.ID, customer.TenantID, customer.CustomerID, customer.Name, customer.Address,
		customer.Package, customer.WifiID, customer.RouterPurchasePrice, customer.RegistrationFee,
		customer.InstallationDiscount, customer.OtherFees, customer.SubscriptionStartDate,
		customer.NextDueDate, customer.LastPaymentDate, customer.LastPaymentAmount,
		customer.PhoneWhatsApp, customer.Status, customer.Notes, customer.CreatedBy, customer.UpdatedBy)
	return mapError(err, "customer not found")
}

func (r *customerRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE tenant_id = $1 AND id = $2`, customerColumns)
	customer := &models.Customer{}
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(
		&customer.ID, &customer.TenantID, &customer.CustomerID, &customer.Name, &customer.Address,
		&customer.Package, &customer.WifiID, &customer.RouterPurchasePrice, &customer.RegistrationFee,
		&customer.InstallationDiscount, &customer.OtherFees, &customer.SubscriptionStartDate,
		&customer.NextDueDate, &customer.LastPaymentDate, &customer.LastPaymentAmount,
		&customer.PhoneWhatsApp, &customer.Status, &customer.Notes, &customer.CreatedBy,
		&customer.UpdatedBy, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "customer not found")
	}
	return customer, nil
}

func (r *customerRepo) Update(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, address = $2, package = $3, wifi_id = $4,
			router_purchase_price = $5, registration_fee = $6, installation_discount = $7,
			other_fees = $8, subscription_start_date = $9, next_due_date = $10,
			phone_whatsapp = $11, status = $12, notes = $13, updated_by = $14, updated_at = NOW()
		WHERE tenant_id = $15 AND id = $16
	`
	tag, err := r.db.Exec(ctx, query,
		customer.Name, customer.Address, customer.Package, customer.WifiID,
		customer.RouterPurchasePrice, customer.RegistrationFee, customer.InstallationDiscount,
		customer.OtherFees, customer.SubscriptionStartDate, customer.NextDueDate,
		customer.PhoneWhatsApp, customer.Status, customer.Notes, customer.UpdatedBy,
		customer.TenantID, customer.ID)
	if err != nil {
		return mapError(err, "customer not found")
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundErrorf("customer not found")
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundErrorf("customer not found")
	}
	return nil
}

func (r *customerRepo) List(ctx context.Context, tenantID uuid.UUID, filter CustomerFilter) ([]*models.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE tenant_id = $1`, customerColumns)
	args := []interface{}{tenantID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (name ILIKE $%d OR customer_id ILIKE $%d OR wifi_id ILIKE $%d OR phone_whatsapp ILIKE $%d)", n, n, n, n)
	}

	query += " ORDER BY created_at DESC"
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

	var customers []*models.Customer
	for rows.Next() {
		customer := &models.Customer{}
		if err := rows.Scan(
			&customer.ID, &customer.TenantID, &customer.CustomerID, &customer.Name, &customer.Address,
			&customer.Package, &customer.WifiID, &customer.RouterPurchasePrice, &customer.RegistrationFee,
			&customer.InstallationDiscount, &customer.OtherFees, &customer.SubscriptionStartDate,
			&customer.NextDueDate, &customer.LastPaymentDate, &customer.LastPaymentAmount,
			&customer.PhoneWhatsApp, &customer.Status, &customer.Notes, &customer.CreatedBy,
			&customer.UpdatedBy, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

func (r *customerRepo) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Customer, error) {
	return r.List(ctx, tenantID, CustomerFilter{Status: models.CustomerActive})
}

// UpdateLastPayment records the most recent payment on the customer row.
// Used as a best-effort cascade after an invoice is marked paid.
func (r *customerRepo) UpdateLastPayment(ctx context.Context, tenantID, id uuid.UUID, paidAt time.Time, amount decimal.Decimal, updatedBy string) error {
	query := `
		UPDATE customers
		SET last_payment_date = $1, last_payment_amount = $2, updated_by = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, paidAt, amount, updatedBy, tenantID, id)
	return err
}

func (r *customerRepo) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM customers WHERE tenant_id = $1 GROUP BY status`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// Tenants lists every tenant that has at least one customer. Used by the
// background stats refresh to know which dashboards to warm.
func (r *customerRepo) Tenants(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT tenant_id FROM customers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tenants = append(tenants, id)
	}
	return tenants, rows.Err()
}
