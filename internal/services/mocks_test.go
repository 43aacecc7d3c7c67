package services

import (
	"context"
	"time"

	"wifibilling/internal/models"
	"wifibilling/internal/repositories"
	"wifibilling/internal/whatsapp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockInvoiceRepo struct{ mock.Mock }

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockInvoiceRepo) List(ctx context.Context, tenantID uuid.UUID, filter repositories.InvoiceFilter) ([]*models.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) RevenueSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*repositories.RevenueSummary, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.RevenueSummary), args.Error(1)
}

type mockCustomerRepo struct{ mock.Mock }

func (m *mockCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockCustomerRepo) List(ctx context.Context, tenantID uuid.UUID, filter repositories.CustomerFilter) ([]*models.Customer, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *mockCustomerRepo) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Customer, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *mockCustomerRepo) UpdateLastPayment(ctx context.Context, tenantID, id uuid.UUID, paidAt time.Time, amount decimal.Decimal, updatedBy string) error {
	return m.Called(ctx, tenantID, id, paidAt, amount, updatedBy).Error(0)
}

func (m *mockCustomerRepo) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *mockCustomerRepo) Tenants(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type mockTemplateRepo struct{ mock.Mock }

func (m *mockTemplateRepo) Create(ctx context.Context, template *models.InvoiceTemplate) error {
	return m.Called(ctx, template).Error(0)
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceTemplate, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoiceTemplate), args.Error(1)
}

func (m *mockTemplateRepo) GetDefault(ctx context.Context, tenantID uuid.UUID) (*models.InvoiceTemplate, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoiceTemplate), args.Error(1)
}

func (m *mockTemplateRepo) Update(ctx context.Context, template *models.InvoiceTemplate) error {
	return m.Called(ctx, template).Error(0)
}

func (m *mockTemplateRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockTemplateRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*models.InvoiceTemplate, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InvoiceTemplate), args.Error(1)
}

func (m *mockTemplateRepo) UnsetDefaults(ctx context.Context, tenantID uuid.UUID, except uuid.UUID) error {
	return m.Called(ctx, tenantID, except).Error(0)
}

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) Render(invoice *models.Invoice, customer *models.Customer) ([]byte, error) {
	args := m.Called(invoice, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) Save(ctx context.Context, invoiceNumber string, pdf []byte) (string, error) {
	args := m.Called(ctx, invoiceNumber, pdf)
	return args.String(0), args.Error(1)
}

func (m *mockStore) Read(ctx context.Context, invoiceNumber string) ([]byte, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockStore) Exists(ctx context.Context, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, invoiceNumber string) error {
	return m.Called(ctx, invoiceNumber).Error(0)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendMessage(ctx context.Context, phone, message string) error {
	return m.Called(ctx, phone, message).Error(0)
}

func (m *mockSender) SendDocument(ctx context.Context, phone, caption, filename string, document []byte) error {
	return m.Called(ctx, phone, caption, filename, document).Error(0)
}

func (m *mockSender) Status(ctx context.Context) (whatsapp.GatewayStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(whatsapp.GatewayStatus), args.Error(1)
}

func (m *mockSender) PairingCode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockSender) Reconnect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockSender) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *mockCache) SetCustomer(ctx context.Context, tenantID uuid.UUID, customer *models.Customer, ttl time.Duration) error {
	return m.Called(ctx, tenantID, customer, ttl).Error(0)
}

func (m *mockCache) DeleteCustomer(ctx context.Context, tenantID, customerID uuid.UUID) error {
	return m.Called(ctx, tenantID, customerID).Error(0)
}

func (m *mockCache) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (map[string]interface{}, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *mockCache) SetDashboardStats(ctx context.Context, tenantID uuid.UUID, stats map[string]interface{}, ttl time.Duration) error {
	return m.Called(ctx, tenantID, stats, ttl).Error(0)
}

func (m *mockCache) DeleteDashboardStats(ctx context.Context, tenantID uuid.UUID) error {
	return m.Called(ctx, tenantID).Error(0)
}

func (m *mockCache) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	return m.Called(ctx, tenantID).Error(0)
}
