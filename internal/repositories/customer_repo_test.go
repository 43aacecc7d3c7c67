package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"wifibilling/internal/common"
	"wifibilling/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type CustomerRepoTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	repo       CustomerRepository
	tenantID   uuid.UUID
	customerID uuid.UUID
	context    context.Context
}

func (suite *CustomerRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewCustomerRepo(mock)
	suite.tenantID = uuid.New()
	suite.customerID = uuid.New()
	suite.context = context.Background()
}

func (suite *CustomerRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestCustomerRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CustomerRepoTestSuite))
}

func (suite *CustomerRepoTestSuite) sampleCustomer() *models.Customer {
	return &models.Customer{
		ID:                    suite.customerID,
		TenantID:              suite.tenantID,
		CustomerID:            "1234567890",
		Name:                  "Budi Santoso",
		Address:               "Jl. Merdeka No. 1",
		Package:               "Home 20 Mbps",
		WifiID:                "WIFI-001",
		RouterPurchasePrice:   decimal.NewFromInt(500000),
		RegistrationFee:       decimal.NewFromInt(200000),
		InstallationDiscount:  decimal.NewFromInt(100000),
		OtherFees:             decimal.Zero,
		SubscriptionStartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		NextDueDate:           time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		LastPaymentAmount:     decimal.Zero,
		PhoneWhatsApp:         "628123456789",
		Status:                models.CustomerActive,
		CreatedBy:             "admin@example.com",
		UpdatedBy:             "admin@example.com",
	}
}

func (suite *CustomerRepoTestSuite) TestCreate_Success() {
	customer := suite.sampleCustomer()

	suite.mock.ExpectExec(`INSERT INTO customers`).
		WithArgs(customer.ID, customer.TenantID, customer.CustomerID, customer.Name, customer.Address,
			customer.Package, customer.WifiID, customer.RouterPurchasePrice, customer.RegistrationFee,
			customer.InstallationDiscount, customer.OtherFees, customer.SubscriptionStartDate,
			customer.NextDueDate, customer.LastPaymentDate, customer.LastPaymentAmount,
			customer.PhoneWhatsApp, customer.Status, customer.Notes, customer.CreatedBy, customer.UpdatedBy).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, customer)
	assert.NoError(suite.T(), err)
}

func (suite *CustomerRepoTestSuite) TestCreate_DuplicateWifiIDReturnsConflict() {
	customer := suite.sampleCustomer()

	suite.mock.ExpectExec(`INSERT INTO customers`).
		WithArgs(customer.ID, customer.TenantID, customer.CustomerID, customer.Name, customer.Address,
			customer.Package, customer.WifiID, customer.RouterPurchasePrice, customer.RegistrationFee,
			customer.InstallationDiscount, customer.OtherFees, customer.SubscriptionStartDate,
			customer.NextDueDate, customer.LastPaymentDate, customer.LastPaymentAmount,
			customer.PhoneWhatsApp, customer.Status, customer.Notes, customer.CreatedBy, customer.UpdatedBy).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "customers_tenant_id_wifi_id_key"})

	err := suite.repo.Create(suite.context, customer)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), errors.Is(err, common.ErrConflict))
}

func (suite *CustomerRepoTestSuite) customerRows(customer *models.Customer) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "tenant_id", "customer_id", "name", "address", "package", "wifi_id",
		"router_purchase_price", "registration_fee", "installation_discount", "other_fees",
		"subscription_start_date", "next_due_date", "last_payment_date", "last_payment_amount",
		"phone_whatsapp", "status", "notes", "created_by", "updated_by", "created_at", "updated_at",
	}).AddRow(
		customer.ID, customer.TenantID, customer.CustomerID, customer.Name, customer.Address,
		customer.Package, customer.WifiID, customer.RouterPurchasePrice, customer.RegistrationFee,
		customer.InstallationDiscount, customer.OtherFees, customer.SubscriptionStartDate,
		customer.NextDueDate, customer.LastPaymentDate, customer.LastPaymentAmount,
		customer.PhoneWhatsApp, customer.Status, customer.Notes, customer.CreatedBy,
		customer.UpdatedBy, time.Now(), time.Now())
}

func (suite *CustomerRepoTestSuite) TestGetByID_Success() {
	customer := suite.sampleCustomer()

	suite.mock.ExpectQuery(`SELECT .+ FROM customers WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID, suite.customerID).
		WillReturnRows(suite.customerRows(customer))

	result, err := suite.repo.GetByID(suite.context, suite.tenantID, suite.customerID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), customer.WifiID, result.WifiID)
	assert.True(suite.T(), result.RouterPurchasePrice.Equal(decimal.NewFromInt(500000)))
}

func (suite *CustomerRepoTestSuite) TestGetByID_WrongTenantIsNotFound() {
	otherTenant := uuid.New()

	suite.mock.ExpectQuery(`SELECT .+ FROM customers WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(otherTenant, suite.customerID).
		WillReturnError(pgx.ErrNoRows)

	result, err := suite.repo.GetByID(suite.context, otherTenant, suite.customerID)
	assert.Nil(suite.T(), result)
	assert.True(suite.T(), errors.Is(err, common.ErrNotFound))
}

func (suite *CustomerRepoTestSuite) TestUpdate_MissingRowIsNotFound() {
	customer := suite.sampleCustomer()

	suite.mock.ExpectExec(`UPDATE customers`).
		WithArgs(customer.Name, customer.Address, customer.Package, customer.WifiID,
			customer.RouterPurchasePrice, customer.RegistrationFee, customer.InstallationDiscount,
			customer.OtherFees, customer.SubscriptionStartDate, customer.NextDueDate,
			customer.PhoneWhatsApp, customer.Status, customer.Notes, customer.UpdatedBy,
			customer.TenantID, customer.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.Update(suite.context, customer)
	assert.True(suite.T(), errors.Is(err, common.ErrNotFound))
}

func (suite *CustomerRepoTestSuite) TestDelete_Success() {
	suite.mock.ExpectExec(`DELETE FROM customers WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID, suite.customerID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, suite.tenantID, suite.customerID)
	assert.NoError(suite.T(), err)
}

func (suite *CustomerRepoTestSuite) TestList_StatusFilter() {
	customer := suite.sampleCustomer()

	suite.mock.ExpectQuery(`SELECT .+ FROM customers WHERE tenant_id = \$1 AND status = \$2`).
		WithArgs(suite.tenantID, models.CustomerActive).
		WillReturnRows(suite.customerRows(customer))

	result, err := suite.repo.List(suite.context, suite.tenantID, CustomerFilter{Status: models.CustomerActive})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 1)
	assert.Equal(suite.T(), models.CustomerActive, result[0].Status)
}

func (suite *CustomerRepoTestSuite) TestUpdateLastPayment() {
	paidAt := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(300000)

	suite.mock.ExpectExec(`UPDATE customers`).
		WithArgs(paidAt, amount, "admin@example.com", suite.tenantID, suite.customerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateLastPayment(suite.context, suite.tenantID, suite.customerID, paidAt, amount, "admin@example.com")
	assert.NoError(suite.T(), err)
}

func (suite *CustomerRepoTestSuite) TestCountByStatus() {
	rows := pgxmock.NewRows([]string{"status", "count"}).
		AddRow(models.CustomerActive, 12).
		AddRow(models.CustomerSuspended, 3)

	suite.mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM customers WHERE tenant_id = \$1 GROUP BY status`).
		WithArgs(suite.tenantID).
		WillReturnRows(rows)

	counts, err := suite.repo.CountByStatus(suite.context, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 12, counts[models.CustomerActive])
	assert.Equal(suite.T(), 3, counts[models.CustomerSuspended])
}
