package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"wifibilling/internal/common"
	"wifibilling/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCustomerServiceFixture() (*mockCustomerRepo, *mockCache, CustomerService, uuid.UUID) {
	repo := new(mockCustomerRepo)
	cache := new(mockCache)
	cache.On("DeleteCustomer", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	cache.On("DeleteDashboardStats", mock.Anything, mock.Anything).Return(nil).Maybe()
	return repo, cache, NewCustomerService(repo, cache), uuid.New()
}

func validCustomerInput() CustomerInput {
	return CustomerInput{
		Name:                  "Budi Santoso",
		Address:               "Jl. Merdeka No. 1",
		Package:               "Home 20 Mbps",
		WifiID:                "WIFI-001",
		PhoneWhatsApp:         "+62 812-3456-789",
		SubscriptionStartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCustomerCreate_NormalizesPhoneAndGeneratesID(t *testing.T) {
	repo, _, service, tenantID := newCustomerServiceFixture()

	var created *models.Customer
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Customer)
	}).Return(nil)

	customer, err := service.Create(context.Background(), tenantID, validCustomerInput(), "admin@example.com")

	assert.NoError(t, err)
	assert.Equal(t, "628123456789", customer.PhoneWhatsApp)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{10}$`), customer.CustomerID)
	assert.Equal(t, models.CustomerActive, customer.Status)
	assert.Equal(t, tenantID, created.TenantID)
	// next due defaults to one month after subscription start
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), customer.NextDueDate)
}

func TestCustomerCreate_DuplicateWifiIDSurfacesConflict(t *testing.T) {
	repo, _, service, tenantID := newCustomerServiceFixture()

	repo.On("Create", mock.Anything, mock.Anything).
		Return(common.ConflictErrorf("duplicate value violates constraint customers_tenant_id_wifi_id_key"))

	_, err := service.Create(context.Background(), tenantID, validCustomerInput(), "admin@example.com")
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestCustomerCreate_MissingFieldsRejected(t *testing.T) {
	_, _, service, tenantID := newCustomerServiceFixture()

	for _, mutate := range []func(*CustomerInput){
		func(i *CustomerInput) { i.Name = "" },
		func(i *CustomerInput) { i.Package = "" },
		func(i *CustomerInput) { i.WifiID = "" },
		func(i *CustomerInput) { i.PhoneWhatsApp = "" },
		func(i *CustomerInput) { i.SubscriptionStartDate = time.Time{} },
	} {
		input := validCustomerInput()
		mutate(&input)
		_, err := service.Create(context.Background(), tenantID, input, "admin@example.com")
		assert.ErrorIs(t, err, common.ErrValidation)
	}
}

func TestCustomerCreate_RejectsInvalidStatus(t *testing.T) {
	_, _, service, tenantID := newCustomerServiceFixture()

	input := validCustomerInput()
	input.Status = "paused"

	_, err := service.Create(context.Background(), tenantID, input, "admin@example.com")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCustomerGet_ServesFromCache(t *testing.T) {
	repo := new(mockCustomerRepo)
	cache := new(mockCache)
	service := NewCustomerService(repo, cache)
	tenantID := uuid.New()
	customerID := uuid.New()

	cached := &models.Customer{ID: customerID, TenantID: tenantID, Name: "Cached"}
	cache.On("GetCustomer", mock.Anything, tenantID, customerID).Return(cached, nil)

	customer, err := service.Get(context.Background(), tenantID, customerID)
	assert.NoError(t, err)
	assert.Equal(t, "Cached", customer.Name)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerGet_FillsCacheOnMiss(t *testing.T) {
	repo := new(mockCustomerRepo)
	cache := new(mockCache)
	service := NewCustomerService(repo, cache)
	tenantID := uuid.New()
	customerID := uuid.New()

	stored := &models.Customer{ID: customerID, TenantID: tenantID, Name: "Stored",
		LastPaymentAmount: decimal.Zero}
	cache.On("GetCustomer", mock.Anything, tenantID, customerID).Return(nil, nil)
	repo.On("GetByID", mock.Anything, tenantID, customerID).Return(stored, nil)
	cache.On("SetCustomer", mock.Anything, tenantID, stored, customerCacheTTL).Return(nil)

	customer, err := service.Get(context.Background(), tenantID, customerID)
	assert.NoError(t, err)
	assert.Equal(t, "Stored", customer.Name)
	cache.AssertCalled(t, "SetCustomer", mock.Anything, tenantID, stored, customerCacheTTL)
}

func TestCustomerUpdate_InvalidatesCache(t *testing.T) {
	repo := new(mockCustomerRepo)
	cache := new(mockCache)
	service := NewCustomerService(repo, cache)
	tenantID := uuid.New()
	customerID := uuid.New()

	stored := &models.Customer{ID: customerID, TenantID: tenantID, Name: "Old"}
	repo.On("GetByID", mock.Anything, tenantID, customerID).Return(stored, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	cache.On("DeleteCustomer", mock.Anything, tenantID, customerID).Return(nil)
	cache.On("DeleteDashboardStats", mock.Anything, tenantID).Return(nil)

	input := validCustomerInput()
	updated, err := service.Update(context.Background(), tenantID, customerID, input, "admin@example.com")

	assert.NoError(t, err)
	assert.Equal(t, input.Name, updated.Name)
	cache.AssertCalled(t, "DeleteCustomer", mock.Anything, tenantID, customerID)
}
