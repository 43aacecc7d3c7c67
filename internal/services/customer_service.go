package services

import (
	"context"
	"time"

	"wifibilling/internal/caching"
	"wifibilling/internal/common"
	"wifibilling/internal/models"
	"wifibilling/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const customerCacheTTL = 10 * time.Minute

// CustomerInput carries client-supplied customer fields. Monetary fields
// default to zero when omitted.
type CustomerInput struct {
	Name                  string          `json:"name"`
	Address               string          `json:"address"`
	Package               string          `json:"package"`
	WifiID                string          `json:"wifi_id"`
	RouterPurchasePrice   decimal.Decimal `json:"router_purchase_price"`
	RegistrationFee       decimal.Decimal `json:"registration_fee"`
	InstallationDiscount  decimal.Decimal `json:"installation_discount"`
	OtherFees             decimal.Decimal `json:"other_fees"`
	SubscriptionStartDate time.Time       `json:"subscription_start_date"`
	NextDueDate           time.Time       `json:"next_due_date"`
	PhoneWhatsApp         string          `json:"phone_whatsapp"`
	Status                string          `json:"status"`
	Notes                 string          `json:"notes"`
}

type CustomerService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CustomerInput, actor string) (*models.Customer, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, input CustomerInput, actor string) (*models.Customer, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter repositories.CustomerFilter) ([]*models.Customer, error)
}

type customerService struct {
	repo  repositories.CustomerRepository
	cache caching.CacheService
}

func NewCustomerService(repo repositories.CustomerRepository, cache caching.CacheService) CustomerService {
	return &customerService{repo: repo, cache: cache}
}

func (s *customerService) validate(input *CustomerInput) error {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(input.Package, "package"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(input.WifiID, "wifi_id"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(input.PhoneWhatsApp, "phone_whatsapp"); err != nil {
		return err
	}
	if input.SubscriptionStartDate.IsZero() {
		return common.ValidationErrorf("subscription_start_date is required")
	}

	input.PhoneWhatsApp = common.NormalizePhone(input.PhoneWhatsApp)
	if input.PhoneWhatsApp == "" {
		return common.ValidationErrorf("phone_whatsapp must contain digits")
	}

	switch input.Status {
	case "":
		input.Status = models.CustomerActive
	case models.CustomerActive, models.CustomerSuspended, models.CustomerCancelled:
	default:
		return common.ValidationErrorf("invalid status %q", input.Status)
	}
	return nil
}

func (s *customerService) Create(ctx context.Context, tenantID uuid.UUID, input CustomerInput, actor string) (*models.Customer, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	nextDue := input.NextDueDate
	if nextDue.IsZero() {
		nextDue = input.SubscriptionStartDate.AddDate(0, 1, 0)
	}

	customer := &models.Customer{
		ID:                    uuid.New(),
		TenantID:              tenantID,
		CustomerID:            random.String(10, random.Numeric),
		Name:                  input.Name,
		Address:               input.Address,
		Package:               input.Package,
		WifiID:                input.WifiID,
		RouterPurchasePrice:   input.RouterPurchasePrice,
		RegistrationFee:       input.RegistrationFee,
		InstallationDiscount:  input.InstallationDiscount,
		OtherFees:             input.OtherFees,
		SubscriptionStartDate: input.SubscriptionStartDate,
		NextDueDate:           nextDue,
		LastPaymentAmount:     decimal.Zero,
		PhoneWhatsApp:         input.PhoneWhatsApp,
		Status:                input.Status,
		Notes:                 input.Notes,
		CreatedBy:             actor,
		UpdatedBy:             actor,
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID, customer.ID)
	log.Info().Str("customer_id", customer.CustomerID).Str("wifi_id", customer.WifiID).Msg("customer created")
	return customer, nil
}

func (s *customerService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	if cached, err := s.cache.GetCustomer(ctx, tenantID, id); err == nil && cached != nil {
		return cached, nil
	}

	customer, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetCustomer(ctx, tenantID, customer, customerCacheTTL); err != nil {
		log.Warn().Err(err).Msg("customer cache write failed")
	}
	return customer, nil
}

func (s *customerService) Update(ctx context.Context, tenantID, id uuid.UUID, input CustomerInput, actor string) (*models.Customer, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	customer, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	customer.Name = input.Name
	customer.Address = input.Address
	customer.Package = input.Package
	customer.WifiID = input.WifiID
	customer.RouterPurchasePrice = input.RouterPurchasePrice
	customer.RegistrationFee = input.RegistrationFee
	customer.InstallationDiscount = input.InstallationDiscount
	customer.OtherFees = input.OtherFees
	customer.SubscriptionStartDate = input.SubscriptionStartDate
	if !input.NextDueDate.IsZero() {
		customer.NextDueDate = input.NextDueDate
	}
	customer.PhoneWhatsApp = input.PhoneWhatsApp
	customer.Status = input.Status
	customer.Notes = input.Notes
	customer.UpdatedBy = actor

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID, id)
	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID, id)
	return nil
}

func (s *customerService) List(ctx context.Context, tenantID uuid.UUID, filter repositories.CustomerFilter) ([]*models.Customer, error) {
	return s.repo.List(ctx, tenantID, filter)
}

func (s *customerService) invalidate(ctx context.Context, tenantID, id uuid.UUID) {
	if err := s.cache.DeleteCustomer(ctx, tenantID, id); err != nil {
		log.Warn().Err(err).Msg("customer cache invalidation failed")
	}
	if err := s.cache.DeleteDashboardStats(ctx, tenantID); err != nil {
		log.Warn().Err(err).Msg("dashboard cache invalidation failed")
	}
}
