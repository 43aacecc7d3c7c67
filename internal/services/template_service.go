package services

import (
	"context"

	"wifibilling/internal/common"
	"wifibilling/internal/models"
	"wifibilling/internal/repositories"

	"github.com/google/uuid"
)

// TemplateInput carries client-supplied template fields.
type TemplateInput struct {
	Name      string   `json:"name"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Variables []string `json:"variables"`
	IsDefault bool     `json:"is_default"`
	IsActive  *bool    `json:"is_active"`
}

type TemplateService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input TemplateInput) (*models.InvoiceTemplate, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceTemplate, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, input TemplateInput) (*models.InvoiceTemplate, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.InvoiceTemplate, error)
	SetDefault(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceTemplate, error)
}

type templateService struct {
	repo repositories.TemplateRepository
}

func NewTemplateService(repo repositories.TemplateRepository) TemplateService {
	return &templateService{repo: repo}
}

func (s *templateService) Create(ctx context.Context, tenantID uuid.UUID, input TemplateInput) (*models.InvoiceTemplate, error) {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(input.Body, "body"); err != nil {
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	template := &models.InvoiceTemplate{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      input.Name,
		Subject:   input.Subject,
		Body:      input.Body,
		Variables: input.Variables,
		IsDefault: input.IsDefault,
		IsActive:  active,
	}

	if err := s.repo.Create(ctx, template); err != nil {
		return nil, err
	}

	// A new default displaces any previous one.
	if template.IsDefault {
		if err := s.repo.UnsetDefaults(ctx, tenantID, template.ID); err != nil {
			return nil, err
		}
	}
	return template, nil
}

func (s *templateService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceTemplate, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *templateService) Update(ctx context.Context, tenantID, id uuid.UUID, input TemplateInput) (*models.InvoiceTemplate, error) {
	template, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		template.Name = input.Name
	}
	if input.Subject != "" {
		template.Subject = input.Subject
	}
	if input.Body != "" {
		template.Body = input.Body
	}
	if input.Variables != nil {
		template.Variables = input.Variables
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}
	template.IsDefault = input.IsDefault

	if err := s.repo.Update(ctx, template); err != nil {
		return nil, err
	}

	if template.IsDefault {
		if err := s.repo.UnsetDefaults(ctx, tenantID, template.ID); err != nil {
			return nil, err
		}
	}
	return template, nil
}

func (s *templateService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, id)
}

func (s *templateService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.InvoiceTemplate, error) {
	return s.repo.List(ctx, tenantID)
}

// SetDefault promotes the template and demotes all others of the tenant.
func (s *templateService) SetDefault(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceTemplate, error) {
	template, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	template.IsDefault = true
	if err := s.repo.Update(ctx, template); err != nil {
		return nil, err
	}
	if err := s.repo.UnsetDefaults(ctx, tenantID, template.ID); err != nil {
		return nil, err
	}
	return template, nil
}
