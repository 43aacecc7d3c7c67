package repositories

import (
	"context"

	"wifibilling/internal/common"
	"wifibilling/internal/models"

	"github.com/google/uuid"
)

type TemplateRepository interface {
	Create(ctx context.Context, template *models.InvoiceTemplate) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceTemplate, error)
	GetDefault(ctx context.Context, tenantID uuid.UUID) (*models.InvoiceTemplate, error)
	Update(ctx context.Context, template *models.InvoiceTemplate) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.InvoiceTemplate, error)
	UnsetDefaults(ctx context.Context, tenantID uuid.UUID, except uuid.UUID) error
}

type templateRepo struct {
	db Database
}

func NewTemplateRepo(db Database) TemplateRepository {
	return &templateRepo{db: db}
}

const templateColumns = `id, tenant_id, name, subject, body, variables, is_default, is_active, created_at, updated_at`

func (r *templateRepo) Create(ctx context.Context, template *models.InvoiceTemplate) error {
	query := `
		INSERT INTO invoice_templates (id, tenant_id, name, subject, body, variables, is_default, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		template.ID, template.TenantID, template.Name, template.Subject, template.Body,
		template.Variables, template.IsDefault, template.IsActive)
	return mapError(err, "template not found")
}

func (r *templateRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM invoice_templates WHERE tenant_id = $1 AND id = $2`
	template := &models.InvoiceTemplate{}
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(
		&template.ID, &template.TenantID, &template.Name, &template.Subject, &template.Body,
		&template.Variables, &template.IsDefault, &template.IsActive,
		&template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "template not found")
	}
	return template, nil
}

func (r *templateRepo) GetDefault(ctx context.Context, tenantID uuid.UUID) (*models.InvoiceTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM invoice_templates
		WHERE tenant_id = $1 AND is_default = true AND is_active = true
		LIMIT 1`
	template := &models.InvoiceTemplate{}
	err := r.db.QueryRow(ctx, query, tenantID).Scan(
		&template.ID, &template.TenantID, &template.Name, &template.Subject, &template.Body,
		&template.Variables, &template.IsDefault, &template.IsActive,
		&template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "no default template")
	}
	return template, nil
}

func (r *templateRepo) Update(ctx context.Context, template *models.InvoiceTemplate) error {
	query := `
		UPDATE invoice_templates
		SET name = $1, subject = $2, body = $3, variables = $4, is_default = $5, is_active = $6, updated_at = NOW()
		WHERE tenant_id = $7 AND id = $8
	`
	tag, err := r.db.Exec(ctx, query,
		template.Name, template.Subject, template.Body, template.Variables,
		template.IsDefault, template.IsActive, template.TenantID, template.ID)
	if err != nil {
		return mapError(err, "template not found")
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundErrorf("template not found")
	}
	return nil
}

func (r *templateRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invoice_templates WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundErrorf("template not found")
	}
	return nil
}

func (r *templateRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*models.InvoiceTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM invoice_templates WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.InvoiceTemplate
	for rows.Next() {
		template := &models.InvoiceTemplate{}
		if err := rows.Scan(
			&template.ID, &template.TenantID, &template.Name, &template.Subject, &template.Body,
			&template.Variables, &template.IsDefault, &template.IsActive,
			&template.CreatedAt, &template.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}

// UnsetDefaults clears the default flag on every template of the tenant
// except the given one. Keeps the at-most-one-default invariant.
func (r *templateRepo) UnsetDefaults(ctx context.Context, tenantID uuid.UUID, except uuid.UUID) error {
	query := `UPDATE invoice_templates SET is_default = false, updated_at = NOW()
		WHERE tenant_id = $1 AND id <> $2 AND is_default = true`
	_, err := r.db.Exec(ctx, query, tenantID, except)
	return err
}
