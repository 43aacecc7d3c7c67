package services

import (
	"context"
	"time"

	"wifibilling/internal/caching"
	"wifibilling/internal/models"
	"wifibilling/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const dashboardCacheTTL = 5 * time.Minute

type DashboardService interface {
	Stats(ctx context.Context, tenantID uuid.UUID) (map[string]interface{}, error)
	Refresh(ctx context.Context, tenantID uuid.UUID) error
}

type dashboardService struct {
	customers repositories.CustomerRepository
	invoices  repositories.InvoiceRepository
	cache     caching.CacheService
	now       func() time.Time
}

func NewDashboardService(customers repositories.CustomerRepository, invoices repositories.InvoiceRepository, cache caching.CacheService) DashboardService {
	return &dashboardService{customers: customers, invoices: invoices, cache: cache, now: time.Now}
}

// Stats aggregates the tenant overview: customer counts by status plus
// current-month revenue. Served from cache when warm.
func (s *dashboardService) Stats(ctx context.Context, tenantID uuid.UUID) (map[string]interface{}, error) {
	if cached, err := s.cache.GetDashboardStats(ctx, tenantID); err == nil && cached != nil {
		return cached, nil
	}
	return s.compute(ctx, tenantID)
}

// Refresh recomputes the stats and rewrites the cache, ignoring any
// cached value. Called by the background scheduler to keep dashboards warm.
func (s *dashboardService) Refresh(ctx context.Context, tenantID uuid.UUID) error {
	_, err := s.compute(ctx, tenantID)
	return err
}

func (s *dashboardService) compute(ctx context.Context, tenantID uuid.UUID) (map[string]interface{}, error) {
	counts, err := s.customers.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	revenue, err := s.invoices.RevenueSummary(ctx, tenantID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	totalCustomers := 0
	for _, n := range counts {
		totalCustomers += n
	}

	stats := map[string]interface{}{
		"total_customers":     totalCustomers,
		"active_customers":    counts[models.CustomerActive],
		"suspended_customers": counts[models.CustomerSuspended],
		"cancelled_customers": counts[models.CustomerCancelled],
		"month": map[string]interface{}{
			"paid_total":        revenue.PaidTotal,
			"outstanding_total": revenue.OutstandingTotal,
			"paid_invoices":     revenue.PaidCount,
			"unpaid_invoices":   revenue.UnpaidCount,
			"overdue_invoices":  revenue.OverdueCount,
		},
	}

	if err := s.cache.SetDashboardStats(ctx, tenantID, stats, dashboardCacheTTL); err != nil {
		log.Warn().Err(err).Msg("dashboard cache write failed")
	}
	return stats, nil
}
