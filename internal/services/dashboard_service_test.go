package services

import (
	"context"
	"testing"
	"time"

	"wifibilling/internal/models"
	"wifibilling/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type dashboardServiceFixture struct {
	customers *mockCustomerRepo
	invoices  *mockInvoiceRepo
	cache     *mockCache
	service   DashboardService
	tenantID  uuid.UUID
}

func newDashboardServiceFixture(t *testing.T) *dashboardServiceFixture {
	t.Helper()
	f := &dashboardServiceFixture{
		customers: &mockCustomerRepo{},
		invoices:  &mockInvoiceRepo{},
		cache:     &mockCache{},
		tenantID:  uuid.New(),
	}
	svc := NewDashboardService(f.customers, f.invoices, f.cache).(*dashboardService)
	svc.now = func() time.Time {
		return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	}
	f.service = svc
	return f
}

func TestDashboardStats_ServesCachedStats(t *testing.T) {
	f := newDashboardServiceFixture(t)
	cached := map[string]interface{}{"total_customers": 7}
	f.cache.On("GetDashboardStats", mock.Anything, f.tenantID).Return(cached, nil)

	stats, err := f.service.Stats(context.Background(), f.tenantID)

	require.NoError(t, err)
	assert.Equal(t, cached, stats)
	f.customers.AssertNotCalled(t, "CountByStatus", mock.Anything, mock.Anything)
	f.invoices.AssertNotCalled(t, "RevenueSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardStats_ComputesAndCachesOnMiss(t *testing.T) {
	f := newDashboardServiceFixture(t)
	f.cache.On("GetDashboardStats", mock.Anything, f.tenantID).Return(nil, nil)
	f.customers.On("CountByStatus", mock.Anything, f.tenantID).Return(map[string]int{
		models.CustomerActive:    8,
		models.CustomerSuspended: 1,
		models.CustomerCancelled: 2,
	}, nil)

	monthStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)
	f.invoices.On("RevenueSummary", mock.Anything, f.tenantID, monthStart, monthEnd).Return(&repositories.RevenueSummary{
		PaidTotal:        decimal.NewFromInt(2400000),
		OutstandingTotal: decimal.NewFromInt(600000),
		PaidCount:        8,
		UnpaidCount:      2,
		OverdueCount:     1,
	}, nil)
	f.cache.On("SetDashboardStats", mock.Anything, f.tenantID, mock.Anything, dashboardCacheTTL).Return(nil)

	stats, err := f.service.Stats(context.Background(), f.tenantID)

	require.NoError(t, err)
	assert.Equal(t, 11, stats["total_customers"])
	assert.Equal(t, 8, stats["active_customers"])
	month := stats["month"].(map[string]interface{})
	assert.Equal(t, 1, month["overdue_invoices"])
	f.cache.AssertExpectations(t)
}

func TestDashboardRefresh_RecomputesWithoutReadingCache(t *testing.T) {
	f := newDashboardServiceFixture(t)
	f.customers.On("CountByStatus", mock.Anything, f.tenantID).Return(map[string]int{}, nil)
	f.invoices.On("RevenueSummary", mock.Anything, f.tenantID, mock.Anything, mock.Anything).Return(&repositories.RevenueSummary{}, nil)
	f.cache.On("SetDashboardStats", mock.Anything, f.tenantID, mock.Anything, dashboardCacheTTL).Return(nil)

	err := f.service.Refresh(context.Background(), f.tenantID)

	require.NoError(t, err)
	f.cache.AssertNotCalled(t, "GetDashboardStats", mock.Anything, mock.Anything)
	f.cache.AssertExpectations(t)
}
