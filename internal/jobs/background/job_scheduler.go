// Package background runs recurring maintenance jobs.
package background

import (
	"context"
	"time"

	"wifibilling/internal/repositories"
	"wifibilling/internal/services"
	"wifibilling/internal/whatsapp"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// Scheduler owns the recurring jobs: a watchdog that polls the WhatsApp
// gateway so unsolicited drops are noticed and reconnected even when no
// operator is looking at the status page, and a dashboard warmer that
// recomputes per-tenant stats before the cache goes cold.
type Scheduler struct {
	scheduler gocron.Scheduler
	manager   *whatsapp.Manager
	dashboard services.DashboardService
	customers repositories.CustomerRepository
}

func NewScheduler(manager *whatsapp.Manager, dashboard services.DashboardService, customers repositories.CustomerRepository) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		scheduler: scheduler,
		manager:   manager,
		dashboard: dashboard,
		customers: customers,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(30*time.Second),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			status := s.manager.Refresh(ctx)
			log.Debug().Str("state", status.State).Msg("gateway watchdog poll")
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("whatsapp-gateway-watchdog"),
	)
	if err != nil {
		return err
	}

	_, err = s.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(s.refreshDashboards),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("dashboard-stats-refresh"),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	log.Info().Msg("background scheduler started")
	return nil
}

func (s *Scheduler) refreshDashboards() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tenants, err := s.customers.Tenants(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("dashboard refresh: tenant listing failed")
		return
	}
	for _, tenantID := range tenants {
		if err := s.dashboard.Refresh(ctx, tenantID); err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("dashboard refresh failed")
		}
	}
}

func (s *Scheduler) Shutdown() error {
	s.manager.Stop()
	return s.scheduler.Shutdown()
}
