package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/sse"
	"golang.org/x/sync/errgroup"
)

const (
	EventDashboard      = "dashboard"
	EventDashboardError = "dashboard_error"

	refreshConcurrency = 4
)

// DashboardRefresher computes a tenant's dashboard without a request.
type DashboardRefresher interface {
	RefreshDashboard(ctx context.Context, userID string) (attendance.DashboardResponse, error)
}

type DashboardJobs struct {
	refresher DashboardRefresher
	hub       *sse.Hub
}

func NewDashboardJobs(refresher DashboardRefresher, hub *sse.Hub) *DashboardJobs {
	return &DashboardJobs{
		refresher: refresher,
		hub:       hub,
	}
}

func (j *DashboardJobs) RegisterJobs(scheduler *Scheduler, interval, timeout time.Duration) {
	scheduler.AddJob(Job{
		Name:     "refresh_live_dashboards",
		Interval: interval,
		Timeout:  timeout,
		Fn:       j.RefreshLiveDashboards,
	})
}

// RefreshLiveDashboards recomputes the dashboard of every tenant with an
// open stream and publishes it. A failing tenant gets an error event and
// does not stop the others.
func (j *DashboardJobs) RefreshLiveDashboards(ctx context.Context) error {
	users := j.hub.Users()
	if len(users) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, userID := range users {
		g.Go(func() error {
			dashboard, err := j.refresher.RefreshDashboard(gctx, userID)
			if err != nil {
				slog.Warn("Cron: dashboard refresh failed", "user_id", userID, "error", err)
				j.hub.Publish(userID, sse.Event{
					Event: EventDashboardError,
					Data:  map[string]string{"message": err.Error()},
				})
				mu.Lock()
				errs = append(errs, fmt.Errorf("tenant %s: %w", userID, err))
				mu.Unlock()
				return nil
			}
			j.hub.Publish(userID, sse.Event{Event: EventDashboard, Data: dashboard})
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("Cron: live dashboards refreshed", "tenants", len(users), "failed", len(errs))
	return errors.Join(errs...)
}
