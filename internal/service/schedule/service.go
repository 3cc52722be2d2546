package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vontade-empenho/ponto-backend/internal/domain/schedule"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/database"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/jwt"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

type scheduleServiceImpl struct {
	tx             database.Transactor
	scheduleRepo   schedule.ScheduleRepository
	assignmentRepo schedule.AssignmentRepository
}

func NewScheduleService(
	tx database.Transactor,
	scheduleRepo schedule.ScheduleRepository,
	assignmentRepo schedule.AssignmentRepository,
) schedule.ScheduleService {
	return &scheduleServiceImpl{
		tx:             tx,
		scheduleRepo:   scheduleRepo,
		assignmentRepo: assignmentRepo,
	}
}

// Registry implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Registry(ctx context.Context, userID string) (*schedule.Registry, error) {
	registry, _, err := s.loadRegistry(ctx, userID)
	return registry, err
}

// loadRegistry reads the tenant's schedules and assignments. Tenants that
// never configured schedules get the built-in registry.
func (s *scheduleServiceImpl) loadRegistry(ctx context.Context, userID string) (*schedule.Registry, bool, error) {
	var (
		schedules   []schedule.Schedule
		defaultID   string
		assignments map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		schedules, defaultID, err = s.scheduleRepo.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		assignments, err = s.assignmentRepo.ListByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, false, fmt.Errorf("failed to load schedules: %w", err)
	}

	if len(schedules) == 0 {
		return schedule.DefaultRegistry(), true, nil
	}
	if defaultID == "" {
		return nil, false, fmt.Errorf("%w: no default schedule configured", schedule.ErrInvalidRegistry)
	}

	registry, err := schedule.NewRegistry(schedules, assignments, defaultID)
	if err != nil {
		return nil, false, err
	}
	return registry, false, nil
}

// List implements schedule.ScheduleService.
func (s *scheduleServiceImpl) List(ctx context.Context) (schedule.RegistryResponse, error) {
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return schedule.RegistryResponse{}, err
	}

	registry, builtIn, err := s.loadRegistry(ctx, userID)
	if err != nil {
		return schedule.RegistryResponse{}, err
	}

	return schedule.RegistryResponse{
		DefaultScheduleID: registry.DefaultID(),
		Schedules:         registry.Schedules(),
		Assignments:       registry.Assignments(),
		BuiltIn:           builtIn,
	}, nil
}

// Upsert implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Upsert(ctx context.Context, req schedule.UpsertScheduleRequest) (schedule.Schedule, error) {
	if err := req.Validate(); err != nil {
		return schedule.Schedule{}, err
	}

	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return schedule.Schedule{}, err
	}

	sched := req.ToSchedule()
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.materializeBuiltIn(txCtx, userID); err != nil {
			return err
		}
		return s.scheduleRepo.Upsert(txCtx, userID, sched, req.IsDefault)
	})
	if err != nil {
		return schedule.Schedule{}, fmt.Errorf("failed to save schedule: %w", err)
	}

	return sched, nil
}

// Delete implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Delete(ctx context.Context, scheduleID string) error {
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return err
	}

	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		n, err := s.scheduleRepo.CountAssignments(txCtx, userID, scheduleID)
		if err != nil {
			return err
		}
		if n > 0 {
			return schedule.ErrScheduleInUse
		}
		return s.scheduleRepo.Delete(txCtx, userID, scheduleID)
	})
}

// Assign implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Assign(ctx context.Context, req schedule.AssignScheduleRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return err
	}

	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.materializeBuiltIn(txCtx, userID); err != nil {
			return err
		}
		return s.assignmentRepo.Assign(txCtx, userID, schedule.Assignment{
			EmployeeID: req.EmployeeID,
			ScheduleID: req.ScheduleID,
		})
	})
}

// Unassign implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Unassign(ctx context.Context, employeeID string) error {
	if strings.TrimSpace(employeeID) == "" {
		return validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}

	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return err
	}

	if err := s.assignmentRepo.Unassign(ctx, userID, employeeID); err != nil {
		if errors.Is(err, schedule.ErrAssignmentNotFound) {
			return err
		}
		return fmt.Errorf("failed to unassign schedule: %w", err)
	}
	return nil
}

// materializeBuiltIn copies the built-in registry into the tenant's rows the
// first time the tenant edits its schedules, so edits start from what the
// reports were already using.
func (s *scheduleServiceImpl) materializeBuiltIn(ctx context.Context, userID string) error {
	existing, _, err := s.scheduleRepo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	builtIn := schedule.DefaultRegistry()
	for _, sched := range builtIn.Schedules() {
		if err := s.scheduleRepo.Upsert(ctx, userID, sched, sched.ID == builtIn.DefaultID()); err != nil {
			return err
		}
	}
	for _, a := range builtIn.Assignments() {
		if err := s.assignmentRepo.Assign(ctx, userID, a); err != nil {
			return err
		}
	}
	return nil
}
