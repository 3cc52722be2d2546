package schedule

import (
	"context"
)

type ScheduleRepository interface {
	// ListByUser returns the tenant's schedules and the id of its default.
	ListByUser(ctx context.Context, userID string) ([]Schedule, string, error)
	Upsert(ctx context.Context, userID string, s Schedule, isDefault bool) error
	Delete(ctx context.Context, userID, scheduleID string) error
	CountAssignments(ctx context.Context, userID, scheduleID string) (int, error)
}

type AssignmentRepository interface {
	ListByUser(ctx context.Context, userID string) (map[string]string, error)
	Assign(ctx context.Context, userID string, a Assignment) error
	Unassign(ctx context.Context, userID, employeeID string) error
}
