package schedule

import "context"

type ScheduleService interface {
	// Registry builds the tenant's registry, falling back to the built-in one
	Registry(ctx context.Context, userID string) (*Registry, error)

	// Registry management for the authenticated tenant
	List(ctx context.Context) (RegistryResponse, error)
	Upsert(ctx context.Context, req UpsertScheduleRequest) (Schedule, error)
	Delete(ctx context.Context, scheduleID string) error
	Assign(ctx context.Context, req AssignScheduleRequest) error
	Unassign(ctx context.Context, employeeID string) error
}
