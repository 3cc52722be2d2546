package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Registry resolves every employee identifier to exactly one Schedule:
// its explicit assignment, or the default.
type Registry struct {
	schedules   map[string]Schedule
	assignments map[string]string
	defaultID   string
}

// NewRegistry validates the configuration so that Resolve is total afterwards.
func NewRegistry(schedules []Schedule, assignments map[string]string, defaultID string) (*Registry, error) {
	r := &Registry{
		schedules:   make(map[string]Schedule, len(schedules)),
		assignments: make(map[string]string, len(assignments)),
		defaultID:   defaultID,
	}

	for _, s := range schedules {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: schedule without id", ErrInvalidRegistry)
		}
		if _, dup := r.schedules[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate schedule %q", ErrInvalidRegistry, s.ID)
		}
		if s.Timezone == "" {
			s.Timezone = DefaultTimezone
		}
		loc, err := time.LoadLocation(s.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: schedule %q timezone %q: %v", ErrInvalidRegistry, s.ID, s.Timezone, err)
		}
		s.loc = loc
		r.schedules[s.ID] = s
	}

	if _, ok := r.schedules[defaultID]; !ok {
		return nil, fmt.Errorf("%w: default schedule %q is not defined", ErrInvalidRegistry, defaultID)
	}

	for employeeID, scheduleID := range assignments {
		if _, ok := r.schedules[scheduleID]; !ok {
			return nil, fmt.Errorf("%w: employee %q assigned to unknown schedule %q", ErrInvalidRegistry, employeeID, scheduleID)
		}
		r.assignments[employeeID] = scheduleID
	}

	return r, nil
}

// Resolve returns the schedule for employeeID. The error is only reachable
// through a registry that was not built by NewRegistry.
func (r *Registry) Resolve(employeeID string) (Schedule, error) {
	if r == nil || r.schedules == nil {
		return Schedule{}, ErrScheduleNotFound
	}
	id, ok := r.assignments[employeeID]
	if !ok {
		id = r.defaultID
	}
	s, ok := r.schedules[id]
	if !ok {
		return Schedule{}, fmt.Errorf("%w: %q", ErrScheduleNotFound, id)
	}
	return s, nil
}

// Default returns the fallback schedule.
func (r *Registry) Default() (Schedule, error) {
	if r == nil {
		return Schedule{}, ErrScheduleNotFound
	}
	s, ok := r.schedules[r.defaultID]
	if !ok {
		return Schedule{}, ErrScheduleNotFound
	}
	return s, nil
}

func (r *Registry) DefaultID() string {
	return r.defaultID
}

// Schedules returns the registered schedules ordered by id.
func (r *Registry) Schedules() []Schedule {
	out := make([]Schedule, 0, len(r.schedules))
	for _, s := range r.schedules {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Assignments returns the explicit mappings ordered by employee id.
func (r *Registry) Assignments() []Assignment {
	out := make([]Assignment, 0, len(r.assignments))
	for employeeID, scheduleID := range r.assignments {
		out = append(out, Assignment{EmployeeID: employeeID, ScheduleID: scheduleID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

// Built-in schedules of the VE office.
var (
	ScheduleVE = Schedule{
		ID:                       "VE",
		Name:                     "Horário VE",
		Start:                    ClockTime{Hour: 8, Minute: 30},
		End:                      ClockTime{Hour: 17, Minute: 30},
		LateToleranceMinutes:     20,
		EarlyOutToleranceMinutes: 20,
		OvertimeThresholdMinutes: 10,
		Timezone:                 DefaultTimezone,
	}
	ScheduleVE2 = Schedule{
		ID:                       "VE2",
		Name:                     "Horário VE 2",
		Start:                    ClockTime{Hour: 9, Minute: 0},
		End:                      ClockTime{Hour: 18, Minute: 0},
		LateToleranceMinutes:     60,
		EarlyOutToleranceMinutes: 60,
		OvertimeThresholdMinutes: 10,
		Timezone:                 DefaultTimezone,
	}
)

// DefaultRegistry is used for tenants that have not configured schedules.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		[]Schedule{ScheduleVE, ScheduleVE2},
		map[string]string{"3": ScheduleVE2.ID},
		ScheduleVE.ID,
	)
	if err != nil {
		panic(err)
	}
	return r
}
