package schedule

import (
	"github.com/vontade-empenho/ponto-backend/internal/pkg/validator"
)

// ========================================
// SCHEDULE DTOs
// ========================================

type UpsertScheduleRequest struct {
	ID                       string            `json:"id" validate:"required,max=32"`
	Name                     string            `json:"name" validate:"required,max=100"`
	Start                    string            `json:"start" validate:"required,clocktime"`
	End                      string            `json:"end" validate:"required,clocktime"`
	LateToleranceMinutes     int               `json:"late_tolerance_minutes" validate:"gte=0,lte=240"`
	EarlyOutToleranceMinutes int               `json:"early_out_tolerance_minutes" validate:"gte=0,lte=240"`
	OvertimeThresholdMinutes int               `json:"overtime_threshold_minutes" validate:"gte=0,lte=240"`
	AutoBreak                *AutoBreakRequest `json:"auto_break"`
	Timezone                 string            `json:"timezone" validate:"omitempty,timezone"`
	IsDefault                bool              `json:"is_default"`
}

type AutoBreakRequest struct {
	Enabled         bool   `json:"enabled"`
	WindowStart     string `json:"window_start" validate:"omitempty,clocktime"`
	WindowEnd       string `json:"window_end" validate:"omitempty,clocktime"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0,lte=480"`
}

func (r *UpsertScheduleRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	var errs validator.ValidationErrors

	start, _ := ParseClockTime(r.Start)
	end, _ := ParseClockTime(r.End)
	if end.Minutes() <= start.Minutes() {
		errs = append(errs, validator.ValidationError{
			Field:   "end",
			Message: "end must be after start",
		})
	}

	if r.AutoBreak != nil && r.AutoBreak.Enabled {
		if r.AutoBreak.DurationMinutes <= 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "auto_break.duration_minutes",
				Message: "duration_minutes must be positive when the automatic break is enabled",
			})
		}
		if r.AutoBreak.WindowStart != "" && r.AutoBreak.WindowEnd != "" {
			ws, _ := ParseClockTime(r.AutoBreak.WindowStart)
			we, _ := ParseClockTime(r.AutoBreak.WindowEnd)
			if we.Minutes() <= ws.Minutes() {
				errs = append(errs, validator.ValidationError{
					Field:   "auto_break.window_end",
					Message: "window_end must be after window_start",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToSchedule assumes Validate passed.
func (r *UpsertScheduleRequest) ToSchedule() Schedule {
	start, _ := ParseClockTime(r.Start)
	end, _ := ParseClockTime(r.End)

	s := Schedule{
		ID:                       r.ID,
		Name:                     r.Name,
		Start:                    start,
		End:                      end,
		LateToleranceMinutes:     r.LateToleranceMinutes,
		EarlyOutToleranceMinutes: r.EarlyOutToleranceMinutes,
		OvertimeThresholdMinutes: r.OvertimeThresholdMinutes,
		Timezone:                 r.Timezone,
	}
	if s.Timezone == "" {
		s.Timezone = DefaultTimezone
	}
	if r.AutoBreak != nil {
		s.AutoBreak.Enabled = r.AutoBreak.Enabled
		s.AutoBreak.DurationMinutes = r.AutoBreak.DurationMinutes
		s.AutoBreak.Window.Start, _ = ParseClockTime(r.AutoBreak.WindowStart)
		s.AutoBreak.Window.End, _ = ParseClockTime(r.AutoBreak.WindowEnd)
	}
	return s
}

type AssignScheduleRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,max=64"`
	ScheduleID string `json:"schedule_id" validate:"required,max=32"`
}

func (r *AssignScheduleRequest) Validate() error {
	return validator.Struct(r)
}

type RegistryResponse struct {
	DefaultScheduleID string       `json:"default_schedule_id"`
	Schedules         []Schedule   `json:"schedules"`
	Assignments       []Assignment `json:"assignments"`
	BuiltIn           bool         `json:"built_in"`
}
