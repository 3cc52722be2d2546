package attendance

import (
	"strings"
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/domain/schedule"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/validator"
)

// MaxRangeDays bounds report and listing windows.
const MaxRangeDays = 62

// ========================================
// REQUEST DTOs
// ========================================

type DashboardRequest struct {
	Date string `json:"date"` // optional, YYYY-MM-DD, defaults to today
}

func (r *DashboardRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsEmpty(r.Date) {
		if _, ok := validator.IsValidDate(r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RangeRequest is an inclusive range of calendar days.
type RangeRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r *RangeRequest) Validate() error {
	var errs validator.ValidationErrors
	var start, end time.Time
	var startOK, endOK bool

	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if start, startOK = validator.IsValidDate(r.StartDate); !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	} else if end, endOK = validator.IsValidDate(r.EndDate); !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: ErrInvalidDateRange.Error(),
			})
		} else if int(end.Sub(start).Hours()/24)+1 > MaxRangeDays {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: ErrDateRangeTooLong.Error(),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DailyReportRequest struct {
	RangeRequest
	Search string `json:"search"` // matches employee name or id
}

// Matches reports whether the employee passes the search filter.
func (r *DailyReportRequest) Matches(e Employee) bool {
	q := strings.ToLower(strings.TrimSpace(r.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name()), q) || strings.Contains(strings.ToLower(e.ID), q)
}

type TimesheetRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      string `json:"month"` // YYYY-MM
}

func (r *TimesheetRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if validator.IsEmpty(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month is required",
		})
	} else if _, ok := validator.IsValidMonth(r.Month); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EventListRequest struct {
	RangeRequest
	EmployeeID string `json:"employee_id"` // optional
}

// ========================================
// RESPONSE DTOs
// ========================================

// LiveStatus is the "right now" state shown on the dashboard.
type LiveStatus string

const (
	LivePresent LiveStatus = "present"
	LiveLate    LiveStatus = "late"
	LiveLeft    LiveStatus = "left"
)

type EmployeeStatus struct {
	EmployeeID    string     `json:"employee_id"`
	EmployeeName  string     `json:"employee_name"`
	Status        LiveStatus `json:"status"`
	DayStatus     DayStatus  `json:"day_status"`
	FirstCheck    time.Time  `json:"first_check"`
	LastCheck     time.Time  `json:"last_check"`
	WorkedMinutes int        `json:"worked_minutes"`
	ScheduleName  string     `json:"schedule_name"`
	ScheduleStart string     `json:"schedule_start"`
}

// DashboardKPIs summarizes the live dashboard. Present and Left partition
// Total. Late is not part of that split: it counts every employee whose day
// is late, whether still in or already gone.
type DashboardKPIs struct {
	Total                int `json:"total"`
	Present              int `json:"present"`
	Late                 int `json:"late"`
	Left                 int `json:"left"`
	AverageWorkedMinutes int `json:"average_worked_minutes"`
	PunctualityRate      int `json:"punctuality_rate"`
}

type DashboardResponse struct {
	Date        string           `json:"date"`
	GeneratedAt time.Time        `json:"generated_at"`
	Employees   []EmployeeStatus `json:"employees"`
	KPIs        DashboardKPIs    `json:"kpis"`
	Diagnostics Diagnostics      `json:"diagnostics"`
}

type DailyReportRow struct {
	Date            string     `json:"date"`
	EmployeeID      string     `json:"employee_id"`
	EmployeeName    string     `json:"employee_name"`
	ScheduleName    string     `json:"schedule_name"`
	FirstIn         *time.Time `json:"first_in"`
	LastOut         *time.Time `json:"last_out"`
	WorkedMinutes   int        `json:"worked_minutes"`
	OvertimeMinutes int        `json:"overtime_minutes"`
	Status          DayStatus  `json:"status"`
	InProgress      bool       `json:"in_progress"`
	RecordCount     int        `json:"record_count"`
}

type DailyReportResponse struct {
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	GeneratedAt time.Time        `json:"generated_at"`
	Rows        []DailyReportRow `json:"rows"`
	Summary     PeriodSummary    `json:"summary"`
	Diagnostics Diagnostics      `json:"diagnostics"`
}

type TimesheetDay struct {
	Date              string     `json:"date"`
	Weekday           string     `json:"weekday"`
	FirstIn           *time.Time `json:"first_in"`
	LastOut           *time.Time `json:"last_out"`
	WorkedMinutes     int        `json:"worked_minutes"`
	OvertimeMinutes   int        `json:"overtime_minutes"`
	LateMinutes       int        `json:"late_minutes"`
	EarlyLeaveMinutes int        `json:"early_leave_minutes"`
	Status            DayStatus  `json:"status"`
	InProgress        bool       `json:"in_progress"`
}

type TimesheetResponse struct {
	EmployeeID   string         `json:"employee_id"`
	EmployeeName string         `json:"employee_name"`
	Month        string         `json:"month"`
	Schedule     schedule.Info  `json:"schedule"`
	Days         []TimesheetDay `json:"days"`
	Summary      PeriodSummary  `json:"summary"`
	Diagnostics  Diagnostics    `json:"diagnostics"`
}

type EventView struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	Timestamp    time.Time  `json:"timestamp"`
	TypeCode     int        `json:"type_code"`
	Type         string     `json:"type"`
	Class        EventClass `json:"class"`
	Device       string     `json:"device"`
}

type EventListResponse struct {
	Events      []EventView `json:"events"`
	Total       int         `json:"total"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

type EmployeeView struct {
	ID        string        `json:"id"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Name      string        `json:"name"`
	Schedule  schedule.Info `json:"schedule"`
}

type EmployeeListResponse struct {
	Employees []EmployeeView `json:"employees"`
	Total     int            `json:"total"`
}

type CheckTypeCount struct {
	Code  int        `json:"code"`
	Type  string     `json:"type"`
	Class EventClass `json:"class"`
	Count int        `json:"count"`
}

type DiagnosticsResponse struct {
	StartDate           string           `json:"start_date"`
	EndDate             string           `json:"end_date"`
	TotalEvents         int              `json:"total_events"`
	CheckTypes          []CheckTypeCount `json:"check_types"`
	BreakStarts         int              `json:"break_starts"`
	BreakEnds           int              `json:"break_ends"`
	EmployeesWithBreaks int              `json:"employees_with_breaks"`
	Diagnostics         Diagnostics      `json:"diagnostics"`
}
