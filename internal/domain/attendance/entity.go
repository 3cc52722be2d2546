package attendance

import (
	"strings"
	"time"
)

// CheckType is the punch code reported by the biometric device.
type CheckType int

const (
	CheckIn     CheckType = 0
	CheckOut    CheckType = 1
	BreakStart  CheckType = 2
	BreakEnd    CheckType = 3
	OvertimeIn  CheckType = 128
	OvertimeOut CheckType = 129
)

func (c CheckType) String() string {
	switch c {
	case CheckIn:
		return "check_in"
	case CheckOut:
		return "check_out"
	case BreakStart:
		return "break_start"
	case BreakEnd:
		return "break_end"
	case OvertimeIn:
		return "overtime_in"
	case OvertimeOut:
		return "overtime_out"
	default:
		return "unknown"
	}
}

// EventClass is the semantic role of a punch in time accounting.
type EventClass string

const (
	ClassEntry   EventClass = "entry"
	ClassExit    EventClass = "exit"
	ClassUnknown EventClass = "unknown"
)

// Classify is the single mapping from punch code to class.
func Classify(code CheckType) EventClass {
	switch code {
	case CheckIn, OvertimeIn, BreakEnd:
		return ClassEntry
	case CheckOut, OvertimeOut, BreakStart:
		return ClassExit
	default:
		return ClassUnknown
	}
}

func (c CheckType) Class() EventClass {
	return Classify(c)
}

// CheckEvent is one validated punch. It is never mutated after ingestion.
type CheckEvent struct {
	ID          string
	EmployeeID  string
	Timestamp   time.Time
	TypeCode    CheckType
	DeviceLabel string
}

type Employee struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Name returns the display name, falling back to the id.
func (e Employee) Name() string {
	name := strings.TrimSpace(e.FirstName + " " + e.LastName)
	if name == "" {
		return e.ID
	}
	return name
}

// WorkedSegment is an entry→exit span. End is the caller's "now" when Open.
type WorkedSegment struct {
	Start           time.Time     `json:"start"`
	End             time.Time     `json:"end"`
	Duration        time.Duration `json:"-"`
	DurationMinutes int           `json:"duration_minutes"`
	Open            bool          `json:"open"`
}

type DayStatus string

const (
	StatusNormal  DayStatus = "normal"
	StatusLate    DayStatus = "late"
	StatusAbsent  DayStatus = "absent"
	StatusWeekend DayStatus = "weekend"
)

// DaySummary is the accounting result of one employee on one local calendar day.
type DaySummary struct {
	EmployeeID        string          `json:"employee_id"`
	Date              time.Time       `json:"date"`
	ScheduleID        string          `json:"schedule_id"`
	FirstEvent        *time.Time      `json:"first_event"`
	FirstIn           *time.Time      `json:"first_in"`
	LastOut           *time.Time      `json:"last_out"`
	Segments          []WorkedSegment `json:"segments"`
	WorkedMinutes     int             `json:"worked_minutes"`
	BreakDeducted     int             `json:"break_deducted_minutes"`
	OvertimeMinutes   int             `json:"overtime_minutes"`
	LateMinutes       int             `json:"late_minutes"`
	EarlyLeaveMinutes int             `json:"early_leave_minutes"`
	Status            DayStatus       `json:"status"`
	InProgress        bool            `json:"in_progress"`
	RecordCount       int             `json:"record_count"`
}

func (d DaySummary) IsWeekend() bool {
	return d.Status == StatusWeekend
}

// PeriodSummary aggregates a set of day summaries.
type PeriodSummary struct {
	Days                 int `json:"days"`
	WorkDays             int `json:"work_days"`
	WeekendDays          int `json:"weekend_days"`
	PresentDays          int `json:"present_days"`
	AbsentDays           int `json:"absent_days"`
	LateDays             int `json:"late_days"`
	TotalWorkedMinutes   int `json:"total_worked_minutes"`
	TotalOvertimeMinutes int `json:"total_overtime_minutes"`
	AverageWorkedMinutes int `json:"average_worked_minutes"`
	PunctualityRate      int `json:"punctuality_rate"`
	AttendanceRate       int `json:"attendance_rate"`
}

// Diagnostics counts the events that did not contribute to accounting.
type Diagnostics struct {
	RejectedEvents   int `json:"rejected_events"`
	DuplicateEvents  int `json:"duplicate_events"`
	OutOfRangeEvents int `json:"out_of_range_events"`
	UnmatchedExits   int `json:"unmatched_exits"`
	UnknownCodes     int `json:"unknown_codes"`
}

func (d *Diagnostics) Add(o Diagnostics) {
	d.RejectedEvents += o.RejectedEvents
	d.DuplicateEvents += o.DuplicateEvents
	d.OutOfRangeEvents += o.OutOfRangeEvents
	d.UnmatchedExits += o.UnmatchedExits
	d.UnknownCodes += o.UnknownCodes
}

// Credentials are a tenant's provider API keys.
type Credentials struct {
	APIKey    string
	APISecret string
}

// EventBatch is the validated result of one provider fetch.
type EventBatch struct {
	Events    []CheckEvent
	Employees []Employee
	Rejected  int
	// Duplicates repeated a record uuid; OutOfRange fell outside the window.
	Duplicates int
	OutOfRange int
}

// Diagnostics reports what the fetch dropped before accounting.
func (b EventBatch) Diagnostics() Diagnostics {
	return Diagnostics{
		RejectedEvents:   b.Rejected,
		DuplicateEvents:  b.Duplicates,
		OutOfRangeEvents: b.OutOfRange,
	}
}
