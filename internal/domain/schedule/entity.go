package schedule

import (
	"fmt"
	"time"
)

// DefaultTimezone is used when a schedule does not name one.
const DefaultTimezone = "Europe/Lisbon"

// ClockTime is a local wall-clock time of day.
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ParseClockTime parses "HH:MM" (or "HH:MM:SS", seconds ignored).
func ParseClockTime(s string) (ClockTime, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
}

// Minutes returns the minutes elapsed since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MinuteOfDay returns the wall-clock minute of t in loc, seconds truncated.
func MinuteOfDay(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	return local.Hour()*60 + local.Minute()
}

type ClockRange struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// AutoBreak is a fixed deduction applied to a day's worked time once the
// worked time reaches DurationMinutes. Window is the nominal break slot.
type AutoBreak struct {
	Enabled         bool       `json:"enabled"`
	Window          ClockRange `json:"window"`
	DurationMinutes int        `json:"duration_minutes"`
}

type Schedule struct {
	ID                       string    `json:"id"`
	Name                     string    `json:"name"`
	Start                    ClockTime `json:"start"`
	End                      ClockTime `json:"end"`
	LateToleranceMinutes     int       `json:"late_tolerance_minutes"`
	EarlyOutToleranceMinutes int       `json:"early_out_tolerance_minutes"`
	OvertimeThresholdMinutes int       `json:"overtime_threshold_minutes"`
	AutoBreak                AutoBreak `json:"auto_break"`
	Timezone                 string    `json:"timezone"`

	loc *time.Location
}

// Location returns the timezone wall-clock comparisons are made in.
func (s Schedule) Location() *time.Location {
	if s.loc != nil {
		return s.loc
	}
	name := s.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RegularMinutes is the nominal length of the work day.
func (s Schedule) RegularMinutes() int {
	return s.End.Minutes() - s.Start.Minutes()
}

// LateLimit is the last minute of day that still counts as on time.
func (s Schedule) LateLimit() int {
	return s.Start.Minutes() + s.LateToleranceMinutes
}

func (s Schedule) Info() Info {
	return Info{
		ScheduleID:     s.ID,
		ScheduleName:   s.Name,
		Start:          s.Start.String(),
		End:            s.End.String(),
		RegularMinutes: s.RegularMinutes(),
		Timezone:       s.Location().String(),
	}
}

// Info is the display view of a schedule.
type Info struct {
	ScheduleID     string `json:"schedule_id"`
	ScheduleName   string `json:"schedule_name"`
	Start          string `json:"start"`
	End            string `json:"end"`
	RegularMinutes int    `json:"regular_minutes"`
	Timezone       string `json:"timezone"`
}

// Assignment maps one employee to a schedule.
type Assignment struct {
	EmployeeID string `json:"employee_id"`
	ScheduleID string `json:"schedule_id"`
}
