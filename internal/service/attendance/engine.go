package attendance

import (
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
	"github.com/vontade-empenho/ponto-backend/internal/domain/schedule"
)

// Engine runs classification, segment building and day accounting over an
// already-fetched event list. It holds no state besides the read-only registry.
type Engine struct {
	registry *schedule.Registry
}

func NewEngine(registry *schedule.Registry) *Engine {
	return &Engine{registry: registry}
}

// DayResult is one accounted employee-day.
type DayResult struct {
	Summary  attendance.DaySummary
	Schedule schedule.Schedule
	Events   []attendance.CheckEvent
}

type Result struct {
	Days        []DayResult
	Diagnostics attendance.Diagnostics
}

// Summaries returns the day summaries of the result in order.
func (r Result) Summaries() []attendance.DaySummary {
	out := make([]attendance.DaySummary, len(r.Days))
	for i, d := range r.Days {
		out[i] = d.Summary
	}
	return out
}

// SummarizeDays accounts every (employee, local day) that has events.
func (e *Engine) SummarizeDays(events []attendance.CheckEvent, now time.Time) (Result, error) {
	groups, err := GroupByEmployeeDay(events, e.registry)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, g := range groups {
		summary, diag := accountEvents(g.Date, g.Events, g.Schedule, now)
		summary.EmployeeID = g.EmployeeID
		result.Days = append(result.Days, DayResult{Summary: summary, Schedule: g.Schedule, Events: g.Events})
		result.Diagnostics.Add(diag)
	}
	return result, nil
}

// Timesheet accounts every calendar day from first to last (inclusive, local
// dates) for one employee. Days after now's local date are left out.
func (e *Engine) Timesheet(employeeID string, events []attendance.CheckEvent, first, last time.Time, now time.Time) (Result, schedule.Schedule, error) {
	sched, err := e.registry.Resolve(employeeID)
	if err != nil {
		return Result{}, schedule.Schedule{}, err
	}
	loc := sched.Location()

	byDay := make(map[string][]attendance.CheckEvent)
	for _, ev := range events {
		if ev.EmployeeID != employeeID {
			continue
		}
		key := LocalDay(ev.Timestamp, loc).Format("2006-01-02")
		byDay[key] = append(byDay[key], ev)
	}

	today := LocalDay(now, loc)
	start := LocalDay(first, loc)
	end := LocalDay(last, loc)
	if end.After(today) {
		end = today
	}

	var result Result
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayEvents := byDay[day.Format("2006-01-02")]
		summary, diag := accountEvents(day, dayEvents, sched, now)
		summary.EmployeeID = employeeID
		result.Days = append(result.Days, DayResult{Summary: summary, Schedule: sched, Events: dayEvents})
		result.Diagnostics.Add(diag)
	}
	return result, sched, nil
}

// accountEvents builds the day's segments and accounts them. An entry left
// open on a past day is closed at that day's end.
func accountEvents(day time.Time, events []attendance.CheckEvent, sched schedule.Schedule, now time.Time) (attendance.DaySummary, attendance.Diagnostics) {
	until := now
	if dayEnd := day.AddDate(0, 0, 1); until.After(dayEnd) {
		until = dayEnd
	}

	segments := BuildSegments(events, until)
	summary := AccountDay(day, segments.Segments, sched, firstClassified(events))
	summary.RecordCount = len(events)
	if until.Before(now) {
		summary.InProgress = false
	}

	return summary, attendance.Diagnostics{
		UnmatchedExits: segments.UnmatchedExits,
		UnknownCodes:   segments.UnknownCodes,
	}
}

// firstClassified returns the earliest entry or exit timestamp.
func firstClassified(events []attendance.CheckEvent) *time.Time {
	var first *time.Time
	for _, ev := range events {
		if ev.TypeCode.Class() == attendance.ClassUnknown {
			continue
		}
		if first == nil || ev.Timestamp.Before(*first) {
			ts := ev.Timestamp
			first = &ts
		}
	}
	return first
}
