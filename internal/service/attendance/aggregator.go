package attendance

import (
	"math"
	"sort"
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
	"github.com/vontade-empenho/ponto-backend/internal/domain/schedule"
)

// Aggregate folds day summaries into period totals. Weekend days never count
// as work days.
func Aggregate(days []attendance.DaySummary) attendance.PeriodSummary {
	var p attendance.PeriodSummary
	p.Days = len(days)

	for _, d := range days {
		p.TotalWorkedMinutes += d.WorkedMinutes
		p.TotalOvertimeMinutes += d.OvertimeMinutes
		if d.WorkedMinutes > 0 {
			p.PresentDays++
		}

		if d.IsWeekend() {
			p.WeekendDays++
			continue
		}
		p.WorkDays++
		switch d.Status {
		case attendance.StatusAbsent:
			p.AbsentDays++
		case attendance.StatusLate:
			p.LateDays++
		}
	}

	if p.PresentDays > 0 {
		p.AverageWorkedMinutes = int(math.Round(float64(p.TotalWorkedMinutes) / float64(p.PresentDays)))
	}

	p.PunctualityRate = 100
	if p.WorkDays > 0 {
		p.PunctualityRate = percent(p.WorkDays-p.LateDays, p.WorkDays)
		p.AttendanceRate = percent(p.WorkDays-p.AbsentDays, p.WorkDays)
	}

	return p
}

func percent(part, whole int) int {
	return int(math.Round(100 * float64(part) / float64(whole)))
}

// EmployeeDay is the set of events one employee produced on one local
// calendar day, together with the schedule they are measured against.
type EmployeeDay struct {
	EmployeeID string
	Date       time.Time
	Schedule   schedule.Schedule
	Events     []attendance.CheckEvent
}

// GroupByEmployeeDay splits events by employee and by local calendar day in
// that employee's schedule timezone. Groups are ordered by date, then
// employee id; events keep their input order inside a group.
func GroupByEmployeeDay(events []attendance.CheckEvent, registry *schedule.Registry) ([]EmployeeDay, error) {
	type key struct {
		employeeID string
		date       string
	}

	schedules := make(map[string]schedule.Schedule)
	index := make(map[key]int)
	var groups []EmployeeDay

	for _, ev := range events {
		sched, ok := schedules[ev.EmployeeID]
		if !ok {
			var err error
			sched, err = registry.Resolve(ev.EmployeeID)
			if err != nil {
				return nil, err
			}
			schedules[ev.EmployeeID] = sched
		}

		day := LocalDay(ev.Timestamp, sched.Location())
		k := key{employeeID: ev.EmployeeID, date: day.Format("2006-01-02")}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, EmployeeDay{
				EmployeeID: ev.EmployeeID,
				Date:       day,
				Schedule:   sched,
			})
		}
		groups[i].Events = append(groups[i].Events, ev)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if !groups[i].Date.Equal(groups[j].Date) {
			return groups[i].Date.Before(groups[j].Date)
		}
		return groups[i].EmployeeID < groups[j].EmployeeID
	})

	return groups, nil
}

// LocalDay returns midnight of t's calendar day in loc.
func LocalDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
