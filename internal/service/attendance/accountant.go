package attendance

import (
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
	"github.com/vontade-empenho/ponto-backend/internal/domain/schedule"
)

// AccountDay derives the day summary of one employee from the day's segments.
// day is the local calendar date in the schedule's timezone; firstEvent is
// the earliest entry or exit of the day, nil when there was none.
func AccountDay(day time.Time, segments []attendance.WorkedSegment, sched schedule.Schedule, firstEvent *time.Time) attendance.DaySummary {
	loc := sched.Location()
	summary := attendance.DaySummary{
		Date:       day,
		ScheduleID: sched.ID,
		FirstEvent: firstEvent,
		Segments:   segments,
	}

	var total time.Duration
	for _, s := range segments {
		total += s.Duration
	}
	worked := roundMinutes(total)
	if sched.AutoBreak.Enabled && sched.AutoBreak.DurationMinutes > 0 && worked >= sched.AutoBreak.DurationMinutes {
		worked -= sched.AutoBreak.DurationMinutes
		summary.BreakDeducted = sched.AutoBreak.DurationMinutes
	}
	summary.WorkedMinutes = worked

	if n := len(segments); n > 0 {
		firstIn := segments[0].Start
		summary.FirstIn = &firstIn

		last := segments[n-1]
		if last.Open {
			summary.InProgress = true
		} else {
			lastOut := last.End
			summary.LastOut = &lastOut
		}
	}

	// Overtime: each edge counts in full once it reaches the threshold.
	threshold := sched.OvertimeThresholdMinutes
	if summary.FirstIn != nil {
		if early := sched.Start.Minutes() - schedule.MinuteOfDay(*summary.FirstIn, loc); early > 0 && early >= threshold {
			summary.OvertimeMinutes += early
		}
	}
	if summary.LastOut != nil {
		if extra := schedule.MinuteOfDay(*summary.LastOut, loc) - sched.End.Minutes(); extra > 0 && extra >= threshold {
			summary.OvertimeMinutes += extra
		}
	}

	late := false
	if firstEvent != nil {
		arrival := schedule.MinuteOfDay(*firstEvent, loc)
		if arrival > sched.LateLimit() {
			late = true
			summary.LateMinutes = arrival - sched.Start.Minutes()
		}
	}

	switch {
	case isWeekend(day):
		summary.Status = attendance.StatusWeekend
	case summary.WorkedMinutes == 0:
		summary.Status = attendance.StatusAbsent
	case late:
		summary.Status = attendance.StatusLate
	default:
		summary.Status = attendance.StatusNormal
	}

	if summary.Status != attendance.StatusLate {
		summary.LateMinutes = 0
	}
	if summary.LastOut != nil && (summary.Status == attendance.StatusNormal || summary.Status == attendance.StatusLate) {
		departure := schedule.MinuteOfDay(*summary.LastOut, loc)
		if departure < sched.End.Minutes()-sched.EarlyOutToleranceMinutes {
			summary.EarlyLeaveMinutes = sched.End.Minutes() - departure
		}
	}

	return summary
}

func isWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
