package attendance

import (
	"math"
	"sort"
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
)

// SegmentResult holds the worked segments of an event list and the events
// that did not take part in pairing.
type SegmentResult struct {
	Segments       []attendance.WorkedSegment
	UnmatchedExits int
	UnknownCodes   int
}

// BuildSegments pairs entries with exits in timestamp order. Ties keep input
// order. A later entry replaces a still-open one; an exit with nothing open
// is counted and skipped. A trailing open entry runs until now.
func BuildSegments(events []attendance.CheckEvent, now time.Time) SegmentResult {
	sorted := make([]attendance.CheckEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var result SegmentResult
	var open *time.Time

	for _, ev := range sorted {
		switch ev.TypeCode.Class() {
		case attendance.ClassEntry:
			ts := ev.Timestamp
			open = &ts
		case attendance.ClassExit:
			if open == nil {
				result.UnmatchedExits++
				continue
			}
			result.Segments = append(result.Segments, newSegment(*open, ev.Timestamp, false))
			open = nil
		default:
			result.UnknownCodes++
		}
	}

	if open != nil {
		result.Segments = append(result.Segments, newSegment(*open, now, true))
	}

	return result
}

func newSegment(start, end time.Time, open bool) attendance.WorkedSegment {
	d := end.Sub(start)
	if d < 0 {
		d = 0
		end = start
	}
	return attendance.WorkedSegment{
		Start:           start,
		End:             end,
		Duration:        d,
		DurationMinutes: roundMinutes(d),
		Open:            open,
	}
}

// roundMinutes rounds to the nearest whole minute.
func roundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}
