package crosschex

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
)

var (
	errMissingWorkNo    = errors.New("employee workno is empty")
	errInvalidCheckTime = errors.New("checktime is not an RFC 3339 timestamp")
	errInvalidCheckType = errors.New("checktype is not an integer")
)

// Rejection describes a record that did not pass conversion.
type Rejection struct {
	Index  int
	UUID   string
	Reason error
}

// Conversion is the result of turning wire records into check events.
type Conversion struct {
	Events     []attendance.CheckEvent
	Employees  []attendance.Employee
	Rejected   []Rejection
	Duplicates int
}

// Convert validates every record and converts the valid ones. Records with
// a repeated uuid are dropped; pages can overlap while new punches arrive.
func Convert(records []Record) Conversion {
	var out Conversion
	seen := make(map[string]struct{}, len(records))
	employees := make(map[string]attendance.Employee)

	for i, r := range records {
		ev, err := convertRecord(r)
		if err != nil {
			out.Rejected = append(out.Rejected, Rejection{Index: i, UUID: r.UUID, Reason: err})
			continue
		}
		if ev.ID != "" {
			if _, dup := seen[ev.ID]; dup {
				out.Duplicates++
				continue
			}
			seen[ev.ID] = struct{}{}
		}
		out.Events = append(out.Events, ev)

		if _, ok := employees[ev.EmployeeID]; !ok {
			employees[ev.EmployeeID] = attendance.Employee{
				ID:        ev.EmployeeID,
				FirstName: strings.TrimSpace(r.Employee.FirstName),
				LastName:  strings.TrimSpace(r.Employee.LastName),
			}
		}
	}

	out.Employees = make([]attendance.Employee, 0, len(employees))
	for _, e := range employees {
		out.Employees = append(out.Employees, e)
	}
	sort.Slice(out.Employees, func(i, j int) bool { return out.Employees[i].ID < out.Employees[j].ID })

	return out
}

func convertRecord(r Record) (attendance.CheckEvent, error) {
	workNo := strings.TrimSpace(r.Employee.WorkNo)
	if workNo == "" {
		return attendance.CheckEvent{}, errMissingWorkNo
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(r.CheckTime))
	if err != nil {
		return attendance.CheckEvent{}, fmt.Errorf("%w: %q", errInvalidCheckTime, r.CheckTime)
	}

	code, err := parseCheckType(r.CheckType)
	if err != nil {
		return attendance.CheckEvent{}, err
	}

	device := strings.TrimSpace(r.Device.Name)
	if device == "" {
		device = strings.TrimSpace(r.Device.SerialNumber)
	}

	return attendance.CheckEvent{
		ID:          strings.TrimSpace(r.UUID),
		EmployeeID:  workNo,
		Timestamp:   ts,
		TypeCode:    code,
		DeviceLabel: device,
	}, nil
}

// parseCheckType accepts a bare JSON integer only: no strings, fractions or null.
func parseCheckType(raw json.RawMessage) (attendance.CheckType, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, fmt.Errorf("%w: missing", errInvalidCheckType)
	}
	var n int
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return 0, fmt.Errorf("%w: %s", errInvalidCheckType, trimmed)
	}
	return attendance.CheckType(n), nil
}
