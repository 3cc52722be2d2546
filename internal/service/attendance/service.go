package attendance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
	"github.com/vontade-empenho/ponto-backend/internal/domain/schedule"
	"github.com/vontade-empenho/ponto-backend/internal/domain/user"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/jwt"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

type AttendanceServiceImpl struct {
	userRepo        user.UserRepository
	scheduleService schedule.ScheduleService
	source          attendance.EventSource
	now             func() time.Time
}

func NewAttendanceService(
	userRepo user.UserRepository,
	scheduleService schedule.ScheduleService,
	source attendance.EventSource,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		userRepo:        userRepo,
		scheduleService: scheduleService,
		source:          source,
		now:             time.Now,
	}
}

// tenant is everything a report needs besides the events.
type tenant struct {
	creds    attendance.Credentials
	registry *schedule.Registry
	loc      *time.Location
}

func (s *AttendanceServiceImpl) loadTenant(ctx context.Context, userID string) (tenant, error) {
	var t tenant

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.userRepo.GetByID(gctx, userID)
		if err != nil {
			return err
		}
		if !u.HasCredentials() {
			return attendance.ErrMissingCredentials
		}
		t.creds = attendance.Credentials{APIKey: u.APIKey, APISecret: u.APISecret}
		return nil
	})
	g.Go(func() error {
		registry, err := s.scheduleService.Registry(gctx, userID)
		if err != nil {
			return err
		}
		t.registry = registry
		return nil
	})
	if err := g.Wait(); err != nil {
		return tenant{}, err
	}

	def, err := t.registry.Default()
	if err != nil {
		return tenant{}, err
	}
	t.loc = def.Location()
	return t, nil
}

// fetch returns the events of the local days first..last inclusive.
func (s *AttendanceServiceImpl) fetch(ctx context.Context, t tenant, first, last time.Time) (attendance.EventBatch, error) {
	batch, err := s.source.FetchEvents(ctx, t.creds, first, last.AddDate(0, 0, 1))
	if err != nil {
		return attendance.EventBatch{}, fmt.Errorf("failed to fetch attendance events: %w", err)
	}
	return batch, nil
}

func (t tenant) parseRange(req attendance.RangeRequest) (time.Time, time.Time, error) {
	first, err := time.ParseInLocation(dateLayout, req.StartDate, t.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse start date: %w", err)
	}
	last, err := time.ParseInLocation(dateLayout, req.EndDate, t.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse end date: %w", err)
	}
	return first, last, nil
}

func employeeIndex(employees []attendance.Employee) map[string]attendance.Employee {
	index := make(map[string]attendance.Employee, len(employees))
	for _, e := range employees {
		index[e.ID] = e
	}
	return index
}

func lookupEmployee(index map[string]attendance.Employee, id string) attendance.Employee {
	if e, ok := index[id]; ok {
		return e
	}
	return attendance.Employee{ID: id}
}

// GetDashboard implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDashboard(ctx context.Context, req attendance.DashboardRequest) (attendance.DashboardResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DashboardResponse{}, err
	}

	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return attendance.DashboardResponse{}, err
	}

	return s.dashboard(ctx, userID, req.Date)
}

// RefreshDashboard implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RefreshDashboard(ctx context.Context, userID string) (attendance.DashboardResponse, error) {
	return s.dashboard(ctx, userID, "")
}

func (s *AttendanceServiceImpl) dashboard(ctx context.Context, userID, date string) (attendance.DashboardResponse, error) {
	t, err := s.loadTenant(ctx, userID)
	if err != nil {
		return attendance.DashboardResponse{}, err
	}

	now := s.now()
	day := LocalDay(now, t.loc)
	if date != "" {
		day, err = time.ParseInLocation(dateLayout, date, t.loc)
		if err != nil {
			return attendance.DashboardResponse{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	dayKey := day.Format(dateLayout)

	batch, err := s.fetch(ctx, t, day, day)
	if err != nil {
		return attendance.DashboardResponse{}, err
	}

	result, err := NewEngine(t.registry).SummarizeDays(batch.Events, now)
	if err != nil {
		return attendance.DashboardResponse{}, err
	}

	employees := employeeIndex(batch.Employees)
	resp := attendance.DashboardResponse{
		Date:        dayKey,
		GeneratedAt: now,
		Employees:   []attendance.EmployeeStatus{},
		Diagnostics: result.Diagnostics,
	}
	resp.Diagnostics.Add(batch.Diagnostics())

	totalWorked := 0
	for _, d := range result.Days {
		if d.Summary.Date.Format(dateLayout) != dayKey {
			continue
		}
		status := liveStatus(d)
		resp.Employees = append(resp.Employees, status)
		resp.KPIs.Total++
		switch status.Status {
		case attendance.LivePresent, attendance.LiveLate:
			resp.KPIs.Present++
		case attendance.LiveLeft:
			resp.KPIs.Left++
		}
		if d.Summary.Status == attendance.StatusLate {
			resp.KPIs.Late++
		}
		totalWorked += d.Summary.WorkedMinutes
	}

	for i := range resp.Employees {
		resp.Employees[i].EmployeeName = lookupEmployee(employees, resp.Employees[i].EmployeeID).Name()
	}
	sort.SliceStable(resp.Employees, func(i, j int) bool {
		return resp.Employees[i].EmployeeName < resp.Employees[j].EmployeeName
	})

	resp.KPIs.PunctualityRate = 100
	if resp.KPIs.Total > 0 {
		resp.KPIs.AverageWorkedMinutes = totalWorked / resp.KPIs.Total
		resp.KPIs.PunctualityRate = percent(resp.KPIs.Total-resp.KPIs.Late, resp.KPIs.Total)
	}

	return resp, nil
}

// liveStatus reports an employee still clocked in as present or late and
// everyone else as left.
func liveStatus(d DayResult) attendance.EmployeeStatus {
	status := attendance.EmployeeStatus{
		EmployeeID:    d.Summary.EmployeeID,
		DayStatus:     d.Summary.Status,
		WorkedMinutes: d.Summary.WorkedMinutes,
		ScheduleName:  d.Schedule.Name,
		ScheduleStart: d.Schedule.Start.String(),
		Status:        attendance.LiveLeft,
	}

	for i, ev := range d.Events {
		if i == 0 || ev.Timestamp.Before(status.FirstCheck) {
			status.FirstCheck = ev.Timestamp
		}
		if i == 0 || ev.Timestamp.After(status.LastCheck) {
			status.LastCheck = ev.Timestamp
		}
	}

	if d.Summary.InProgress {
		status.Status = attendance.LivePresent
		if d.Summary.Status == attendance.StatusLate {
			status.Status = attendance.LiveLate
		}
	}
	return status
}

// GetDailyReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailyReport(ctx context.Context, req attendance.DailyReportRequest) (attendance.DailyReportResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyReportResponse{}, err
	}

	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}

	t, err := s.loadTenant(ctx, userID)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}
	first, last, err := t.parseRange(req.RangeRequest)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}

	batch, err := s.fetch(ctx, t, first, last)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}

	now := s.now()
	result, err := NewEngine(t.registry).SummarizeDays(batch.Events, now)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}

	employees := employeeIndex(batch.Employees)
	resp := attendance.DailyReportResponse{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		GeneratedAt: now,
		Rows:        []attendance.DailyReportRow{},
		Diagnostics: result.Diagnostics,
	}
	resp.Diagnostics.Add(batch.Diagnostics())

	var summaries []attendance.DaySummary
	for _, d := range result.Days {
		date := d.Summary.Date.Format(dateLayout)
		if date < req.StartDate || date > req.EndDate {
			continue
		}
		employee := lookupEmployee(employees, d.Summary.EmployeeID)
		if !req.Matches(employee) {
			continue
		}

		resp.Rows = append(resp.Rows, attendance.DailyReportRow{
			Date:            date,
			EmployeeID:      employee.ID,
			EmployeeName:    employee.Name(),
			ScheduleName:    d.Schedule.Name,
			FirstIn:         d.Summary.FirstIn,
			LastOut:         d.Summary.LastOut,
			WorkedMinutes:   d.Summary.WorkedMinutes,
			OvertimeMinutes: d.Summary.OvertimeMinutes,
			Status:          d.Summary.Status,
			InProgress:      d.Summary.InProgress,
			RecordCount:     d.Summary.RecordCount,
		})
		summaries = append(summaries, d.Summary)
	}
	resp.Summary = Aggregate(summaries)

	return resp, nil
}

// GetTimesheet implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetTimesheet(ctx context.Context, req attendance.TimesheetRequest) (attendance.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TimesheetResponse{}, err
	}

	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return attendance.TimesheetResponse{}, err
	}

	t, err := s.loadTenant(ctx, userID)
	if err != nil {
		return attendance.TimesheetResponse{}, err
	}

	first, err := time.ParseInLocation("2006-01", req.Month, t.loc)
	if err != nil {
		return attendance.TimesheetResponse{}, fmt.Errorf("failed to parse month: %w", err)
	}
	last := first.AddDate(0, 1, -1)

	batch, err := s.fetch(ctx, t, first, last)
	if err != nil {
		return attendance.TimesheetResponse{}, err
	}

	employeeID := strings.TrimSpace(req.EmployeeID)
	employees := employeeIndex(batch.Employees)
	employee, ok := employees[employeeID]
	if !ok {
		return attendance.TimesheetResponse{}, attendance.ErrEmployeeNotFound
	}

	result, sched, err := NewEngine(t.registry).Timesheet(employeeID, batch.Events, first, last, s.now())
	if err != nil {
		return attendance.TimesheetResponse{}, err
	}

	resp := attendance.TimesheetResponse{
		EmployeeID:   employee.ID,
		EmployeeName: employee.Name(),
		Month:        req.Month,
		Schedule:     sched.Info(),
		Days:         make([]attendance.TimesheetDay, 0, len(result.Days)),
		Summary:      Aggregate(result.Summaries()),
		Diagnostics:  result.Diagnostics,
	}
	resp.Diagnostics.Add(batch.Diagnostics())

	for _, d := range result.Days {
		resp.Days = append(resp.Days, attendance.TimesheetDay{
			Date:              d.Summary.Date.Format(dateLayout),
			Weekday:           d.Summary.Date.Weekday().String(),
			FirstIn:           d.Summary.FirstIn,
			LastOut:           d.Summary.LastOut,
			WorkedMinutes:     d.Summary.WorkedMinutes,
			OvertimeMinutes:   d.Summary.OvertimeMinutes,
			LateMinutes:       d.Summary.LateMinutes,
			EarlyLeaveMinutes: d.Summary.EarlyLeaveMinutes,
			Status:            d.Summary.Status,
			InProgress:        d.Summary.InProgress,
		})
	}

	return resp, nil
}

// ListEvents implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListEvents(ctx context.Context, req attendance.EventListRequest) (attendance.EventListResponse, error) {
	t, batch, err := s.loadRange(ctx, req.RangeRequest)
	if err != nil {
		return attendance.EventListResponse{}, err
	}

	employeeID := strings.TrimSpace(req.EmployeeID)
	events := make([]attendance.CheckEvent, 0, len(batch.Events))
	for _, ev := range batch.Events {
		if employeeID != "" && ev.EmployeeID != employeeID {
			continue
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	result, err := NewEngine(t.registry).SummarizeDays(events, s.now())
	if err != nil {
		return attendance.EventListResponse{}, err
	}

	employees := employeeIndex(batch.Employees)
	resp := attendance.EventListResponse{
		Events:      make([]attendance.EventView, 0, len(events)),
		Total:       len(events),
		Diagnostics: result.Diagnostics,
	}
	resp.Diagnostics.Add(batch.Diagnostics())

	for _, ev := range events {
		resp.Events = append(resp.Events, attendance.EventView{
			ID:           ev.ID,
			EmployeeID:   ev.EmployeeID,
			EmployeeName: lookupEmployee(employees, ev.EmployeeID).Name(),
			Timestamp:    ev.Timestamp,
			TypeCode:     int(ev.TypeCode),
			Type:         ev.TypeCode.String(),
			Class:        ev.TypeCode.Class(),
			Device:       ev.DeviceLabel,
		})
	}

	return resp, nil
}

// ListEmployees implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListEmployees(ctx context.Context, req attendance.RangeRequest) (attendance.EmployeeListResponse, error) {
	t, batch, err := s.loadRange(ctx, req)
	if err != nil {
		return attendance.EmployeeListResponse{}, err
	}

	resp := attendance.EmployeeListResponse{
		Employees: make([]attendance.EmployeeView, 0, len(batch.Employees)),
		Total:     len(batch.Employees),
	}
	for _, e := range batch.Employees {
		sched, err := t.registry.Resolve(e.ID)
		if err != nil {
			return attendance.EmployeeListResponse{}, err
		}
		resp.Employees = append(resp.Employees, attendance.EmployeeView{
			ID:        e.ID,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Name:      e.Name(),
			Schedule:  sched.Info(),
		})
	}

	return resp, nil
}

// GetDiagnostics implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDiagnostics(ctx context.Context, req attendance.RangeRequest) (attendance.DiagnosticsResponse, error) {
	t, batch, err := s.loadRange(ctx, req)
	if err != nil {
		return attendance.DiagnosticsResponse{}, err
	}

	result, err := NewEngine(t.registry).SummarizeDays(batch.Events, s.now())
	if err != nil {
		return attendance.DiagnosticsResponse{}, err
	}

	resp := attendance.DiagnosticsResponse{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TotalEvents: len(batch.Events),
		CheckTypes:  CheckTypeHistogram(batch.Events),
		Diagnostics: result.Diagnostics,
	}
	resp.Diagnostics.Add(batch.Diagnostics())

	withBreaks := make(map[string]struct{})
	for _, ev := range batch.Events {
		switch ev.TypeCode {
		case attendance.BreakStart:
			resp.BreakStarts++
		case attendance.BreakEnd:
			resp.BreakEnds++
		default:
			continue
		}
		withBreaks[ev.EmployeeID] = struct{}{}
	}
	resp.EmployeesWithBreaks = len(withBreaks)

	return resp, nil
}

// CheckTypeHistogram counts events per punch code, ordered by code.
func CheckTypeHistogram(events []attendance.CheckEvent) []attendance.CheckTypeCount {
	counts := make(map[attendance.CheckType]int)
	for _, ev := range events {
		counts[ev.TypeCode]++
	}

	out := make([]attendance.CheckTypeCount, 0, len(counts))
	for code, n := range counts {
		out = append(out, attendance.CheckTypeCount{
			Code:  int(code),
			Type:  code.String(),
			Class: code.Class(),
			Count: n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// loadRange validates a range request and fetches its events for the
// authenticated tenant.
func (s *AttendanceServiceImpl) loadRange(ctx context.Context, req attendance.RangeRequest) (tenant, attendance.EventBatch, error) {
	if err := req.Validate(); err != nil {
		return tenant{}, attendance.EventBatch{}, err
	}

	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return tenant{}, attendance.EventBatch{}, err
	}

	t, err := s.loadTenant(ctx, userID)
	if err != nil {
		return tenant{}, attendance.EventBatch{}, err
	}
	first, last, err := t.parseRange(req)
	if err != nil {
		return tenant{}, attendance.EventBatch{}, err
	}

	batch, err := s.fetch(ctx, t, first, last)
	if err != nil {
		return tenant{}, attendance.EventBatch{}, err
	}
	return t, batch, nil
}
