package attendance

import (
	"context"
)

type AttendanceService interface {
	// GetDashboard returns the live status of every employee seen on a day
	GetDashboard(ctx context.Context, req DashboardRequest) (DashboardResponse, error)

	// RefreshDashboard computes today's dashboard for a tenant outside a request
	RefreshDashboard(ctx context.Context, userID string) (DashboardResponse, error)

	// GetDailyReport returns one row per (date, employee) with events in the range
	GetDailyReport(ctx context.Context, req DailyReportRequest) (DailyReportResponse, error)

	// GetTimesheet returns every calendar day of a month for one employee
	GetTimesheet(ctx context.Context, req TimesheetRequest) (TimesheetResponse, error)

	// ListEvents returns raw events, unknown codes included
	ListEvents(ctx context.Context, req EventListRequest) (EventListResponse, error)

	// ListEmployees returns the employees seen in a range with their schedules
	ListEmployees(ctx context.Context, req RangeRequest) (EmployeeListResponse, error)

	// GetDiagnostics returns the punch-code histogram and anomaly counts
	GetDiagnostics(ctx context.Context, req RangeRequest) (DiagnosticsResponse, error)
}
