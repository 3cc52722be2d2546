package http

import (
	"net/http"

	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
	"github.com/vontade-empenho/ponto-backend/internal/handler/http/response"
)

type AttendanceHandler interface {
	Dashboard(w http.ResponseWriter, r *http.Request)
	DailyReport(w http.ResponseWriter, r *http.Request)
	Timesheet(w http.ResponseWriter, r *http.Request)
	ListEvents(w http.ResponseWriter, r *http.Request)
	ListEmployees(w http.ResponseWriter, r *http.Request)
	Diagnostics(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

func rangeFromQuery(r *http.Request) attendance.RangeRequest {
	return attendance.RangeRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
}

// Dashboard implements AttendanceHandler.
func (h *attendanceHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	req := attendance.DashboardRequest{Date: r.URL.Query().Get("date")}

	result, err := h.attendanceService.GetDashboard(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DailyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) DailyReport(w http.ResponseWriter, r *http.Request) {
	req := attendance.DailyReportRequest{
		RangeRequest: rangeFromQuery(r),
		Search:       r.URL.Query().Get("search"),
	}

	result, err := h.attendanceService.GetDailyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Timesheet implements AttendanceHandler.
func (h *attendanceHandlerImpl) Timesheet(w http.ResponseWriter, r *http.Request) {
	req := attendance.TimesheetRequest{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Month:      r.URL.Query().Get("month"),
	}

	result, err := h.attendanceService.GetTimesheet(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListEvents implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListEvents(w http.ResponseWriter, r *http.Request) {
	req := attendance.EventListRequest{
		RangeRequest: rangeFromQuery(r),
		EmployeeID:   r.URL.Query().Get("employee_id"),
	}

	result, err := h.attendanceService.ListEvents(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListEmployees implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListEmployees(r.Context(), rangeFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Diagnostics implements AttendanceHandler.
func (h *attendanceHandlerImpl) Diagnostics(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetDiagnostics(r.Context(), rangeFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
