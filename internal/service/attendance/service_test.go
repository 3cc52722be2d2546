package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
	"github.com/vontade-empenho/ponto-backend/internal/domain/schedule"
	"github.com/vontade-empenho/ponto-backend/internal/domain/user"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/jwt"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/validator"
)

const testUserID = "user-1"

type fakeUserRepo struct {
	user user.User
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.GetByID(ctx, r.user.ID)
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if id != r.user.ID {
		return user.User{}, user.ErrUserNotFound
	}
	return r.user, nil
}

func (r *fakeUserRepo) Upsert(ctx context.Context, u user.User) (user.User, error) {
	r.user = u
	return u, nil
}

func (r *fakeUserRepo) UpdateCredentials(ctx context.Context, userID, apiKey, apiSecret string) error {
	r.user.APIKey, r.user.APISecret = apiKey, apiSecret
	return nil
}

type fakeScheduleService struct {
	schedule.ScheduleService
	registry *schedule.Registry
}

func (f fakeScheduleService) Registry(ctx context.Context, userID string) (*schedule.Registry, error) {
	return f.registry, nil
}

type fakeSource struct {
	batch attendance.EventBatch
	err   error

	creds      attendance.Credentials
	begin, end time.Time
}

func (f *fakeSource) FetchEvents(ctx context.Context, creds attendance.Credentials, begin, end time.Time) (attendance.EventBatch, error) {
	f.creds, f.begin, f.end = creds, begin, end
	if f.err != nil {
		return attendance.EventBatch{}, f.err
	}
	return f.batch, nil
}

type serviceFixture struct {
	svc    *AttendanceServiceImpl
	users  *fakeUserRepo
	source *fakeSource
	ctx    context.Context
}

func newServiceFixture(t *testing.T, events []attendance.CheckEvent) serviceFixture {
	t.Helper()

	users := &fakeUserRepo{user: user.User{ID: testUserID, APIKey: "key", APISecret: "secret"}}
	source := &fakeSource{batch: attendance.EventBatch{
		Events: events,
		Employees: []attendance.Employee{
			{ID: "1", FirstName: "Ana", LastName: "Silva"},
			{ID: "3", FirstName: "Bruno"},
			{ID: "5", FirstName: "Carla", LastName: "Dias"},
		},
		Rejected:   2,
		Duplicates: 1,
		OutOfRange: 3,
	}}

	svc := NewAttendanceService(users, fakeScheduleService{registry: schedule.DefaultRegistry()}, source).(*AttendanceServiceImpl)
	svc.now = func() time.Time { return at(wednesday, 11, 0) }

	jwtService := jwt.NewJWTService("test-secret", "1h")
	raw, _, err := jwtService.GenerateAccessToken(testUserID, "admin@example.com")
	require.NoError(t, err)
	token, err := jwtService.JWTAuth().Decode(raw)
	require.NoError(t, err)

	return serviceFixture{
		svc:    svc,
		users:  users,
		source: source,
		ctx:    jwtauth.NewContext(context.Background(), token, nil),
	}
}

func todayEvents() []attendance.CheckEvent {
	return []attendance.CheckEvent{
		punch("1", at(wednesday, 9, 0), attendance.CheckIn),
		punch("3", at(wednesday, 8, 55), attendance.CheckIn),
		punch("3", at(wednesday, 9, 30), attendance.CheckType(7)),
		punch("3", at(wednesday, 10, 30), attendance.CheckOut),
		punch("5", at(wednesday, 8, 40), attendance.CheckIn),
	}
}

func TestAttendanceService_GetDashboard(t *testing.T) {
	f := newServiceFixture(t, todayEvents())

	// Act
	resp, err := f.svc.GetDashboard(f.ctx, attendance.DashboardRequest{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "2025-03-12", resp.Date)
	assert.Equal(t, attendance.Credentials{APIKey: "key", APISecret: "secret"}, f.source.creds)
	assert.True(t, f.source.begin.Equal(wednesday))
	assert.True(t, f.source.end.Equal(wednesday.AddDate(0, 0, 1)))

	require.Len(t, resp.Employees, 3)
	ana, bruno, carla := resp.Employees[0], resp.Employees[1], resp.Employees[2]

	assert.Equal(t, "Ana Silva", ana.EmployeeName)
	assert.Equal(t, attendance.LiveLate, ana.Status)
	assert.Equal(t, 120, ana.WorkedMinutes)
	assert.Equal(t, "08:30", ana.ScheduleStart)

	assert.Equal(t, "Bruno", bruno.EmployeeName)
	assert.Equal(t, attendance.LiveLeft, bruno.Status)
	assert.Equal(t, attendance.StatusNormal, bruno.DayStatus)
	assert.Equal(t, 95, bruno.WorkedMinutes)
	assert.True(t, bruno.FirstCheck.Equal(at(wednesday, 8, 55)))
	assert.True(t, bruno.LastCheck.Equal(at(wednesday, 10, 30)))

	assert.Equal(t, "Carla Dias", carla.EmployeeName)
	assert.Equal(t, attendance.LivePresent, carla.Status)

	assert.Equal(t, attendance.DashboardKPIs{
		Total:                3,
		Present:              2,
		Late:                 1,
		Left:                 1,
		AverageWorkedMinutes: 118,
		PunctualityRate:      67,
	}, resp.KPIs)
	assert.Equal(t, attendance.Diagnostics{RejectedEvents: 2, DuplicateEvents: 1, OutOfRangeEvents: 3, UnknownCodes: 1}, resp.Diagnostics)
}

func TestAttendanceService_GetDashboard_LateCountsEmployeesWhoLeft(t *testing.T) {
	f := newServiceFixture(t, []attendance.CheckEvent{
		punch("1", at(wednesday, 9, 0), attendance.CheckIn),
		punch("1", at(wednesday, 10, 0), attendance.CheckOut),
		punch("5", at(wednesday, 8, 40), attendance.CheckIn),
	})

	// Act
	resp, err := f.svc.GetDashboard(f.ctx, attendance.DashboardRequest{})

	// Assert
	require.NoError(t, err)
	require.Len(t, resp.Employees, 2)
	ana := resp.Employees[0]
	assert.Equal(t, attendance.LiveLeft, ana.Status)
	assert.Equal(t, attendance.StatusLate, ana.DayStatus)

	assert.Equal(t, 1, resp.KPIs.Late)
	assert.Equal(t, 1, resp.KPIs.Present)
	assert.Equal(t, 1, resp.KPIs.Left)
	assert.Equal(t, resp.KPIs.Total, resp.KPIs.Present+resp.KPIs.Left)
	assert.Equal(t, 50, resp.KPIs.PunctualityRate)
}

func TestAttendanceService_GetDashboard_Empty(t *testing.T) {
	f := newServiceFixture(t, nil)

	resp, err := f.svc.GetDashboard(f.ctx, attendance.DashboardRequest{Date: "2025-03-10"})

	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", resp.Date)
	assert.Empty(t, resp.Employees)
	assert.Equal(t, 100, resp.KPIs.PunctualityRate)
	assert.Zero(t, resp.KPIs.AverageWorkedMinutes)
}

func TestAttendanceService_RefreshDashboard(t *testing.T) {
	f := newServiceFixture(t, todayEvents())

	resp, err := f.svc.RefreshDashboard(context.Background(), testUserID)

	require.NoError(t, err)
	assert.Equal(t, 3, resp.KPIs.Total)

	_, err = f.svc.RefreshDashboard(context.Background(), "someone-else")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestAttendanceService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f serviceFixture)
		want    error
	}{
		{
			name:    "missing credentials",
			prepare: func(f serviceFixture) { f.users.user.APISecret = "" },
			want:    attendance.ErrMissingCredentials,
		},
		{
			name: "provider down",
			prepare: func(f serviceFixture) {
				f.source.err = fmt.Errorf("%w: connection refused", attendance.ErrProviderUnavailable)
			},
			want: attendance.ErrProviderUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t, todayEvents())
			tt.prepare(f)

			_, err := f.svc.GetDashboard(f.ctx, attendance.DashboardRequest{})

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAttendanceService_GetDailyReport(t *testing.T) {
	monday := wednesday.AddDate(0, 0, -2)
	events := append(todayEvents(),
		punch("1", at(monday, 8, 30), attendance.CheckIn),
		punch("1", at(monday, 17, 30), attendance.CheckOut),
	)
	f := newServiceFixture(t, events)

	// Act
	resp, err := f.svc.GetDailyReport(f.ctx, attendance.DailyReportRequest{
		RangeRequest: attendance.RangeRequest{StartDate: "2025-03-10", EndDate: "2025-03-12"},
		Search:       "ana",
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, f.source.begin.Equal(monday))
	assert.True(t, f.source.end.Equal(wednesday.AddDate(0, 0, 1)))

	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "2025-03-10", resp.Rows[0].Date)
	assert.Equal(t, 540, resp.Rows[0].WorkedMinutes)
	assert.Equal(t, attendance.StatusNormal, resp.Rows[0].Status)
	assert.Equal(t, "Horário VE", resp.Rows[0].ScheduleName)
	assert.Equal(t, "2025-03-12", resp.Rows[1].Date)
	assert.True(t, resp.Rows[1].InProgress)
	assert.Equal(t, attendance.StatusLate, resp.Rows[1].Status)

	assert.Equal(t, 2, resp.Summary.PresentDays)
	assert.Equal(t, 660, resp.Summary.TotalWorkedMinutes)
	assert.Equal(t, 1, resp.Summary.LateDays)
}

func TestAttendanceService_GetDailyReport_InvalidRange(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.svc.GetDailyReport(f.ctx, attendance.DailyReportRequest{
		RangeRequest: attendance.RangeRequest{StartDate: "2025-03-12", EndDate: "2025-03-01"},
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "end_date")
	assert.True(t, f.source.begin.IsZero())
}

func TestAttendanceService_GetTimesheet(t *testing.T) {
	f := newServiceFixture(t, todayEvents())

	// Act
	resp, err := f.svc.GetTimesheet(f.ctx, attendance.TimesheetRequest{EmployeeID: "3", Month: "2025-03"})

	// Assert
	require.NoError(t, err)
	assert.True(t, f.source.begin.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, lisbon)))
	assert.True(t, f.source.end.Equal(time.Date(2025, time.April, 1, 0, 0, 0, 0, lisbon)))

	assert.Equal(t, "Bruno", resp.EmployeeName)
	assert.Equal(t, "VE2", resp.Schedule.ScheduleID)
	require.Len(t, resp.Days, 12)
	assert.Equal(t, "Saturday", resp.Days[0].Weekday)
	assert.Equal(t, attendance.StatusWeekend, resp.Days[0].Status)

	today := resp.Days[11]
	assert.Equal(t, "2025-03-12", today.Date)
	assert.Equal(t, 95, today.WorkedMinutes)
	assert.Equal(t, attendance.StatusNormal, today.Status)

	assert.Equal(t, 8, resp.Summary.WorkDays)
	assert.Equal(t, 1, resp.Summary.PresentDays)
	assert.Equal(t, 1, resp.Diagnostics.UnknownCodes)
}

func TestAttendanceService_GetTimesheet_UnknownEmployee(t *testing.T) {
	f := newServiceFixture(t, todayEvents())

	_, err := f.svc.GetTimesheet(f.ctx, attendance.TimesheetRequest{EmployeeID: "99", Month: "2025-03"})

	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
}

func TestAttendanceService_ListEvents(t *testing.T) {
	f := newServiceFixture(t, todayEvents())

	resp, err := f.svc.ListEvents(f.ctx, attendance.EventListRequest{
		RangeRequest: attendance.RangeRequest{StartDate: "2025-03-12", EndDate: "2025-03-12"},
		EmployeeID:   "3",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Events, 3)
	assert.Equal(t, "check_in", resp.Events[0].Type)
	assert.Equal(t, attendance.ClassEntry, resp.Events[0].Class)
	assert.Equal(t, 7, resp.Events[1].TypeCode)
	assert.Equal(t, attendance.ClassUnknown, resp.Events[1].Class)
	assert.Equal(t, "unknown", resp.Events[1].Type)
	assert.Equal(t, attendance.ClassExit, resp.Events[2].Class)
	assert.Equal(t, "Bruno", resp.Events[2].EmployeeName)
	assert.Equal(t, attendance.Diagnostics{RejectedEvents: 2, DuplicateEvents: 1, OutOfRangeEvents: 3, UnknownCodes: 1}, resp.Diagnostics)
}

func TestAttendanceService_ListEmployees(t *testing.T) {
	f := newServiceFixture(t, todayEvents())

	resp, err := f.svc.ListEmployees(f.ctx, attendance.RangeRequest{StartDate: "2025-03-12", EndDate: "2025-03-12"})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Employees, 3)
	assert.Equal(t, "Ana Silva", resp.Employees[0].Name)
	assert.Equal(t, "VE", resp.Employees[0].Schedule.ScheduleID)
	assert.Equal(t, "VE2", resp.Employees[1].Schedule.ScheduleID)
	assert.Equal(t, "Europe/Lisbon", resp.Employees[1].Schedule.Timezone)
}

func TestAttendanceService_GetDiagnostics(t *testing.T) {
	events := append(todayEvents(),
		punch("5", at(wednesday, 10, 0), attendance.BreakStart),
		punch("5", at(wednesday, 10, 15), attendance.BreakEnd),
		punch("1", at(wednesday, 9, 5), attendance.CheckOut),
		punch("1", at(wednesday, 9, 1), attendance.CheckOut),
	)
	f := newServiceFixture(t, events)

	resp, err := f.svc.GetDiagnostics(f.ctx, attendance.RangeRequest{StartDate: "2025-03-12", EndDate: "2025-03-12"})

	require.NoError(t, err)
	assert.Equal(t, 9, resp.TotalEvents)
	assert.Equal(t, []attendance.CheckTypeCount{
		{Code: 0, Type: "check_in", Class: attendance.ClassEntry, Count: 3},
		{Code: 1, Type: "check_out", Class: attendance.ClassExit, Count: 3},
		{Code: 2, Type: "break_start", Class: attendance.ClassExit, Count: 1},
		{Code: 3, Type: "break_end", Class: attendance.ClassEntry, Count: 1},
		{Code: 7, Type: "unknown", Class: attendance.ClassUnknown, Count: 1},
	}, resp.CheckTypes)
	assert.Equal(t, 1, resp.BreakStarts)
	assert.Equal(t, 1, resp.BreakEnds)
	assert.Equal(t, 1, resp.EmployeesWithBreaks)
	assert.Equal(t, attendance.Diagnostics{RejectedEvents: 2, DuplicateEvents: 1, OutOfRangeEvents: 3, UnmatchedExits: 1, UnknownCodes: 1}, resp.Diagnostics)
}
