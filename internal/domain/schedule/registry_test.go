package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_InvalidConfiguration(t *testing.T) {
	office := Schedule{ID: "OFFICE", Start: ClockTime{Hour: 9}, End: ClockTime{Hour: 17}}
	night := Schedule{ID: "NIGHT", Start: ClockTime{Hour: 22}, End: ClockTime{Hour: 23}, Timezone: "America/Sao_Paulo"}

	tests := []struct {
		name        string
		schedules   []Schedule
		assignments map[string]string
		defaultID   string
		wantMsg     string
	}{
		{
			name:      "schedule without id",
			schedules: []Schedule{office, {Name: "anonymous"}},
			defaultID: "OFFICE",
			wantMsg:   "schedule without id",
		},
		{
			name:      "duplicate schedule id",
			schedules: []Schedule{office, night, office},
			defaultID: "OFFICE",
			wantMsg:   `duplicate schedule "OFFICE"`,
		},
		{
			name:      "timezone does not load",
			schedules: []Schedule{office, {ID: "MARS", Timezone: "Mars/Olympus_Mons"}},
			defaultID: "OFFICE",
			wantMsg:   `schedule "MARS" timezone "Mars/Olympus_Mons"`,
		},
		{
			name:      "unknown default",
			schedules: []Schedule{office, night},
			defaultID: "WEEKEND",
			wantMsg:   `default schedule "WEEKEND" is not defined`,
		},
		{
			name:      "empty default",
			schedules: []Schedule{office},
			defaultID: "",
			wantMsg:   `default schedule "" is not defined`,
		},
		{
			name:        "assignment to unknown schedule",
			schedules:   []Schedule{office, night},
			assignments: map[string]string{"7": "NIGHT", "9": "SPLIT"},
			defaultID:   "OFFICE",
			wantMsg:     `employee "9" assigned to unknown schedule "SPLIT"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			r, err := NewRegistry(tt.schedules, tt.assignments, tt.defaultID)

			// Assert
			require.ErrorIs(t, err, ErrInvalidRegistry)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Nil(t, r)
		})
	}
}

func TestNewRegistry_ResolveIsTotal(t *testing.T) {
	office := Schedule{ID: "OFFICE", Start: ClockTime{Hour: 9}, End: ClockTime{Hour: 17}}
	night := Schedule{ID: "NIGHT", Start: ClockTime{Hour: 22}, End: ClockTime{Hour: 23}, Timezone: "America/Sao_Paulo"}

	r, err := NewRegistry([]Schedule{office, night}, map[string]string{"7": "NIGHT"}, "OFFICE")
	require.NoError(t, err)

	tests := []struct {
		employeeID string
		want       string
	}{
		{"7", "NIGHT"},
		{"8", "OFFICE"},
		{"", "OFFICE"},
	}
	for _, tt := range tests {
		s, err := r.Resolve(tt.employeeID)
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.ID, "employee %q", tt.employeeID)
	}

	s, err := r.Resolve("8")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, s.Timezone)
	assert.Equal(t, DefaultTimezone, s.Location().String())

	s, err = r.Resolve("7")
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", s.Location().String())
}

func TestRegistry_ResolveWithoutConstruction(t *testing.T) {
	var nilRegistry *Registry
	_, err := nilRegistry.Resolve("3")
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = nilRegistry.Default()
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	var zero Registry
	_, err = zero.Resolve("3")
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = zero.Default()
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, "VE", r.DefaultID())
	ve2, err := r.Resolve("3")
	require.NoError(t, err)
	assert.Equal(t, "VE2", ve2.ID)
	ve, err := r.Resolve("1")
	require.NoError(t, err)
	assert.Equal(t, "VE", ve.ID)
	assert.Equal(t, []Assignment{{EmployeeID: "3", ScheduleID: "VE2"}}, r.Assignments())
}
