package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vontade-empenho/ponto-backend/internal/domain/schedule"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/database"
)

type scheduleRepositoryImpl struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepositoryImpl{db: db}
}

// ListByUser implements schedule.ScheduleRepository.
func (r *scheduleRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]schedule.Schedule, string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, start_time, end_time, late_tolerance_minutes, early_out_tolerance_minutes,
			   overtime_threshold_minutes, auto_break_enabled, auto_break_start, auto_break_end,
			   auto_break_minutes, timezone, is_default
		FROM schedules
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var (
		schedules []schedule.Schedule
		defaultID string
	)
	for rows.Next() {
		var (
			s                    schedule.Schedule
			start, end           string
			breakStart, breakEnd string
			isDefault            bool
		)
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&start,
			&end,
			&s.LateToleranceMinutes,
			&s.EarlyOutToleranceMinutes,
			&s.OvertimeThresholdMinutes,
			&s.AutoBreak.Enabled,
			&breakStart,
			&breakEnd,
			&s.AutoBreak.DurationMinutes,
			&s.Timezone,
			&isDefault,
		); err != nil {
			return nil, "", fmt.Errorf("failed to scan schedule: %w", err)
		}

		if s.Start, err = schedule.ParseClockTime(start); err != nil {
			return nil, "", fmt.Errorf("schedule %q start: %w", s.ID, err)
		}
		if s.End, err = schedule.ParseClockTime(end); err != nil {
			return nil, "", fmt.Errorf("schedule %q end: %w", s.ID, err)
		}
		if breakStart != "" && breakEnd != "" {
			s.AutoBreak.Window.Start, _ = schedule.ParseClockTime(breakStart)
			s.AutoBreak.Window.End, _ = schedule.ParseClockTime(breakEnd)
		}
		if isDefault {
			defaultID = s.ID
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to iterate schedules: %w", err)
	}

	return schedules, defaultID, nil
}

// Upsert implements schedule.ScheduleRepository. Marking a schedule as
// default clears the flag on the tenant's other schedules; call it inside
// a transaction.
func (r *scheduleRepositoryImpl) Upsert(ctx context.Context, userID string, s schedule.Schedule, isDefault bool) error {
	q := GetQuerier(ctx, r.db)

	if isDefault {
		if _, err := q.Exec(ctx,
			`UPDATE schedules SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND id <> $2 AND is_default`,
			userID, s.ID,
		); err != nil {
			return fmt.Errorf("failed to clear default schedule: %w", err)
		}
	}

	var breakStart, breakEnd string
	if s.AutoBreak.Window.End.Minutes() > s.AutoBreak.Window.Start.Minutes() {
		breakStart = s.AutoBreak.Window.Start.String()
		breakEnd = s.AutoBreak.Window.End.String()
	}

	query := `
		INSERT INTO schedules (
			user_id, id, name, start_time, end_time, late_tolerance_minutes, early_out_tolerance_minutes,
			overtime_threshold_minutes, auto_break_enabled, auto_break_start, auto_break_end,
			auto_break_minutes, timezone, is_default
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id, id) DO UPDATE
		SET name = EXCLUDED.name,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			late_tolerance_minutes = EXCLUDED.late_tolerance_minutes,
			early_out_tolerance_minutes = EXCLUDED.early_out_tolerance_minutes,
			overtime_threshold_minutes = EXCLUDED.overtime_threshold_minutes,
			auto_break_enabled = EXCLUDED.auto_break_enabled,
			auto_break_start = EXCLUDED.auto_break_start,
			auto_break_end = EXCLUDED.auto_break_end,
			auto_break_minutes = EXCLUDED.auto_break_minutes,
			timezone = EXCLUDED.timezone,
			is_default = EXCLUDED.is_default OR schedules.is_default,
			updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query,
		userID,
		s.ID,
		s.Name,
		s.Start.String(),
		s.End.String(),
		s.LateToleranceMinutes,
		s.EarlyOutToleranceMinutes,
		s.OvertimeThresholdMinutes,
		s.AutoBreak.Enabled,
		breakStart,
		breakEnd,
		s.AutoBreak.DurationMinutes,
		s.Timezone,
		isDefault,
	); err != nil {
		return fmt.Errorf("failed to upsert schedule: %w", err)
	}
	return nil
}

// Delete implements schedule.ScheduleRepository.
func (r *scheduleRepositoryImpl) Delete(ctx context.Context, userID, scheduleID string) error {
	q := GetQuerier(ctx, r.db)

	var isDefault bool
	err := q.QueryRow(ctx, `SELECT is_default FROM schedules WHERE user_id = $1 AND id = $2`, userID, scheduleID).Scan(&isDefault)
	if errors.Is(err, pgx.ErrNoRows) {
		return schedule.ErrScheduleNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}
	if isDefault {
		return schedule.ErrDefaultScheduleInUse
	}

	if _, err := q.Exec(ctx, `DELETE FROM schedules WHERE user_id = $1 AND id = $2`, userID, scheduleID); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return nil
}

// CountAssignments implements schedule.ScheduleRepository.
func (r *scheduleRepositoryImpl) CountAssignments(ctx context.Context, userID, scheduleID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM employee_schedules WHERE user_id = $1 AND schedule_id = $2`,
		userID, scheduleID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return n, nil
}
