package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vontade-empenho/ponto-backend/internal/domain/schedule"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/database"
)

const foreignKeyViolation = "23503"

type assignmentRepositoryImpl struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) schedule.AssignmentRepository {
	return &assignmentRepositoryImpl{db: db}
}

// ListByUser implements schedule.AssignmentRepository.
func (r *assignmentRepositoryImpl) ListByUser(ctx context.Context, userID string) (map[string]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT employee_id, schedule_id FROM employee_schedules WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	assignments := make(map[string]string)
	for rows.Next() {
		var employeeID, scheduleID string
		if err := rows.Scan(&employeeID, &scheduleID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments[employeeID] = scheduleID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assignments, nil
}

// Assign implements schedule.AssignmentRepository.
func (r *assignmentRepositoryImpl) Assign(ctx context.Context, userID string, a schedule.Assignment) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_schedules (user_id, employee_id, schedule_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, employee_id) DO UPDATE
		SET schedule_id = EXCLUDED.schedule_id, updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query, userID, a.EmployeeID, a.ScheduleID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return schedule.ErrScheduleNotFound
		}
		return fmt.Errorf("failed to assign schedule: %w", err)
	}
	return nil
}

// Unassign implements schedule.AssignmentRepository.
func (r *assignmentRepositoryImpl) Unassign(ctx context.Context, userID, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employee_schedules WHERE user_id = $1 AND employee_id = $2`, userID, employeeID)
	if err != nil {
		return fmt.Errorf("failed to unassign schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrAssignmentNotFound
	}
	return nil
}
