package schedule

import "errors"

var (
	// Registry errors
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrInvalidRegistry  = errors.New("invalid schedule registry")

	ErrInvalidClockTime     = errors.New("invalid clock time, use HH:MM")
	ErrDefaultScheduleInUse = errors.New("the default schedule cannot be deleted")
	ErrScheduleInUse        = errors.New("schedule still has employees assigned")
	ErrAssignmentNotFound   = errors.New("employee schedule assignment not found")
)
