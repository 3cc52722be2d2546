package attendance

import "errors"

// Attendance domain errors
var (
	ErrMissingCredentials  = errors.New("tenant has no provider API credentials configured")
	ErrProviderUnavailable = errors.New("attendance provider request failed")
	ErrEmployeeNotFound    = errors.New("no events found for this employee in the requested period")
	ErrInvalidDateRange    = errors.New("end date must not be before start date")
	ErrDateRangeTooLong    = errors.New("date range must not exceed 62 days")
)
