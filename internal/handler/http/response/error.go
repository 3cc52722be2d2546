package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
	"github.com/vontade-empenho/ponto-backend/internal/domain/auth"
	"github.com/vontade-empenho/ponto-backend/internal/domain/schedule"
	"github.com/vontade-empenho/ponto-backend/internal/domain/user"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/jwt"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Auth domain errors
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrStreamTokenOnAPI):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, jwt.ErrMissingUserClaim):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrMissingCredentials):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrProviderUnavailable):
		slog.Error("attendance provider error", "error", err)
		BadGateway(w, "Attendance provider is unavailable")
	case errors.Is(err, attendance.ErrInvalidDateRange), errors.Is(err, attendance.ErrDateRangeTooLong):
		BadRequest(w, err.Error(), nil)

	// Schedule domain errors
	case errors.Is(err, schedule.ErrScheduleNotFound):
		NotFound(w, "Schedule not found")
	case errors.Is(err, schedule.ErrAssignmentNotFound):
		NotFound(w, "Schedule assignment not found")
	case errors.Is(err, schedule.ErrScheduleInUse), errors.Is(err, schedule.ErrDefaultScheduleInUse):
		Conflict(w, err.Error())
	case errors.Is(err, schedule.ErrInvalidRegistry):
		slog.Error("schedule registry misconfigured", "error", err)
		InternalServerError(w, "Schedule configuration is invalid")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
