package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"clubdash/internal/adapters/http/middleware"
	"clubdash/internal/adapters/lock"
	"clubdash/internal/application/orchestrators"
	"clubdash/internal/application/projections"
	"clubdash/internal/domain/attendance"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/leaderboard"
	"clubdash/internal/domain/schedule"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
var generateID = func() string {
	return uuid.New().String()
}

// validate checks request DTOs. Field names in messages are the JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// Filters compare HH:MM lexically, so only zero-padded times are accepted.
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return schedule.IsClockTime(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "request_id", w.Header().Get(middleware.HeaderRequestID), "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeAndValidate reads a JSON body into req and validates it. On failure
// the response has been written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := strictDecode(r, req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return validRequest(w, req)
}

// validRequest runs the validator on req, writing a 400 with per-field
// messages when it fails.
func validRequest(w http.ResponseWriter, req any) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		internalError(w, err)
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Fields: fields})
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return fmt.Sprintf("must match %s", fe.Param())
	case "hhmm":
		return "must be a zero-padded HH:MM time"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	}
	return "is invalid"
}

// writeDomainError maps application errors to status codes. Anything
// unrecognised, including capacity invariant violations, is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var rangeErr *schedule.InvalidRangeError
	switch {
	case errors.Is(err, orchestrators.ErrNoMember):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, orchestrators.ErrClassNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, projections.ErrMemberNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orchestrators.ErrNotScheduled):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, orchestrators.ErrInvalidDate),
		errors.Is(err, projections.ErrRangeTooLong),
		errors.Is(err, leaderboard.ErrInvalidMetric),
		errors.Is(err, attendance.ErrInvalidStatus),
		errors.As(err, &rangeErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lock.ErrLockTimeout):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "class is busy, try again")
	default:
		internalError(w, err)
	}
}

// callerID returns the member ID from the identity headers.
func callerID(r *http.Request) string {
	id, _ := middleware.MemberFromContext(r.Context())
	return id.MemberID
}

// isStaff reports whether the caller is a coach or admin.
func isStaff(r *http.Request) bool {
	id, ok := middleware.MemberFromContext(r.Context())
	return ok && id.IsStaff()
}

// today returns the local calendar date.
func today() time.Time {
	now := timeNow()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// handleHealthz handles GET /healthz
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if healthPing != nil {
		if err := healthPing(r.Context()); err != nil {
			slog.Error("health_check_failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
