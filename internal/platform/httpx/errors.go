package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Messages surfaced to clients for each taxonomy entry.
const (
	MsgUnauthorized       = "Unauthorized"
	MsgInsufficientPerms  = "Unauthorized: Insufficient permissions"
	MsgInternal           = "Internal server error"
	MsgTooManyRequests    = "Too many requests"
	MsgNotFound           = "Not found"
	MsgDuplicate          = "Already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgPayloadTooLarge    = "Payload too large"
	msgValidationFallback = "Invalid request"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// RespondError maps domain errors to HTTP responses. Unknown errors become 500
// without leaking details.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, ErrDuplicate):
		Error(w, http.StatusConflict, MsgDuplicate)
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, ErrConflict):
		Error(w, http.StatusConflict, validationMessage(err))
	case errors.Is(err, ErrForbidden):
		Error(w, http.StatusForbidden, MsgInsufficientPerms)
	case errors.Is(err, ErrUnauthorized):
		Error(w, http.StatusUnauthorized, MsgUnauthorized)
	default:
		Error(w, http.StatusInternalServerError, MsgInternal)
	}
}

// Fail logs unexpected errors under msg and writes the mapped response.
func Fail(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	if !IsClientError(err) && logger != nil {
		logger.Error(msg, slog.Any("error", err))
	}
	RespondError(w, err)
}

// IsClientError reports whether err maps to a 4xx response.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrForbidden) || errors.Is(err, ErrUnauthorized)
}

// MapPgError converts constraint violations into domain sentinels.
func MapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgForeignKeyViolation:
			return errors.Join(ErrValidation, errors.New("referenced record does not exist"))
		}
	}
	return err
}

// ValidationError converts validator errors into an ErrValidation carrying a
// human readable message for the first failing field.
func ValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Join(ErrValidation, err)
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	var msg string
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "email":
		msg = field + " must be a valid email"
	case "min":
		msg = field + " must be at least " + fe.Param() + " characters"
	case "max":
		msg = field + " must be at most " + fe.Param() + " characters"
	case "oneof":
		msg = field + " must be one of: " + fe.Param()
	case "gt", "gte":
		msg = field + " is out of range"
	default:
		msg = field + " is invalid"
	}
	return errors.Join(ErrValidation, errors.New(msg))
}

func validationMessage(err error) string {
	// errors.Join renders members on separate lines; the detail is the last one.
	lines := strings.Split(err.Error(), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		for _, sentinel := range []error{ErrValidation, ErrConflict} {
			if idx := strings.LastIndex(line, sentinel.Error()+": "); idx >= 0 {
				line = line[idx+len(sentinel.Error())+2:]
			}
			if line == sentinel.Error() || strings.HasSuffix(line, ": "+sentinel.Error()) {
				line = ""
			}
		}
		if line != "" {
			return line
		}
	}
	return msgValidationFallback
}
