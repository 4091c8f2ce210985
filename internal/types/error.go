package types

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error types reported in the response envelope
const (
	TypeAuthRequired = "auth.required"
	TypeForbidden    = "auth.forbidden"
	TypeNotFound     = "not_found"
	TypeValidation   = "validation"
	TypeInUse        = "conflict.in_use"
	TypePersistence  = "persistence"
)

// CustomError is an error that carries its HTTP status and response type.
type CustomError struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Type    string              `json:"type"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Err     error               `json:"-"`
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s [type: %s]: %v", e.Code, e.Message, e.Type, e.Err)
	}
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is matches on code and type, so sentinels work with errors.Is
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type
}

var (
	// ErrAuthenticationRequired is returned when no actor is present.
	ErrAuthenticationRequired = &CustomError{
		Code:    http.StatusUnauthorized,
		Message: "Authentication required",
		Type:    TypeAuthRequired,
	}

	// ErrForbidden is returned when an actor is present but not permitted.
	ErrForbidden = &CustomError{
		Code:    http.StatusForbidden,
		Message: "This action is unauthorized.",
		Type:    TypeForbidden,
	}

	// ErrNotFound matches any NotFound error.
	ErrNotFound = &CustomError{Code: http.StatusNotFound, Type: TypeNotFound}

	// ErrValidation matches any validation error.
	ErrValidation = &CustomError{Code: http.StatusUnprocessableEntity, Type: TypeValidation}

	// ErrInUse matches any in-use conflict.
	ErrInUse = &CustomError{Code: http.StatusUnprocessableEntity, Type: TypeInUse}

	// ErrPersistence matches any persistence failure.
	ErrPersistence = &CustomError{Code: http.StatusInternalServerError, Type: TypePersistence}
)

// NotFound reports a missing record of the named kind
func NotFound(kind string) *CustomError {
	return &CustomError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", kind),
		Type:    TypeNotFound,
	}
}

// InUse reports a delete refused because the record is still referenced
func InUse(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnprocessableEntity,
		Message: message,
		Type:    TypeInUse,
	}
}

// Persistence wraps a storage failure
func Persistence(message string, err error) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Type:    TypePersistence,
		Err:     err,
	}
}

// FieldErrors collects validation messages keyed by field path.
type FieldErrors map[string][]string

// Add appends a message for the field
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Has reports whether the field already has a message
func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

// Err returns a validation error, or nil when nothing was collected
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &CustomError{
		Code:    http.StatusUnprocessableEntity,
		Message: f.summary(),
		Type:    TypeValidation,
		Errors:  f,
	}
}

// summary mirrors the first message, with a count of the rest
func (f FieldErrors) summary() string {
	fields := make([]string, 0, len(f))
	total := 0
	for field, msgs := range f {
		fields = append(fields, field)
		total += len(msgs)
	}
	sort.Strings(fields)

	first := f[fields[0]][0]
	if total == 1 {
		return first
	}
	more := total - 1
	suffix := "errors"
	if more == 1 {
		suffix = "error"
	}
	return strings.TrimSpace(fmt.Sprintf("%s (and %d more %s)", first, more, suffix))
}

// NewValidationError reports a single invalid field
func NewValidationError(field, message string) error {
	f := FieldErrors{}
	f.Add(field, message)
	return f.Err()
}

// AsCustomError extracts a CustomError from an error chain
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
