package apperr

import (
	"runtime"
	"strconv"
	"strings"
)

// Code is the stable machine-readable identifier of a taxonomy variant.
type Code string

const (
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeAuthentication Code = "AUTHENTICATION_ERROR"
	CodeAuthorization  Code = "AUTHORIZATION_ERROR"
	CodeNotFound       Code = "NOT_FOUND"
	CodeConflict       Code = "CONFLICT"
	CodeDatabase       Code = "DATABASE_ERROR"
	CodeNetwork        Code = "NETWORK_ERROR"
	CodeUnknown        Code = "UNKNOWN_ERROR"
)

// Default messages for variants usually built without one.
const (
	DefaultAuthenticationMessage = "Authentication required"
	DefaultAuthorizationMessage  = "Insufficient permissions"
	DefaultNetworkMessage        = "Network error occurred"
	DefaultUnknownMessage        = "An unexpected error occurred"
)

// Variant describes one fixed row of the taxonomy.
type Variant struct {
	Name          string
	Code          Code
	StatusCode    int
	IsOperational bool
}

var variants = map[Code]Variant{
	CodeValidation:     {Name: "ValidationError", Code: CodeValidation, StatusCode: 400, IsOperational: true},
	CodeAuthentication: {Name: "AuthenticationError", Code: CodeAuthentication, StatusCode: 401, IsOperational: true},
	CodeAuthorization:  {Name: "AuthorizationError", Code: CodeAuthorization, StatusCode: 403, IsOperational: true},
	CodeNotFound:       {Name: "NotFoundError", Code: CodeNotFound, StatusCode: 404, IsOperational: true},
	CodeConflict:       {Name: "ConflictError", Code: CodeConflict, StatusCode: 409, IsOperational: true},
	CodeDatabase:       {Name: "DatabaseError", Code: CodeDatabase, StatusCode: 500, IsOperational: false},
	CodeNetwork:        {Name: "NetworkError", Code: CodeNetwork, StatusCode: 503, IsOperational: false},
	CodeUnknown:        {Name: "AppError", Code: CodeUnknown, StatusCode: 500, IsOperational: false},
}

// Variants returns every row of the taxonomy.
func Variants() []Variant {
	out := make([]Variant, 0, len(variants))
	for _, c := range []Code{
		CodeValidation, CodeAuthentication, CodeAuthorization, CodeNotFound,
		CodeConflict, CodeDatabase, CodeNetwork, CodeUnknown,
	} {
		out = append(out, variants[c])
	}
	return out
}

// Lookup returns the taxonomy row for a code.
func Lookup(code Code) (Variant, bool) {
	v, ok := variants[code]
	return v, ok
}

// Error is the canonical application error. Values are immutable once built;
// status and operational flag are derived from the code and never stored.
type Error struct {
	code    Code
	message string
	field   string
	cause   error
	stack   []uintptr
}

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrValidation     = &Error{code: CodeValidation}
	ErrAuthentication = &Error{code: CodeAuthentication}
	ErrAuthorization  = &Error{code: CodeAuthorization}
	ErrNotFound       = &Error{code: CodeNotFound}
	ErrConflict       = &Error{code: CodeConflict}
	ErrDatabase       = &Error{code: CodeDatabase}
	ErrNetwork        = &Error{code: CodeNetwork}
	ErrUnknown        = &Error{code: CodeUnknown}
)

func newError(code Code, message string, cause error) *Error {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	return &Error{
		code:    code,
		message: message,
		cause:   cause,
		stack:   pcs[:n],
	}
}

// NewValidation builds a validation error. field may be empty.
func NewValidation(message, field string) *Error {
	e := newError(CodeValidation, message, nil)
	e.field = field
	return e
}

// NewAuthentication builds an authentication error, falling back to the default message.
func NewAuthentication(message string) *Error {
	if message == "" {
		message = DefaultAuthenticationMessage
	}
	return newError(CodeAuthentication, message, nil)
}

// NewAuthorization builds an authorization error, falling back to the default message.
func NewAuthorization(message string) *Error {
	if message == "" {
		message = DefaultAuthorizationMessage
	}
	return newError(CodeAuthorization, message, nil)
}

// NewNotFound reports that the named resource does not exist.
func NewNotFound(resource string) *Error {
	if resource == "" {
		resource = "Resource"
	}
	return newError(CodeNotFound, resource+" not found", nil)
}

func NewConflict(message string) *Error {
	return newError(CodeConflict, message, nil)
}

// NewDatabase wraps a storage failure. original is kept as the cause.
func NewDatabase(message string, original error) *Error {
	return newError(CodeDatabase, message, original)
}

// NewNetwork builds a network error, falling back to the default message.
func NewNetwork(message string) *Error {
	if message == "" {
		message = DefaultNetworkMessage
	}
	return newError(CodeNetwork, message, nil)
}

// NewUnknown builds the generic non-operational error.
func NewUnknown(message string, cause error) *Error {
	if message == "" {
		message = DefaultUnknownMessage
	}
	return newError(CodeUnknown, message, cause)
}

// WithCause returns a copy of e carrying cause. e is left untouched.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.cause = cause
	return &c
}

func (e *Error) Error() string { return e.message }

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.code == e.code
}

func (e *Error) Code() Code      { return e.code }
func (e *Error) Message() string { return e.message }
func (e *Error) Field() string   { return e.field }

// StatusCode returns the HTTP-style status of the variant.
func (e *Error) StatusCode() int { return variants[e.code].StatusCode }

// IsOperational reports whether the error is an expected domain condition.
func (e *Error) IsOperational() bool { return variants[e.code].IsOperational }

// Name is the variant's type name as it appears in reports.
func (e *Error) Name() string { return variants[e.code].Name }

// OriginalError is the wrapped cause of a database error; nil for other variants.
func (e *Error) OriginalError() error {
	if e.code != CodeDatabase {
		return nil
	}
	return e.cause
}

// Retryable reports whether a resilient caller may try again.
// Operational client errors are final.
func (e *Error) Retryable() bool {
	return !(e.IsOperational() && e.StatusCode() < 500)
}

// Stack renders the construction call stack, one "function file:line" per line.
func (e *Error) Stack() string {
	if len(e.stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		f, more := frames.Next()
		b.WriteString(f.Function)
		b.WriteString("\n\t")
		b.WriteString(f.File)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(f.Line))
		b.WriteByte('\n')
		if !more {
			break
		}
	}
	return b.String()
}
