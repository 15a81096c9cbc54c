package classify

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// BackendError is the payload shape raised by the Postgres-backed API layer.
type BackendError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e BackendError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// FromDriver extracts a BackendError from an error chain. API payloads
// wrapped with %w are found as well as pgx and lib/pq errors; sql.ErrNoRows
// maps to the no-rows code.
func FromDriver(err error) (BackendError, bool) {
	if err == nil {
		return BackendError{}, false
	}

	var be BackendError
	if errors.As(err, &be) {
		return be, true
	}
	var bePtr *BackendError
	if errors.As(err, &bePtr) && bePtr != nil {
		return *bePtr, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil {
		return BackendError{
			Message: pgErr.Message,
			Code:    pgErr.Code,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
		}, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr != nil {
		return BackendError{
			Message: pqErr.Message,
			Code:    string(pqErr.Code),
			Details: pqErr.Detail,
			Hint:    pqErr.Hint,
		}, true
	}

	if errors.Is(err, sql.ErrNoRows) {
		return BackendError{Message: err.Error(), Code: CodeNoRows}, true
	}

	return BackendError{}, false
}

// backendFromMap recognises decoded JSON objects with a string "message".
func backendFromMap(m map[string]any) (BackendError, bool) {
	msg, ok := m["message"].(string)
	if !ok {
		return BackendError{}, false
	}
	be := BackendError{Message: msg}
	be.Code, _ = m["code"].(string)
	be.Details, _ = m["details"].(string)
	be.Hint, _ = m["hint"].(string)
	return be, true
}
