package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/drivingschool/internal/core/apperr"
)

// Record is the structured form of a reported error.
type Record struct {
	ID            string         `json:"id"`
	Timestamp     string         `json:"timestamp"`
	Name          string         `json:"name"`
	Message       string         `json:"message"`
	Stack         string         `json:"stack,omitempty"`
	Code          apperr.Code    `json:"code"`
	StatusCode    int            `json:"statusCode"`
	IsOperational bool           `json:"isOperational"`
	Context       map[string]any `json:"context,omitempty"`
}

// NewRecord builds a Record for err at time now. fields is copied.
func NewRecord(err *apperr.Error, fields map[string]any, now time.Time) Record {
	var ctx map[string]any
	if len(fields) > 0 {
		ctx = make(map[string]any, len(fields))
		for k, v := range fields {
			ctx[k] = v
		}
	}
	if orig := err.OriginalError(); orig != nil {
		if ctx == nil {
			ctx = make(map[string]any, 1)
		}
		if _, ok := ctx["originalError"]; !ok {
			ctx["originalError"] = orig.Error()
		}
	}

	return Record{
		ID:            uuid.NewString(),
		Timestamp:     now.UTC().Format(time.RFC3339Nano),
		Name:          err.Name(),
		Message:       err.Message(),
		Stack:         err.Stack(),
		Code:          err.Code(),
		StatusCode:    err.StatusCode(),
		IsOperational: err.IsOperational(),
		Context:       ctx,
	}
}

// ContextJSON encodes the record context as a JSON object. Values that JSON
// cannot represent are stored as their fmt.Sprint text so the record survives.
func (r Record) ContextJSON() []byte {
	if len(r.Context) == 0 {
		return []byte("{}")
	}
	if data, err := json.Marshal(r.Context); err == nil {
		return data
	}

	safe := make(map[string]any, len(r.Context))
	for k, v := range r.Context {
		if _, err := json.Marshal(v); err != nil {
			safe[k] = fmt.Sprint(v)
			continue
		}
		safe[k] = v
	}
	data, err := json.Marshal(safe)
	if err != nil {
		return []byte("{}")
	}
	return data
}
