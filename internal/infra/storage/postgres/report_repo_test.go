package postgres

import (
	"testing"
	"time"

	"github.com/vietddude/drivingschool/internal/core/apperr"
	"github.com/vietddude/drivingschool/internal/core/report"
)

func TestEncodeDecodeRecord(t *testing.T) {
	now := time.Date(2024, 5, 2, 9, 30, 0, 123, time.UTC)
	rec := report.NewRecord(apperr.NewConflict("This resource already exists"), map[string]any{"operation": "createStudent"}, now)

	ts, ctxJSON, err := encodeRecord(rec)
	if err != nil {
		t.Fatalf("encodeRecord failed: %v", err)
	}
	if !ts.Equal(now) {
		t.Errorf("timestamp = %v, want %v", ts, now)
	}

	got := decodeRow(reportRow{
		ID:            rec.ID,
		ReportedAt:    ts,
		Name:          rec.Name,
		Message:       rec.Message,
		Code:          string(rec.Code),
		StatusCode:    rec.StatusCode,
		IsOperational: rec.IsOperational,
		Context:       ctxJSON,
	})
	if got.Timestamp != rec.Timestamp || got.Code != apperr.CodeConflict || got.StatusCode != 409 {
		t.Errorf("decoded record = %+v", got)
	}
	if got.Context["operation"] != "createStudent" {
		t.Errorf("context = %v", got.Context)
	}
}

func TestEncodeRecordRejectsBadTimestamp(t *testing.T) {
	if _, _, err := encodeRecord(report.Record{Timestamp: "yesterday"}); err == nil {
		t.Error("expected error for invalid timestamp")
	}
}

func TestEncodeRecordEmptyContext(t *testing.T) {
	rec := report.NewRecord(apperr.NewNetwork(""), nil, time.Now())
	_, ctxJSON, err := encodeRecord(rec)
	if err != nil {
		t.Fatal(err)
	}
	if string(ctxJSON) != "{}" {
		t.Errorf("context = %s, want {}", ctxJSON)
	}
}

func TestEncodeRecordKeepsUnencodableContext(t *testing.T) {
	rec := report.NewRecord(apperr.NewUnknown("boom", nil), map[string]any{
		"operation": "createStudent",
		"done":      make(chan struct{}),
	}, time.Now())

	ts, ctxJSON, err := encodeRecord(rec)
	if err != nil {
		t.Fatalf("encodeRecord failed: %v", err)
	}
	got := decodeRow(reportRow{ID: rec.ID, ReportedAt: ts, Code: string(rec.Code), Context: ctxJSON})
	if got.Context["operation"] != "createStudent" {
		t.Errorf("operation = %v, want createStudent", got.Context["operation"])
	}
	if s, ok := got.Context["done"].(string); !ok || s == "" {
		t.Errorf("done = %#v, want its text form", got.Context["done"])
	}
}

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	if _, err := NewDB(t.Context(), Config{Driver: "mysql", URL: "x"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
