package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vietddude/drivingschool/internal/core/apperr"
	"github.com/vietddude/drivingschool/internal/core/report"
)

// ErrorReportRepo implements storage.ReportRepository using PostgreSQL.
type ErrorReportRepo struct {
	db *DB
}

// NewErrorReportRepo creates a new PostgreSQL error report repository.
func NewErrorReportRepo(db *DB) *ErrorReportRepo {
	return &ErrorReportRepo{db: db}
}

func (r *ErrorReportRepo) Name() string { return "postgres" }

// Write persists one record.
func (r *ErrorReportRepo) Write(ctx context.Context, rec report.Record) error {
	query := `
		INSERT INTO error_reports (id, reported_at, name, message, stack, code, status_code, is_operational, context)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	reportedAt, ctxJSON, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(
		ctx,
		query,
		rec.ID,
		reportedAt,
		rec.Name,
		rec.Message,
		rec.Stack,
		string(rec.Code),
		rec.StatusCode,
		rec.IsOperational,
		ctxJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert error report: %w", err)
	}
	return nil
}

type reportRow struct {
	ID            string    `db:"id"`
	ReportedAt    time.Time `db:"reported_at"`
	Name          string    `db:"name"`
	Message       string    `db:"message"`
	Stack         string    `db:"stack"`
	Code          string    `db:"code"`
	StatusCode    int       `db:"status_code"`
	IsOperational bool      `db:"is_operational"`
	Context       []byte    `db:"context"`
}

// Recent returns the latest records, newest first.
func (r *ErrorReportRepo) Recent(ctx context.Context, limit int) ([]report.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, reported_at, name, message, stack, code, status_code, is_operational, context
		FROM error_reports
		ORDER BY reported_at DESC
		LIMIT $1
	`

	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list error reports: %w", err)
	}

	records := make([]report.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, decodeRow(row))
	}
	return records, nil
}

// encodeRecord converts the record timestamp and context into column values.
func encodeRecord(rec report.Record) (time.Time, []byte, error) {
	ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("invalid record timestamp %q: %w", rec.Timestamp, err)
	}

	return ts, rec.ContextJSON(), nil
}

func decodeRow(row reportRow) report.Record {
	rec := report.Record{
		ID:            row.ID,
		Timestamp:     row.ReportedAt.UTC().Format(time.RFC3339Nano),
		Name:          row.Name,
		Message:       row.Message,
		Stack:         row.Stack,
		Code:          apperr.Code(row.Code),
		StatusCode:    row.StatusCode,
		IsOperational: row.IsOperational,
	}
	if len(row.Context) > 0 {
		var m map[string]any
		if err := json.Unmarshal(row.Context, &m); err == nil && len(m) > 0 {
			rec.Context = m
		}
	}
	return rec
}
