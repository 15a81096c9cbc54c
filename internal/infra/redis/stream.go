package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/drivingschool/internal/core/apperr"
	"github.com/vietddude/drivingschool/internal/core/report"
)

const (
	defaultStream = "error_reports"
	defaultMaxLen = 10000
)

// ReportStream publishes error records to a capped Redis stream.
type ReportStream struct {
	rdb    *redis.Client
	stream string
	maxLen int64
}

// NewReportStream creates a stream sink on client.
func NewReportStream(client *Client, cfg Config) *ReportStream {
	stream := cfg.Stream
	if stream == "" {
		stream = defaultStream
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	return &ReportStream{rdb: client.rdb, stream: stream, maxLen: maxLen}
}

func (s *ReportStream) Name() string { return "redis" }

// Write appends rec to the stream, trimming it approximately to maxLen.
func (s *ReportStream) Write(ctx context.Context, rec report.Record) error {
	err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: recordValues(rec),
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd failed: %w", err)
	}
	return nil
}

// Recent returns the latest records, newest first.
func (s *ReportStream) Recent(ctx context.Context, limit int) ([]report.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	msgs, err := s.rdb.XRevRangeN(ctx, s.stream, "+", "-", int64(limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("xrevrange failed: %w", err)
	}

	records := make([]report.Record, 0, len(msgs))
	for _, m := range msgs {
		rec, err := parseValues(m.Values)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// recordValues flattens a record into stream fields.
func recordValues(rec report.Record) map[string]any {
	values := map[string]any{
		"id":            rec.ID,
		"timestamp":     rec.Timestamp,
		"name":          rec.Name,
		"message":       rec.Message,
		"code":          string(rec.Code),
		"statusCode":    strconv.Itoa(rec.StatusCode),
		"isOperational": strconv.FormatBool(rec.IsOperational),
	}
	if rec.Stack != "" {
		values["stack"] = rec.Stack
	}
	if len(rec.Context) > 0 {
		values["context"] = string(rec.ContextJSON())
	}
	return values
}

// parseValues is the inverse of recordValues.
func parseValues(values map[string]any) (report.Record, error) {
	str := func(k string) string {
		v, _ := values[k].(string)
		return v
	}

	status, err := strconv.Atoi(str("statusCode"))
	if err != nil {
		return report.Record{}, fmt.Errorf("invalid statusCode: %w", err)
	}
	operational, err := strconv.ParseBool(str("isOperational"))
	if err != nil {
		return report.Record{}, fmt.Errorf("invalid isOperational: %w", err)
	}

	rec := report.Record{
		ID:            str("id"),
		Timestamp:     str("timestamp"),
		Name:          str("name"),
		Message:       str("message"),
		Stack:         str("stack"),
		Code:          apperr.Code(str("code")),
		StatusCode:    status,
		IsOperational: operational,
	}
	if raw := str("context"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Context); err != nil {
			return report.Record{}, fmt.Errorf("invalid context: %w", err)
		}
	}
	return rec, nil
}
