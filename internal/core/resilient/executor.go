// Package resilient runs operations with bounded retries and linear backoff.
package resilient

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vietddude/drivingschool/internal/core/apperr"
	"github.com/vietddude/drivingschool/internal/core/classify"
	"github.com/vietddude/drivingschool/internal/metrics"
)

const (
	// ExhaustedMessage is used when retries run out without a recorded failure.
	ExhaustedMessage = "Network request failed after multiple retries"
	// CancelledMessage is used when the context ends before any attempt ran.
	CancelledMessage = "Network request cancelled"
	// DefaultCallMessage is used by Call when no fallback message is given.
	DefaultCallMessage = "API call failed"
)

// Config defines retry behavior.
type Config struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
}

// Reporter receives terminal failures.
type Reporter interface {
	Report(err *apperr.Error, fields map[string]any)
}

// Classifier maps a raw failure onto the taxonomy.
type Classifier func(raw any) *apperr.Error

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Executor holds the shared collaborators of resilient calls. It carries no
// per-call state and is safe for concurrent use.
type Executor struct {
	cfg      Config
	classify Classifier
	reporter Reporter
	logger   *slog.Logger
	sleep    SleepFunc
}

// Option configures an Executor.
type Option func(*Executor)

func WithReporter(r Reporter) Option { return func(e *Executor) { e.reporter = r } }

func WithClassifier(c Classifier) Option { return func(e *Executor) { e.classify = c } }

func WithLogger(l *slog.Logger) Option { return func(e *Executor) { e.logger = l } }

// WithSleep replaces the backoff sleeper, mainly for tests.
func WithSleep(s SleepFunc) Option { return func(e *Executor) { e.sleep = s } }

// New creates an executor. Zero config values fall back to DefaultConfig.
func New(cfg Config, opts ...Option) *Executor {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig.MaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultConfig.BaseDelay
	}
	e := &Executor{
		cfg:      cfg,
		classify: classify.Classify,
		logger:   slog.Default(),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CallOption overrides settings for a single call.
type CallOption func(*callSettings)

type callSettings struct {
	maxRetries int
	baseDelay  time.Duration
	operation  string
	fields     map[string]any
}

// WithMaxRetries sets the total number of attempts. Values below 1 mean 1.
func WithMaxRetries(n int) CallOption { return func(s *callSettings) { s.maxRetries = n } }

// WithBaseDelay sets the backoff unit; the delay after attempt k is k*d.
func WithBaseDelay(d time.Duration) CallOption { return func(s *callSettings) { s.baseDelay = d } }

// WithOperation names the operation in logs and reports.
func WithOperation(name string) CallOption { return func(s *callSettings) { s.operation = name } }

// WithFields attaches context fields to the terminal report.
func WithFields(f map[string]any) CallOption { return func(s *callSettings) { s.fields = f } }

// retryContext is the transient state of one Execute call.
type retryContext struct {
	attempt     int
	made        int
	maxAttempts int
	baseDelay   time.Duration
	lastErr     *apperr.Error
}

// outcome is the result of one attempt.
type outcome[T any] struct {
	value T
	err   *apperr.Error
}

// Execute invokes op until it succeeds, fails with a non-retryable error, or
// the attempts run out. Exhausted and cancelled calls fail with a network error.
func Execute[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error), opts ...CallOption) (T, error) {
	var zero T
	s := e.settings(opts)
	rc := &retryContext{
		maxAttempts: max(s.maxRetries, 1),
		baseDelay:   s.baseDelay,
	}

	for rc.attempt = 1; rc.attempt <= rc.maxAttempts; rc.attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, e.abort(rc, s, err)
		}

		out := runAttempt(ctx, e, op)
		rc.made++
		if out.err == nil {
			metrics.ExecutorAttempts.WithLabelValues("success").Inc()
			return out.value, nil
		}
		rc.lastErr = out.err

		if !out.err.Retryable() {
			metrics.ExecutorAttempts.WithLabelValues("fatal").Inc()
			e.report(out.err, s, rc)
			return zero, out.err
		}
		metrics.ExecutorAttempts.WithLabelValues("retryable").Inc()

		if rc.attempt == rc.maxAttempts {
			break
		}

		delay := rc.baseDelay * time.Duration(rc.attempt)
		e.logger.Debug("Retrying operation",
			"operation", s.operation,
			"attempt", rc.attempt,
			"max_attempts", rc.maxAttempts,
			"delay", delay,
			"code", out.err.Code(),
			"error", out.err.Message(),
		)
		metrics.ExecutorBackoff.Observe(delay.Seconds())

		if err := e.sleep(ctx, delay); err != nil {
			return zero, e.abort(rc, s, err)
		}
	}

	final := exhausted(rc)
	e.report(final, s, rc)
	return zero, final
}

// Do is Execute for operations without a result value.
func Do(ctx context.Context, e *Executor, op func(ctx context.Context) error, opts ...CallOption) error {
	_, err := Execute(ctx, e, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts...)
	return err
}

// Call invokes op once. Taxonomy errors pass through unchanged; anything else
// is reported and returned as an unknown error carrying fallbackMessage.
func Call[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error), fallbackMessage string) (T, error) {
	var zero T
	v, err := op(ctx)
	if err == nil {
		return v, nil
	}

	var ae *apperr.Error
	if errors.As(err, &ae) && ae != nil {
		return zero, ae
	}

	if fallbackMessage == "" {
		fallbackMessage = DefaultCallMessage
	}
	wrapped := apperr.NewUnknown(fallbackMessage, err)
	if e.reporter != nil {
		e.reporter.Report(wrapped, map[string]any{"cause": err.Error()})
	}
	return zero, wrapped
}

func runAttempt[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error)) outcome[T] {
	v, err := op(ctx)
	if err == nil {
		return outcome[T]{value: v}
	}
	return outcome[T]{value: v, err: e.classify(err)}
}

func (e *Executor) settings(opts []CallOption) callSettings {
	s := callSettings{
		maxRetries: e.cfg.MaxRetries,
		baseDelay:  e.cfg.BaseDelay,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// abort stops the loop on cancellation without using the remaining attempts.
func (e *Executor) abort(rc *retryContext, s callSettings, cause error) *apperr.Error {
	err := apperr.NewNetwork(CancelledMessage)
	if rc.lastErr != nil {
		err = apperr.NewNetwork(rc.lastErr.Message())
	}
	err = err.WithCause(cause)
	e.report(err, s, rc)
	return err
}

func (e *Executor) report(err *apperr.Error, s callSettings, rc *retryContext) {
	if e.reporter == nil {
		return
	}
	fields := make(map[string]any, len(s.fields)+3)
	for k, v := range s.fields {
		fields[k] = v
	}
	if s.operation != "" {
		fields["operation"] = s.operation
	}
	fields["attempts"] = rc.made
	fields["maxRetries"] = rc.maxAttempts
	e.reporter.Report(err, fields)
}

// exhausted builds the canonical network error for a call that ran out of attempts.
func exhausted(rc *retryContext) *apperr.Error {
	if rc.lastErr == nil {
		return apperr.NewNetwork(ExhaustedMessage)
	}
	return apperr.NewNetwork(rc.lastErr.Message()).WithCause(rc.lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
