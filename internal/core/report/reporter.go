// Package report formats taxonomy errors into structured records and delivers
// them to the configured sinks without blocking the caller.
package report

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/vietddude/drivingschool/internal/core/apperr"
	"github.com/vietddude/drivingschool/internal/metrics"
)

// Config controls sink routing and buffering.
type Config struct {
	// Debug routes records to the console sink instead of the remote sinks.
	Debug bool `yaml:"debug"`
	// Mirror sends records to both console and remote sinks.
	Mirror bool `yaml:"mirror"`
	// BufferSize is the capacity of the dispatch queue.
	BufferSize int `yaml:"buffer_size"`
	// WriteTimeout bounds a single sink write.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	BufferSize:   256,
	WriteTimeout: 5 * time.Second,
}

// Reporter queues records and fans them out to sinks from a single
// dispatcher goroutine. Report is safe for concurrent use and never blocks.
type Reporter struct {
	cfg   Config
	sinks []Sink
	queue chan Record
	now   func() time.Time

	mu      sync.RWMutex
	closed  bool
	started bool
	done    chan struct{}
}

// New creates a reporter. console may be nil when no developer sink exists.
func New(cfg Config, console Sink, remotes ...Sink) *Reporter {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig.BufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig.WriteTimeout
	}

	var sinks []Sink
	if (cfg.Debug || cfg.Mirror) && console != nil {
		sinks = append(sinks, console)
	}
	if !cfg.Debug || cfg.Mirror {
		for _, s := range remotes {
			if s != nil {
				sinks = append(sinks, s)
			}
		}
	}

	return &Reporter{
		cfg:   cfg,
		sinks: sinks,
		queue: make(chan Record, cfg.BufferSize),
		now:   time.Now,
		done:  make(chan struct{}),
	}
}

// Sinks returns the names of the active sinks in delivery order.
func (r *Reporter) Sinks() []string {
	names := make([]string, len(r.sinks))
	for i, s := range r.sinks {
		names[i] = s.Name()
	}
	return names
}

// Start launches the dispatcher. Sink writes use ctx as their parent.
func (r *Reporter) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true
	go r.dispatch(ctx)
}

// Report records err with optional context fields. It never blocks and never
// panics; records are dropped when the queue is full or the reporter closed.
func (r *Reporter) Report(err *apperr.Error, fields map[string]any) {
	if r == nil || err == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			slog.Debug("Error reporter recovered from panic", "panic", p)
		}
	}()

	rec := NewRecord(err, fields, r.now())

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		metrics.ReportsDropped.WithLabelValues("closed").Inc()
		return
	}

	select {
	case r.queue <- rec:
		metrics.ErrorsReported.WithLabelValues(
			string(rec.Code),
			strconv.FormatBool(rec.IsOperational),
		).Inc()
	default:
		metrics.ReportsDropped.WithLabelValues("queue_full").Inc()
	}
}

// Close stops accepting records and waits for queued ones to be delivered.
func (r *Reporter) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		if r.started {
			<-r.done
		}
		return
	}
	r.closed = true
	close(r.queue)
	started := r.started
	r.mu.Unlock()

	if started {
		<-r.done
	}
}

func (r *Reporter) dispatch(ctx context.Context) {
	defer close(r.done)
	for rec := range r.queue {
		for _, s := range r.sinks {
			r.write(ctx, s, rec)
		}
	}
}

// write delivers one record to one sink, swallowing errors and panics.
func (r *Reporter) write(ctx context.Context, s Sink, rec Record) {
	defer func() {
		if p := recover(); p != nil {
			metrics.SinkFailures.WithLabelValues(s.Name()).Inc()
			slog.Debug("Error sink panicked", "sink", s.Name(), "panic", p)
		}
	}()

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.WriteTimeout)
	defer cancel()

	if err := s.Write(wctx, rec); err != nil {
		metrics.SinkFailures.WithLabelValues(s.Name()).Inc()
		slog.Debug("Error sink write failed", "sink", s.Name(), "error", err)
	}
}
