package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity is the toast variant.
type Severity string

const (
	Success Severity = "success"
	Info    Severity = "info"
	Warning Severity = "warning"
	Danger  Severity = "danger"
)

// DefaultAutoDismiss applies when Options.AutoDismiss is zero.
const DefaultAutoDismiss = 2 * time.Second

// Persistent disables auto-dismiss without making the toast sticky.
const Persistent time.Duration = -1

// Options tune how long a toast stays on screen. Sticky wins over
// AutoDismiss.
type Options struct {
	AutoDismiss time.Duration
	Sticky      bool
}

// Toast is a rendered notification request.
type Toast struct {
	ID       string
	Severity Severity
	Message  string
	// AutoDismiss is zero when the toast stays until dismissed.
	AutoDismiss time.Duration
	Sticky      bool
	CreatedAt   time.Time
}

// Sink displays toasts. Implementations must be safe for concurrent use.
type Sink interface {
	Notify(ctx context.Context, t Toast)
}

// Center normalizes options and forwards toasts to a Sink.
type Center struct {
	sink        Sink
	autoDismiss time.Duration
	now         func() time.Time
}

// NewCenter returns a Center writing to sink. A nil sink discards toasts; a
// non-positive autoDismiss selects DefaultAutoDismiss.
func NewCenter(sink Sink, autoDismiss time.Duration) *Center {
	if sink == nil {
		sink = NoOpSink{}
	}
	if autoDismiss <= 0 {
		autoDismiss = DefaultAutoDismiss
	}
	return &Center{sink: sink, autoDismiss: autoDismiss, now: time.Now}
}

// Show builds a toast from opts and hands it to the sink.
func (c *Center) Show(ctx context.Context, sev Severity, msg string, opts Options) Toast {
	t := Toast{
		ID:          uuid.NewString(),
		Severity:    sev,
		Message:     msg,
		AutoDismiss: c.resolve(opts),
		Sticky:      opts.Sticky,
		CreatedAt:   c.now(),
	}
	c.sink.Notify(ctx, t)
	return t
}

func (c *Center) Success(ctx context.Context, msg string, opts ...Options) {
	c.Show(ctx, Success, msg, first(opts))
}

func (c *Center) Info(ctx context.Context, msg string, opts ...Options) {
	c.Show(ctx, Info, msg, first(opts))
}

func (c *Center) Warning(ctx context.Context, msg string, opts ...Options) {
	c.Show(ctx, Warning, msg, first(opts))
}

func (c *Center) Error(ctx context.Context, msg string, opts ...Options) {
	c.Show(ctx, Danger, msg, first(opts))
}

func (c *Center) resolve(opts Options) time.Duration {
	switch {
	case opts.Sticky, opts.AutoDismiss < 0:
		return 0
	case opts.AutoDismiss == 0:
		return c.autoDismiss
	default:
		return opts.AutoDismiss
	}
}

func first(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[0]
}

// NoOpSink drops toasts.
type NoOpSink struct{}

func (NoOpSink) Notify(context.Context, Toast) {}

// Recorder keeps every toast in memory.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(_ context.Context, t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

// Toasts returns a copy of everything recorded so far.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Last returns the most recent toast.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.toasts = nil
	r.mu.Unlock()
}

// LogSink writes toasts as structured log records. Danger maps to error
// level, Warning to warn, the rest to info.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(l *slog.Logger) *LogSink {
	if l == nil {
		l = slog.Default()
	}
	return &LogSink{logger: l}
}

func (s *LogSink) Notify(ctx context.Context, t Toast) {
	level := slog.LevelInfo
	switch t.Severity {
	case Danger:
		level = slog.LevelError
	case Warning:
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, t.Message,
		"toast_id", t.ID,
		"severity", string(t.Severity),
		"sticky", t.Sticky,
		"auto_dismiss", t.AutoDismiss,
	)
}
