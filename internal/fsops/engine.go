// Package fsops implements the sandboxed file operations.
//
// Every operation first runs each path argument through the policy and then
// acts only on the canonical path the policy returned. Failures come back as
// *Error, whose message is the text a caller should see.
package fsops

import (
	"context"
	"log/slog"
	"time"

	"github.com/EdibleTuber/void-mcp-server/internal/logging"
	"github.com/EdibleTuber/void-mcp-server/internal/policy"
)

const (
	// DefaultSearchPattern is used when a search names no file pattern.
	DefaultSearchPattern = "*.py"
	// MaxSearchResults caps the matches a search returns.
	MaxSearchResults = 50
)

// Event describes one finished operation.
type Event struct {
	Op       Op
	Path     string
	Target   string
	Err      error
	Duration time.Duration
}

// Recorder receives an Event after every operation.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Engine runs file operations confined by a policy. It is safe for
// concurrent use.
type Engine struct {
	policy   *policy.Policy
	locks    pathLocks
	recorder Recorder
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder sends every operation outcome to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithLogger sets the logger used for operation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine bound to p.
func New(p *policy.Policy, opts ...Option) *Engine {
	e := &Engine{policy: p}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.With("fsops")
	}
	return e
}

// Policy returns the policy the engine enforces.
func (e *Engine) Policy() *policy.Policy {
	return e.policy
}

func (e *Engine) observe(ctx context.Context, op Op, path, target string, start time.Time, err error) {
	dur := time.Since(start)
	if err != nil {
		e.logger.Debug("operation failed", "op", op, "path", path, "kind", KindOf(err), "error", err)
	} else {
		e.logger.Debug("operation", "op", op, "path", path, "duration", dur)
	}
	if e.recorder != nil {
		e.recorder.Record(ctx, Event{Op: op, Path: path, Target: target, Err: err, Duration: dur})
	}
}

// check evaluates path and converts a denial into an *Error.
func (e *Engine) check(op Op, path string, side Side) (string, error) {
	d := e.policy.Evaluate(path)
	if !d.Allowed {
		return "", denied(op, path, side, d.Reason)
	}
	return d.Path, nil
}
