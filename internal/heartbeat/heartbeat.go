// Package heartbeat periodically logs that the server is alive.
package heartbeat

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/EdibleTuber/void-mcp-server/internal/logging"
)

// DefaultInterval matches the cadence operators of the server expect.
const DefaultInterval = 10 * time.Second

// Heartbeat runs a single cron job that logs a liveness line.
type Heartbeat struct {
	scheduler *cronlib.Cron
	started   time.Time
	beats     atomic.Int64
	logger    *slog.Logger
	onBeat    func(n int64)
}

// Option configures a Heartbeat.
type Option func(*Heartbeat)

// WithLogger sets the logger beats are written to.
func WithLogger(l *slog.Logger) Option {
	return func(h *Heartbeat) { h.logger = l }
}

// OnBeat registers a callback run after every beat.
func OnBeat(fn func(n int64)) Option {
	return func(h *Heartbeat) { h.onBeat = fn }
}

// New schedules a beat every interval. Cron resolution is one second, so
// shorter intervals are rejected.
func New(interval time.Duration, opts ...Option) (*Heartbeat, error) {
	if interval < time.Second {
		return nil, fmt.Errorf("heartbeat interval %s is below one second", interval)
	}
	h := &Heartbeat{
		scheduler: cronlib.New(cronlib.WithSeconds()),
		logger:    logging.With("heartbeat"),
	}
	for _, opt := range opts {
		opt(h)
	}
	if _, err := h.scheduler.AddFunc("@every "+interval.String(), h.beat); err != nil {
		return nil, fmt.Errorf("schedule heartbeat: %w", err)
	}
	return h, nil
}

// Start begins beating in the background.
func (h *Heartbeat) Start() {
	h.started = time.Now()
	h.scheduler.Start()
}

// Stop halts the schedule and waits for a running beat to finish.
func (h *Heartbeat) Stop() {
	<-h.scheduler.Stop().Done()
}

// Beats returns how many beats have fired.
func (h *Heartbeat) Beats() int64 {
	return h.beats.Load()
}

func (h *Heartbeat) beat() {
	n := h.beats.Add(1)
	h.logger.Info("Server alive", "beat", n, "uptime", time.Since(h.started).Round(time.Second))
	if h.onBeat != nil {
		h.onBeat(n)
	}
}
