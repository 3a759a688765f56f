package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/PablitoTheChicken/ForReal-Server/internal/logging"
	"github.com/PablitoTheChicken/ForReal-Server/internal/metrics"
)

const defaultInterval = time.Minute

// Sweepable is a cache that can drop its expired entries.
type Sweepable interface {
	Name() string
	Sweep() int
}

// Sweeper evicts expired entries from every registered cache on an interval.
type Sweeper struct {
	caches   []Sweepable
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent activity of the sweep loop.
type Status struct {
	Running     bool
	Sweeps      int
	LastSweep   time.Time
	LastRemoved int
}

// IsReady reports whether the loop is running.
func (s Status) IsReady() bool {
	return s.Running
}

// New constructs a Sweeper over caches.
func New(caches []Sweepable, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sweeper{
		caches:   caches,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start runs the loop until the context is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.startMu.Lock()
	if s.started {
		s.startMu.Unlock()
		return
	}
	s.started = true
	s.startMu.Unlock()

	s.ticker = time.NewTicker(s.interval)
	s.setRunning(true)

	go func() {
		logging.Info(s.logger, "cache sweeper started", slog.Int64(logging.FieldDurationMS, s.interval.Milliseconds()))
		for {
			select {
			case <-ctx.Done():
				s.halt()
				return
			case <-s.done:
				s.halt()
				return
			case <-s.ticker.C:
				s.SweepOnce()
			}
		}
	}()
}

// Stop halts the loop.
func (s *Sweeper) Stop(ctx context.Context) error {
	_ = ctx
	s.stopOnce.Do(func() {
		close(s.done)
		s.stopTicker()
	})
	return nil
}

// SweepOnce sweeps every cache and returns the number of evicted entries.
func (s *Sweeper) SweepOnce() int {
	start := s.now()
	removed := 0
	for _, c := range s.caches {
		n := c.Sweep()
		if n > 0 {
			logging.Info(s.logger, "cache entries expired",
				slog.String(logging.FieldCache, c.Name()),
				slog.Int(logging.FieldCount, n),
			)
		}
		removed += n
	}
	elapsed := s.now().Sub(start)
	s.metrics.RecordSweep(elapsed)
	logging.Debug(s.logger, "cache sweep complete",
		slog.Int(logging.FieldCount, removed),
		slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
	)

	s.statusMu.Lock()
	s.status.Sweeps++
	s.status.LastSweep = start
	s.status.LastRemoved = removed
	s.statusMu.Unlock()
	return removed
}

// Status returns a snapshot of the loop state.
func (s *Sweeper) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Sweeper) halt() {
	s.stopTicker()
	s.setRunning(false)
	logging.Info(s.logger, "cache sweeper stopped")
}

func (s *Sweeper) setRunning(running bool) {
	s.statusMu.Lock()
	s.status.Running = running
	s.statusMu.Unlock()
}

func (s *Sweeper) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
}
