// Package scheduler runs a refresh function on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultTick is how often the scheduler checks whether a refresh is due.
const DefaultTick = time.Second

var (
	// ErrAlreadyRunning is returned by Start on a running scheduler.
	ErrAlreadyRunning = errors.New("scheduler already running")
	// ErrStopped is returned by Start once the scheduler has been stopped.
	ErrStopped = errors.New("scheduler stopped")
)

// State is the lifecycle state of a Scheduler.
type State int

// Scheduler states
const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// RefreshFunc does one refresh and reports whether anything changed.
type RefreshFunc func(ctx context.Context) (bool, error)

// Config holds scheduler settings
type Config struct {
	Interval time.Duration
	Tick     time.Duration
}

// Scheduler calls its refresh function whenever Interval has elapsed since the
// previous refresh, and on demand through Trigger.
type Scheduler struct {
	config  Config
	refresh RefreshFunc

	mu      sync.Mutex
	state   State
	elapsed time.Duration

	stop     chan struct{}
	done     chan struct{}
	trigger  chan struct{}
	changes  chan struct{}
	stopOnce sync.Once

	// ran is set after the first refresh. Only the loop goroutine touches it.
	ran bool

	// ticks replaces the real ticker in tests.
	ticks <-chan time.Time
}

// New creates an idle scheduler.
func New(config Config, refresh RefreshFunc) *Scheduler {
	if config.Tick <= 0 {
		config.Tick = DefaultTick
	}
	if config.Interval <= 0 {
		config.Interval = config.Tick
	}

	return &Scheduler{
		config:  config,
		refresh: refresh,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		trigger: make(chan struct{}, 1),
		changes: make(chan struct{}, 1),
	}
}

// Start begins the refresh loop in a new goroutine. The first refresh runs
// right away. A stopped scheduler cannot be started again.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Running:
		return ErrAlreadyRunning
	case Stopped:
		return ErrStopped
	}

	s.state = Running
	s.elapsed = s.config.Interval

	ticks := s.ticks
	var ticker *time.Ticker
	if ticks == nil {
		ticker = time.NewTicker(s.config.Tick)
		ticks = ticker.C
	}

	go s.loop(ctx, ticks, ticker)
	return nil
}

// Stop ends the loop at its next tick boundary. A refresh in progress is allowed
// to finish. Stop may be called any number of times from any goroutine.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	wasIdle := s.state == Idle
	s.state = Stopped
	s.mu.Unlock()

	s.stopOnce.Do(func() {
		close(s.stop)
		if wasIdle {
			close(s.done)
		}
	})
}

// Wait blocks until the loop has exited.
func (s *Scheduler) Wait() {
	<-s.done
}

// Trigger asks for a refresh now without moving the periodic schedule.
// Requests made while one is already pending are merged.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Changes delivers a notification after the first refresh and after each later
// refresh that changed something. Notifications that are not consumed in time are merged.
func (s *Scheduler) Changes() <-chan struct{} {
	return s.changes
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed returns the time counted since the last periodic refresh.
func (s *Scheduler) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Scheduler) loop(ctx context.Context, ticks <-chan time.Time, ticker *time.Ticker) {
	defer close(s.done)
	defer func() {
		s.mu.Lock()
		s.state = Stopped
		s.mu.Unlock()
	}()
	if ticker != nil {
		defer ticker.Stop()
	}

	slog.Debug("Scheduler started", "interval", s.config.Interval, "tick", s.config.Tick)
	s.advance(ctx, 0)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("Scheduler context done", "error", ctx.Err())
			return
		case <-s.stop:
			slog.Debug("Scheduler stopped")
			return
		case <-s.trigger:
			if s.running() {
				s.run(ctx, "trigger")
			}
		case <-ticks:
			s.advance(ctx, s.config.Tick)
		}
	}
}

// advance adds d to the elapsed time and refreshes when the interval is reached.
// Elapsed time restarts from zero after every periodic refresh, failed or not.
func (s *Scheduler) advance(ctx context.Context, d time.Duration) {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return
	}
	s.elapsed += d
	due := s.elapsed >= s.config.Interval
	s.mu.Unlock()

	if !due {
		return
	}

	s.run(ctx, "interval")

	s.mu.Lock()
	s.elapsed = 0
	s.mu.Unlock()
}

func (s *Scheduler) run(ctx context.Context, reason string) {
	changed, err := s.refresh(ctx)
	first := !s.ran
	s.ran = true
	if err != nil {
		slog.Warn("Refresh failed", "reason", reason, "error", err)
	} else {
		slog.Debug("Refresh done", "reason", reason, "changed", changed)
	}

	// Readers waiting for the first result hear about it even when nothing changed.
	if changed || first {
		select {
		case s.changes <- struct{}{}:
		default:
		}
	}
}

func (s *Scheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Running
}
