// Package stopwatch is a manual start/stop timer.
package stopwatch

import (
	"errors"
	"sync"
	"time"

	"jordanella.com/tile-clicker-go/internal/logging"
)

// ErrNotRunning is returned by Stop on an idle stopwatch
var ErrNotRunning = errors.New("stopwatch is not running")

// State is the stopwatch state
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Stopwatch measures one interval at a time
type Stopwatch struct {
	mu      sync.Mutex
	state   State
	started time.Time
	elapsed time.Duration // last stopped measurement
	now     func() time.Time
	logger  *logging.Logger
}

// New creates an idle stopwatch
func New(logger *logging.Logger) *Stopwatch {
	return &Stopwatch{now: time.Now, logger: logger}
}

// Start begins a measurement. Starting a running stopwatch restarts it; the
// measurement in progress is dropped and returned with restarted set.
func (s *Stopwatch) Start() (discarded time.Duration, restarted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.state == Running {
		discarded = now.Sub(s.started)
		restarted = true
		if s.logger != nil {
			s.logger.WarnWithContext("Stopwatch restarted while running, previous measurement dropped", map[string]interface{}{
				"discarded": discarded,
			})
		}
	}

	s.state = Running
	s.started = now
	s.elapsed = 0
	return discarded, restarted
}

// Stop ends the measurement and returns its duration
func (s *Stopwatch) Stop() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return s.elapsed, ErrNotRunning
	}
	s.elapsed = s.now().Sub(s.started)
	s.state = Idle
	return s.elapsed, nil
}

// Reset returns to idle and clears the last measurement
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Idle
	s.started = time.Time{}
	s.elapsed = 0
}

// Elapsed returns the running time, or the last measurement when idle
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return s.now().Sub(s.started)
	}
	return s.elapsed
}

// State returns the current state
func (s *Stopwatch) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Lap returns the running time without stopping
func (s *Stopwatch) Lap() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return 0, ErrNotRunning
	}
	return s.now().Sub(s.started), nil
}
