package identity

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BreakerState is the circuit breaker state
type BreakerState int

const (
	// BreakerClosed allows all calls
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects all calls until the cooldown elapses
	BreakerOpen
	// BreakerHalfOpen allows a single probe call
	BreakerHalfOpen
)

// String returns the state name
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "CLOSED"
	case BreakerOpen:
		return "OPEN"
	case BreakerHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrCircuitOpen is returned when the breaker rejects a call
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker protects a downstream dependency. It trips open after
// a number of consecutive failures, waits out a cooldown, then lets a
// single probe through. The probe's outcome decides whether the circuit
// closes again or reopens.
type CircuitBreaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration
	logger      *zap.Logger

	mu            sync.Mutex
	state         BreakerState
	failures      int
	openedAt      time.Time
	probeInFlight bool
}

// NewCircuitBreaker creates a breaker for the named dependency
func NewCircuitBreaker(name string, maxFailures int, cooldown time.Duration, logger *zap.Logger) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		name:        name,
		maxFailures: maxFailures,
		cooldown:    cooldown,
		logger:      logger,
		state:       BreakerClosed,
	}
}

// Allow reports whether a call may proceed. When the cooldown of an
// open circuit has elapsed, the first caller is admitted as the
// half-open probe.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if time.Since(b.openedAt) >= b.cooldown {
			b.state = BreakerHalfOpen
			b.probeInFlight = true
			b.logger.Info("circuit breaker half-open, sending probe",
				zap.String("dependency", b.name))
			return true
		}
		return false
	case BreakerHalfOpen:
		// Only one probe at a time
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true
		return true
	default:
		return false
	}
}

// RecordSuccess records a successful call
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != BreakerClosed {
		b.logger.Info("circuit breaker closed",
			zap.String("dependency", b.name))
	}
	b.state = BreakerClosed
	b.failures = 0
	b.probeInFlight = false
}

// RecordFailure records a failed call, tripping the circuit when the
// failure threshold is reached or a half-open probe fails
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerHalfOpen:
		b.trip()
	case BreakerClosed:
		b.failures++
		if b.failures >= b.maxFailures {
			b.trip()
		}
	}
	b.probeInFlight = false
}

// trip opens the circuit; caller must hold the lock
func (b *CircuitBreaker) trip() {
	b.state = BreakerOpen
	b.openedAt = time.Now()
	b.failures = 0
	b.logger.Warn("circuit breaker opened",
		zap.String("dependency", b.name),
		zap.Duration("cooldown", b.cooldown))
}

// State returns the current state
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
