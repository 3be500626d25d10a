package qtypes

import (
	"sync"
)

/*
CircuitState represents the state of a backend breaker.
*/
type CircuitState int

const (
	CircuitClosed CircuitState = iota // submissions allowed
	CircuitOpen                       // backend faulted, submissions refused
)

/*
CircuitBreaker latches a backend fault. A program that the backend has already failed on has no
defined recovery, so once maxFailures submissions have failed the breaker opens and stays open;
there is no half-open probing and no retry. The failure that opened it is kept so later callers
can see why they were refused.
*/
type CircuitBreaker struct {
	mu           sync.RWMutex
	maxFailures  int
	failureCount int
	state        CircuitState
	lastErr      error
}

// NewCircuitBreaker latches after maxFailures consecutive backend failures.
func NewCircuitBreaker(maxFailures int) *CircuitBreaker {
	if maxFailures < 1 {
		maxFailures = 1
	}

	return &CircuitBreaker{
		maxFailures: maxFailures,
		state:       CircuitClosed,
	}
}

// RecordFailure records a failed submission and opens the breaker at the limit.
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastErr = err

	if cb.failureCount >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

// RecordSuccess clears the failure count while the breaker is still closed.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitClosed {
		cb.failureCount = 0
	}
}

// Allow reports whether another submission may go out.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.state == CircuitClosed
}

// State reports whether the breaker is closed or has latched open.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.state
}

// LastError is the most recent recorded failure.
func (cb *CircuitBreaker) LastError() error {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.lastErr
}
