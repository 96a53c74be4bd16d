package brochure

import (
	"log"
	"sync"
	"time"
)

// CircuitBreaker stops calling a failing renderer for a while. It opens
// after failureThreshold consecutive failures and lets one attempt through
// once resetTimeout has passed.
type CircuitBreaker struct {
	failureThreshold int
	resetTimeout     time.Duration

	failures            int
	successes           int
	consecutiveFailures int
	isOpen              bool
	lastFailureTime     time.Time

	now   func() time.Time
	mutex sync.Mutex
}

func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 1
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.successes++
	cb.consecutiveFailures = 0
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures++
	cb.consecutiveFailures++
	cb.lastFailureTime = cb.now()

	if !cb.isOpen && cb.consecutiveFailures >= cb.failureThreshold {
		cb.isOpen = true
		log.Printf("Brochure: circuit breaker open after %d consecutive failures, retrying after %v",
			cb.consecutiveFailures, cb.resetTimeout)
	}
}

// CanProceed reports whether a render may be attempted
func (cb *CircuitBreaker) CanProceed() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if !cb.isOpen {
		return true
	}
	if cb.now().Sub(cb.lastFailureTime) > cb.resetTimeout {
		log.Printf("Brochure: circuit breaker half-open after %v", cb.resetTimeout)
		cb.isOpen = false
		// one more failure reopens it
		cb.consecutiveFailures = cb.failureThreshold - 1
		return true
	}
	return false
}

// Status is the breaker state reported on the admin stats page
type Status struct {
	Open                bool      `json:"open"`
	Failures            int       `json:"failures"`
	Successes           int       `json:"successes"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastFailure         time.Time `json:"last_failure,omitempty"`
}

func (cb *CircuitBreaker) GetStatus() Status {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return Status{
		Open:                cb.isOpen,
		Failures:            cb.failures,
		Successes:           cb.successes,
		ConsecutiveFailures: cb.consecutiveFailures,
		LastFailure:         cb.lastFailureTime,
	}
}
