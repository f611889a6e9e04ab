package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain/search/outcome"
)

// DefaultRequestRetries is the attempt budget used when none is configured.
const DefaultRequestRetries = 3

// RetryPolicy bounds the attempts of one logical request. Every retry waits
// the same fixed delay, so the worst case is maxAttempts × delay plus call time.
type RetryPolicy struct {
	maxAttempts int
	delay       time.Duration
}

// NewRetryPolicy creates a policy; maxAttempts < 1 falls back to DefaultRequestRetries.
func NewRetryPolicy(maxAttempts int, delay time.Duration) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = DefaultRequestRetries
	}
	return RetryPolicy{maxAttempts: maxAttempts, delay: max(0, delay)}
}

// MaxAttempts returns the attempt budget.
func (p RetryPolicy) MaxAttempts() int { return p.maxAttempts }

// Delay returns the fixed inter-attempt delay.
func (p RetryPolicy) Delay() time.Duration { return p.delay }

// ShouldRetry reports whether another attempt is allowed after attemptsSoFar
// attempts ended with kind.
func (p RetryPolicy) ShouldRetry(kind outcome.Kind, attemptsSoFar int) bool {
	return kind == outcome.Timeout && attemptsSoFar < p.maxAttempts
}

// Session starts a fresh attempt counter.
func (p RetryPolicy) Session() *RetrySession {
	return &RetrySession{policy: p}
}

// RetrySession is the per-request attempt state. Not safe for concurrent use.
type RetrySession struct {
	policy   RetryPolicy
	attempts int
}

// Begin counts a new attempt and returns its 1-based number.
func (s *RetrySession) Begin() int {
	s.attempts++
	return s.attempts
}

// Attempts returns the number of attempts begun so far.
func (s *RetrySession) Attempts() int { return s.attempts }

// ShouldRetry applies the policy to the attempts made so far.
func (s *RetrySession) ShouldRetry(kind outcome.Kind) bool {
	return s.policy.ShouldRetry(kind, s.attempts)
}

// Wait sleeps the fixed delay or until ctx is done. Controller.Execute hands it a
// context detached from the caller, so there the full delay always elapses; ctx only
// cuts the wait short for callers that drive a session themselves.
func (s *RetrySession) Wait(ctx context.Context) {
	if s.policy.delay <= 0 {
		return
	}
	timer := time.NewTimer(s.policy.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
