package core

import (
	"math"
	"time"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/config"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

// Action decided for a failed job.
type Action int

const (
	Requeue Action = iota
	DeadLetter
)

func (a Action) String() string {
	switch a {
	case Requeue:
		return "requeue"
	case DeadLetter:
		return "dead_letter"
	default:
		return "unknown"
	}
}

// Decision is what to do with a failed job.
type Decision struct {
	Action Action

	// Job to enqueue. For Requeue this is the next attempt, for DeadLetter it's
	// the failed job as is.
	Job *structs.Job

	// Delay before a requeued job is visible.
	Delay time.Duration
}

// Backoff computes the delay before retrying after the given (failed) attempt.
type Backoff interface {
	Delay(attempt int) time.Duration
}

// Constant backoff waits the same time after every attempt.
type Constant struct {
	Interval time.Duration
}

func (c Constant) Delay(_ int) time.Duration {
	return c.Interval
}

// Exponential backoff doubles the delay each attempt, up to Max.
// Delay = min(Initial * 2^(attempt-1), Max).
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
}

func (e Exponential) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(e.Initial) * math.Pow(2, float64(attempt-1))
	if e.Max > 0 && d > float64(e.Max) {
		return e.Max
	}
	return time.Duration(d)
}

// Policy decides whether failed jobs are retried or given up on.
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
}

// NewPolicy builds the policy described by cfg.
func NewPolicy(cfg config.Config) *Policy {
	var b Backoff = Constant{Interval: cfg.RetryDelay}
	if cfg.RetryBackoff == config.BackoffExponential {
		b = Exponential{Initial: cfg.RetryDelay, Max: cfg.RetryMaxDelay}
	}
	return &Policy{MaxAttempts: cfg.MaxAttempts, Backoff: b}
}

// IsFinal reports whether a failure on this attempt should be the last.
func (p *Policy) IsFinal(attempt int) bool {
	return attempt >= p.MaxAttempts
}

// Decide what to do with a job that failed with err. All errors reaching here are
// treated as retryable, so only the attempt count matters.
func (p *Policy) Decide(job *structs.Job, err error) Decision {
	if p.IsFinal(job.AttemptCount) {
		return Decision{Action: DeadLetter, Job: job}
	}
	return Decision{
		Action: Requeue,
		Job:    job.Next(),
		Delay:  p.Backoff.Delay(job.AttemptCount),
	}
}
