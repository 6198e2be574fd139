package web

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// errBusy is returned when no processing slot frees up within the wait time.
var errBusy = errors.New("too many concurrent runs, please try again later")

// runLimiter bounds the number of pipeline runs executing at once. Requests
// that cannot get a slot within maxWait fail with errBusy.
type runLimiter struct {
	sem     *semaphore.Weighted
	max     int64
	maxWait time.Duration
	active  atomic.Int64
}

func newRunLimiter(maxConcurrent int, maxWait time.Duration) *runLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &runLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     int64(maxConcurrent),
		maxWait: maxWait,
	}
}

// acquire waits for a slot. The caller must call release exactly once after
// a nil return.
func (l *runLimiter) acquire(ctx context.Context) error {
	waitCtx := ctx
	if l.maxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.maxWait)
		defer cancel()
	}

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		// Distinguish our own wait timeout from the request going away.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errBusy
	}
	l.active.Add(1)
	return nil
}

func (l *runLimiter) release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// limiterStatus is reported by /healthz.
type limiterStatus struct {
	Active        int64 `json:"active_runs"`
	MaxConcurrent int64 `json:"max_concurrent_runs"`
}

func (l *runLimiter) status() limiterStatus {
	return limiterStatus{Active: l.active.Load(), MaxConcurrent: l.max}
}
