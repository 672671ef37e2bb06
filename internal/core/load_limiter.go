package core

// load_limiter.go bounds how many files are parsed at once. Decoding holds
// a whole file in memory, so parallel loads are capped and extra requests
// wait up to maxWait for a slot before failing with ErrTooManyLoads.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyLoads is returned when no load slot frees up within the wait time.
var ErrTooManyLoads = errors.New("too many concurrent loads, please try again later")

const (
	DefaultMaxConcurrentLoads = 4
	DefaultLoadWait           = 15 * time.Second
)

// LoadLimiter is a counting semaphore for file loads.
type LoadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// LoadLimiterStatus is a snapshot of the limiter.
type LoadLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// NewLoadLimiter allows at most maxConcurrent simultaneous loads. Zero or
// negative arguments select the defaults.
func NewLoadLimiter(maxConcurrent int, maxWait time.Duration) *LoadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultLoadWait
	}
	return &LoadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire blocks until a slot is free, ctx is done, or maxWait elapses.
// Every successful Acquire must be paired with Release.
func (l *LoadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyLoads
	}
}

// Release frees a slot taken by Acquire.
func (l *LoadLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// ActiveCount returns the number of loads in progress.
func (l *LoadLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *LoadLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// Status returns the limiter state for the health endpoint.
func (l *LoadLimiter) Status() LoadLimiterStatus {
	return LoadLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}

// WaitForDrain blocks until no load is in progress or ctx is done.
func (l *LoadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.ActiveCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
