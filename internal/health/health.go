// Package health verifies that a hosted tool server answers its readiness
// endpoint. Both runtime backends share the same polling loop.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultInterval is the probe interval when none is configured.
	DefaultInterval = 500 * time.Millisecond
	// DefaultTimeout bounds the polling loop when none is configured.
	DefaultTimeout = 30 * time.Second
)

// ErrTimeout marks a readiness poll that exhausted its time budget.
var ErrTimeout = errors.New("health check timed out")

// TimeoutError reports a readiness poll that never saw a 200 response.
type TimeoutError struct {
	// Address is the probed URL.
	Address string
	// Elapsed is the wall-clock time spent polling.
	Elapsed time.Duration
}

// Error formats the timeout with address and elapsed duration.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("health check timed out for %s after %s", e.Address, e.Elapsed.Round(time.Millisecond))
}

// Unwrap makes the error match ErrTimeout via errors.Is.
func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// Monitor polls a readiness endpoint at a fixed interval.
type Monitor struct {
	// Interval between probes; DefaultInterval when zero.
	Interval time.Duration
	// Logger receives debug output for failed attempts; may be nil.
	Logger *slog.Logger
}

// Poll probes url until it answers 200 or timeout elapses. Every failed
// attempt (connection refused, per-attempt timeout, non-200) is swallowed
// and retried; only the cumulative timeout escalates, as a TimeoutError.
func (m Monitor) Poll(ctx context.Context, url string, timeout time.Duration) error {
	interval := m.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Each attempt must give up before the next probe is due, otherwise a
	// hanging connection would stretch the loop past its budget.
	attemptTimeout := interval * 4 / 5

	client := &http.Client{Timeout: attemptTimeout}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	limiter.Allow() // the first probe runs immediately; pacing applies after it

	start := time.Now()
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		if probe(pollCtx, client, url) {
			return nil
		}
		if m.Logger != nil {
			m.Logger.Debug("health probe failed", "url", url, "elapsed", time.Since(start))
		}
		if err := limiter.Wait(pollCtx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// The limiter gives up as soon as the next probe cannot fit the
			// deadline; hold until the full budget is consumed so the loop's
			// wall-clock bound stays at least the configured timeout.
			<-pollCtx.Done()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &TimeoutError{Address: url, Elapsed: time.Since(start)}
		}
	}
}

func probe(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
