// Package health aggregates named readiness checks for the journal binaries.
package health

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// CheckFunc performs a single check and returns an error if it fails.
type CheckFunc func(ctx context.Context) error

// Pinger is anything with a connectivity probe: database pools, caches.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck adapts a Pinger to a CheckFunc.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}

// Status is the aggregated result of all checks.
type Status struct {
	Healthy   bool                   `json:"healthy"`
	Message   string                 `json:"message,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Healthy  bool   `json:"healthy"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Checker runs registered checks concurrently, each under its own timeout.
type Checker struct {
	mu        sync.RWMutex
	checks    map[string]CheckFunc
	startTime time.Time
	version   string
	timeout   time.Duration
}

// NewChecker creates a checker reporting version.
func NewChecker(version string) *Checker {
	return &Checker{
		checks:    make(map[string]CheckFunc),
		startTime: time.Now(),
		version:   version,
		timeout:   5 * time.Second,
	}
}

// SetTimeout sets the per-check timeout.
func (c *Checker) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// Add registers a named check, replacing any check with the same name.
func (c *Checker) Add(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Check runs every check and aggregates the results.
func (c *Checker) Check(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	status := Status{
		Healthy:   true,
		Checks:    make(map[string]CheckResult, len(checks)),
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Version:   c.version,
	}
	if len(checks) == 0 {
		status.Message = "no checks registered"
		return status
	}

	type named struct {
		name   string
		result CheckResult
	}
	results := make(chan named, len(checks))

	var wg sync.WaitGroup
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			err := check(checkCtx)
			r := CheckResult{
				Healthy:  err == nil,
				Message:  "OK",
				Duration: time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				r.Message = err.Error()
			}
			results <- named{name, r}
		}(name, check)
	}
	wg.Wait()
	close(results)

	var failed []string
	for r := range results {
		status.Checks[r.name] = r.result
		if !r.result.Healthy {
			status.Healthy = false
			failed = append(failed, r.name)
		}
	}

	if status.Healthy {
		status.Message = "all checks passed"
	} else {
		sort.Strings(failed)
		status.Message = "failing: " + strings.Join(failed, ", ")
	}
	return status
}
