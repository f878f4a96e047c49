package ai

import (
	"context"
	"time"
)

// pingTimeout bounds each ping in Check.
const pingTimeout = 5 * time.Second

// Pinger is anything whose connectivity can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckResult is the outcome of probing one dependency.
type CheckResult struct {
	Name     string
	Err      error
	Skipped  bool
	Duration time.Duration
}

// OK reports whether the dependency answered.
func (r CheckResult) OK() bool {
	return !r.Skipped && r.Err == nil
}

// Target names a dependency to ping. A nil Pinger is reported as skipped.
type Target struct {
	Name   string
	Pinger Pinger
}

// Check pings every target in order, each under its own timeout.
func Check(ctx context.Context, targets ...Target) []CheckResult {
	results := make([]CheckResult, 0, len(targets))
	for _, t := range targets {
		if t.Pinger == nil {
			results = append(results, CheckResult{Name: t.Name, Skipped: true})
			continue
		}
		start := time.Now()
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := t.Pinger.Ping(pctx)
		cancel()
		results = append(results, CheckResult{Name: t.Name, Err: err, Duration: time.Since(start)})
	}
	return results
}

// Healthy reports whether no pinged dependency failed.
func Healthy(results []CheckResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return false
		}
	}
	return true
}
