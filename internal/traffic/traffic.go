package traffic

import (
	"sort"
	"sync"
	"time"
)

// retention bounds how far back any window query can look.
const retention = 5 * time.Minute

var defaultTracker = NewTracker()

// RecordSuccess records a successful upstream call to provider.
func RecordSuccess(provider string) {
	defaultTracker.RecordSuccess(provider)
}

// RecordError records a failed upstream call to provider (status, timeout, parse, open breaker).
func RecordError(provider string) {
	defaultTracker.RecordError(provider)
}

// RecordDenied records an inbound request rejected by the rate limiter.
func RecordDenied() {
	defaultTracker.RecordDenied()
}

// ErrorRate returns (errorCount, totalCount) across all providers within the window.
func ErrorRate(window time.Duration) (errors, total int) {
	return defaultTracker.ErrorRate(window)
}

// Snapshot returns per-provider outcome counts within the window.
func Snapshot(window time.Duration) []ProviderStats {
	return defaultTracker.Snapshot(window)
}

// DenialCount returns the number of rate-limit denials within the window.
func DenialCount(window time.Duration) int {
	return defaultTracker.DenialCount(window)
}

// Reset clears all recorded outcomes. For tests only.
func Reset() {
	defaultTracker.Reset()
}

// ProviderStats is the outcome count for one provider within a window.
type ProviderStats struct {
	Provider  string `json:"provider"`
	Successes int    `json:"successes"`
	Errors    int    `json:"errors"`
}

type outcomes struct {
	successTimes []time.Time
	errorTimes   []time.Time
}

// Tracker keeps sliding windows of upstream call outcomes per provider. Health
// reporting derives the degraded status from it.
type Tracker struct {
	mu          sync.Mutex
	now         func() time.Time
	providers   map[string]*outcomes
	deniedTimes []time.Time
}

// NewTracker returns an empty Tracker using the wall clock.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now, providers: make(map[string]*outcomes)}
}

// RecordSuccess records a successful call to provider.
func (t *Tracker) RecordSuccess(provider string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o := t.outcomesLocked(provider)
	o.successTimes = t.appendLocked(o.successTimes)
}

// RecordError records a failed call to provider.
func (t *Tracker) RecordError(provider string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o := t.outcomesLocked(provider)
	o.errorTimes = t.appendLocked(o.errorTimes)
}

// RecordDenied records a rate-limit denial.
func (t *Tracker) RecordDenied() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deniedTimes = t.appendLocked(t.deniedTimes)
}

// ErrorRate returns (errorCount, totalCount) summed over every provider within the window.
func (t *Tracker) ErrorRate(window time.Duration) (errors, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.now().Add(-window)
	for _, o := range t.providers {
		e := countInWindow(o.errorTimes, cutoff)
		errors += e
		total += e + countInWindow(o.successTimes, cutoff)
	}
	return errors, total
}

// Snapshot returns per-provider counts within the window, sorted by provider name.
// Providers with no outcomes in the window are omitted.
func (t *Tracker) Snapshot(window time.Duration) []ProviderStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.now().Add(-window)
	stats := make([]ProviderStats, 0, len(t.providers))
	for name, o := range t.providers {
		s := ProviderStats{
			Provider:  name,
			Successes: countInWindow(o.successTimes, cutoff),
			Errors:    countInWindow(o.errorTimes, cutoff),
		}
		if s.Successes+s.Errors > 0 {
			stats = append(stats, s)
		}
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Provider < stats[j].Provider })
	return stats
}

// DenialCount returns the number of rate-limit denials within the window.
func (t *Tracker) DenialCount(window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return countInWindow(t.deniedTimes, t.now().Add(-window))
}

// Reset clears all recorded outcomes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.providers = make(map[string]*outcomes)
	t.deniedTimes = nil
}

func (t *Tracker) outcomesLocked(provider string) *outcomes {
	o, ok := t.providers[provider]
	if !ok {
		o = &outcomes{}
		t.providers[provider] = o
	}
	return o
}

// appendLocked appends the current time and drops entries older than retention.
// Timestamps are appended in order, so the expired ones form a prefix.
func (t *Tracker) appendLocked(times []time.Time) []time.Time {
	now := t.now()
	times = append(times, now)
	cutoff := now.Add(-retention)
	i := 0
	for ; i < len(times) && times[i].Before(cutoff); i++ {
	}
	if i > 0 {
		times = append(times[:0], times[i:]...)
	}
	return times
}

func countInWindow(times []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range times {
		if !ts.Before(cutoff) {
			n++
		}
	}
	return n
}
