package lifecycle

import (
	"sync/atomic"
	"time"
)

var (
	shuttingDown atomic.Bool
	startedAt    atomic.Int64
)

func init() {
	MarkStarted(time.Now())
}

// MarkStarted records the process start time reported by the service info and health endpoints.
func MarkStarted(t time.Time) {
	startedAt.Store(t.UnixNano())
}

// StartTime returns the recorded process start time.
func StartTime() time.Time {
	return time.Unix(0, startedAt.Load())
}

// Uptime returns the time elapsed since StartTime.
func Uptime() time.Duration {
	return time.Since(StartTime())
}

// SetShuttingDown sets the shutdown flag. Call when SIGTERM/SIGINT received.
// Health handler returns 503 with status shutting-down while true.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown returns true if the process is draining and should not receive new traffic.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}
