package lifecycle

import (
	"testing"
	"time"
)

func TestIsShuttingDown_DefaultFalse(t *testing.T) {
	SetShuttingDown(false)
	if IsShuttingDown() {
		t.Error("IsShuttingDown() = true, want false by default")
	}
}

func TestSetShuttingDown_True(t *testing.T) {
	SetShuttingDown(true)
	defer SetShuttingDown(false)
	if !IsShuttingDown() {
		t.Error("IsShuttingDown() = false after SetShuttingDown(true), want true")
	}
}

func TestSetShuttingDown_False(t *testing.T) {
	SetShuttingDown(true)
	SetShuttingDown(false)
	if IsShuttingDown() {
		t.Error("IsShuttingDown() = true after SetShuttingDown(false), want false")
	}
}

func TestMarkStarted(t *testing.T) {
	orig := StartTime()
	defer MarkStarted(orig)

	start := time.Now().Add(-90 * time.Second)
	MarkStarted(start)
	if !StartTime().Equal(time.Unix(0, start.UnixNano())) {
		t.Errorf("StartTime() = %v, want %v", StartTime(), start)
	}
	if up := Uptime(); up < 90*time.Second {
		t.Errorf("Uptime() = %v, want >= 90s", up)
	}
}
