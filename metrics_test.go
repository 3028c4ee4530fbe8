package gaze

import (
	"testing"
	"time"
)

func TestNoOpMetricsProvider_DoesNotPanic(_ *testing.T) {
	var m NoOpMetricsProvider

	// These should not panic
	m.OnStateChange(StateIdle, StateDrainDMA)
	m.OnReloadComplete(100*time.Millisecond, 2)
	m.OnDrainTimeout(1)
	m.OnChangeReceived()
}
