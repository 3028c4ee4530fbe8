package gaze

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key reload events.
type MetricsProvider interface {
	// OnStateChange is called when a reload moves between steps.
	OnStateChange(from, to State)

	// OnReloadComplete is called when a reload returns to idle.
	// Warnings is the number of non-fatal conditions it degraded through.
	OnReloadComplete(duration time.Duration, warnings int)

	// OnDrainTimeout is called when an eye's transfer had to be aborted.
	OnDrainTimeout(eye int)

	// OnChangeReceived is called when a followed configuration changes.
	OnChangeReceived()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnStateChange(_, _ State)                {}
func (NoOpMetricsProvider) OnReloadComplete(_ time.Duration, _ int) {}
func (NoOpMetricsProvider) OnDrainTimeout(_ int)                    {}
func (NoOpMetricsProvider) OnChangeReceived()                       {}
