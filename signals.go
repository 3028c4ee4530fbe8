package gaze

import "github.com/zoobzio/capitan"

// Reload lifecycle signals.
var (
	// ReloadStarted is emitted when a Coordinator begins an in-place reload.
	ReloadStarted = capitan.NewSignal(
		"gaze.reload.started",
		"In-place reload started",
	)

	// ReloadStateChanged is emitted when a reload moves to its next step.
	ReloadStateChanged = capitan.NewSignal(
		"gaze.reload.state.changed",
		"Reload step transition",
	)

	// ReloadCompleted is emitted when a reload returns to idle.
	ReloadCompleted = capitan.NewSignal(
		"gaze.reload.completed",
		"In-place reload complete",
	)

	// DMADrainTimeout is emitted when a display misses the drain deadline
	// and its transfer is forcibly aborted.
	DMADrainTimeout = capitan.NewSignal(
		"gaze.reload.drain.timeout",
		"DMA drain timed out, transfer aborted",
	)

	// ConfigLoadFailed is emitted when a mood configuration cannot be read
	// or parsed. Defaults stay in place.
	ConfigLoadFailed = capitan.NewSignal(
		"gaze.reload.config.failed",
		"Mood configuration load failed",
	)

	// EyelidLoadFailed is emitted when an eyelid mask cannot be loaded.
	EyelidLoadFailed = capitan.NewSignal(
		"gaze.reload.eyelid.failed",
		"Eyelid mask load failed",
	)

	// ConfigFileChanged is emitted when a followed configuration source
	// reports a change.
	ConfigFileChanged = capitan.NewSignal(
		"gaze.reload.config.changed",
		"Followed configuration changed",
	)
)

// Texture cache signals.
var (
	// TextureCacheHit is emitted when a texture is served from the cache.
	TextureCacheHit = capitan.NewSignal(
		"gaze.texture.cache.hit",
		"Texture cache hit",
	)

	// TextureLoaded is emitted when a texture is read through the loader.
	TextureLoaded = capitan.NewSignal(
		"gaze.texture.loaded",
		"Texture loaded",
	)

	// TextureLoadFailed is emitted when the loader fails and the fallback
	// color is bound instead.
	TextureLoadFailed = capitan.NewSignal(
		"gaze.texture.load.failed",
		"Texture load failed, using fallback color",
	)

	// TextureCacheFull is emitted when a loaded texture cannot be retained.
	TextureCacheFull = capitan.NewSignal(
		"gaze.texture.cache.full",
		"Texture cache full, not caching",
	)
)

// Command and cycle signals.
var (
	// CommandReceived is emitted for every complete command line.
	CommandReceived = capitan.NewSignal(
		"gaze.command.received",
		"Command line received",
	)

	// CommandRejected is emitted when a command, mood or style is unknown.
	CommandRejected = capitan.NewSignal(
		"gaze.command.rejected",
		"Command rejected",
	)

	// StyleRebooting is emitted right before a style transition resets the
	// process.
	StyleRebooting = capitan.NewSignal(
		"gaze.cycle.rebooting",
		"Rebooting into style",
	)

	// ResetFailed is emitted when a style transition could not restart the
	// process. The previous style keeps running.
	ResetFailed = capitan.NewSignal(
		"gaze.cycle.reset.failed",
		"Style transition reset failed",
	)

	// AutoCycleChanged is emitted when auto-cycling is toggled.
	AutoCycleChanged = capitan.NewSignal(
		"gaze.cycle.autocycle.changed",
		"Auto-cycle toggled",
	)

	// CycleStateCorrupt is emitted when a persisted word carries the wrong
	// tag and defaults are used.
	CycleStateCorrupt = capitan.NewSignal(
		"gaze.cycle.state.corrupt",
		"Persisted cycle state absent or corrupt",
	)
)
