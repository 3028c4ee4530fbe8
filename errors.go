package gaze

import "errors"

// None of these are fatal. Reload steps degrade to defaults and command
// errors are reported back over the command channel.
var (
	// ErrAssetNotFound indicates a texture, eyelid or config file is missing.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrInsufficientMemory indicates an asset does not fit the load budget.
	ErrInsufficientMemory = errors.New("insufficient memory for asset")

	// ErrCacheFull indicates the texture cache is at capacity.
	ErrCacheFull = errors.New("texture cache full")

	// ErrDrainTimeout indicates a display did not finish its transfer
	// before the drain deadline.
	ErrDrainTimeout = errors.New("dma drain timeout")

	// ErrUnknownCommand indicates an unrecognized command line.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUnknownMood indicates a mood name missing from the catalog.
	ErrUnknownMood = errors.New("unknown mood")

	// ErrUnknownStyle indicates a style name missing from the catalog.
	ErrUnknownStyle = errors.New("unknown style")

	// ErrCorruptState indicates a persisted word carried the wrong tag.
	ErrCorruptState = errors.New("persisted cycle state corrupt")

	// ErrControllerStopped indicates work was submitted to a controller
	// that is no longer running.
	ErrControllerStopped = errors.New("controller stopped")

	// ErrLineTooLong indicates a command line overflowed the accumulator.
	ErrLineTooLong = errors.New("command line too long")
)
