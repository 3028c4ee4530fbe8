package gaze

import "github.com/zoobzio/capitan"

// Field keys for gaze events.
var (
	// KeyReloadID correlates every event of a single reload.
	KeyReloadID = capitan.NewStringKey("reload_id")

	// KeyPath is the configuration path being loaded.
	KeyPath = capitan.NewStringKey("path")

	// KeyOldState is the previous step before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new step after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation degrades.
	KeyError = capitan.NewStringKey("error")

	// KeyEye is the index of the eye an event concerns.
	KeyEye = capitan.NewIntKey("eye")

	// KeyFilename is the asset filename.
	KeyFilename = capitan.NewStringKey("filename")

	// KeyTimeout is the drain deadline that expired.
	KeyTimeout = capitan.NewDurationKey("timeout")

	// KeyDuration is how long a reload took.
	KeyDuration = capitan.NewDurationKey("duration")

	// KeyFreeMemory is the free memory reported after a reload.
	KeyFreeMemory = capitan.NewIntKey("free_memory")

	// KeyCommand is the raw command line.
	KeyCommand = capitan.NewStringKey("command")

	// KeyName is the mood or style name.
	KeyName = capitan.NewStringKey("name")

	// KeyIndex is the style index.
	KeyIndex = capitan.NewIntKey("index")

	// KeyAutoCycle is the auto-cycle setting, "on" or "off".
	KeyAutoCycle = capitan.NewStringKey("autocycle")
)
