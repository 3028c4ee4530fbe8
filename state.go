package gaze

// State represents the current step of a Coordinator reload.
type State int32

const (
	// StateIdle indicates no reload is in progress. The render loop owns
	// the eyes.
	StateIdle State = iota

	// StateDrainDMA waits for in-flight column transfers to finish, forcing
	// recovery on any display that misses the drain deadline.
	StateDrainDMA

	// StateResetDefaults returns every transient eye field to its default.
	StateResetDefaults

	// StateApplyConfig parses the requested mood configuration.
	StateApplyConfig

	// StateRestoreGeometry puts the boot geometry back over whatever the
	// new configuration specified.
	StateRestoreGeometry

	// StateLoadTextures binds iris and sclera textures through the cache.
	StateLoadTextures

	// StateLoadEyelids rebuilds the upper and lower eyelid column bounds.
	StateLoadEyelids

	// StateResetRenderState re-arms column counters, flags and gaze so the
	// render loop restarts at the first column.
	StateResetRenderState
)

// reloadSequence is the fixed order a reload walks through. There is no
// branching and no way back.
var reloadSequence = []State{
	StateDrainDMA,
	StateResetDefaults,
	StateApplyConfig,
	StateRestoreGeometry,
	StateLoadTextures,
	StateLoadEyelids,
	StateResetRenderState,
}

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrainDMA:
		return "drain-dma"
	case StateResetDefaults:
		return "reset-defaults"
	case StateApplyConfig:
		return "apply-config"
	case StateRestoreGeometry:
		return "restore-geometry"
	case StateLoadTextures:
		return "load-textures"
	case StateLoadEyelids:
		return "load-eyelids"
	case StateResetRenderState:
		return "reset-render-state"
	default:
		return "unknown"
	}
}
