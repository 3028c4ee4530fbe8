package gaze

import (
	"runtime"
	"sync/atomic"
)

// NumEyes is the number of physical displays.
const NumEyes = 2

// DisplaySize is the width and height of each display in pixels.
const DisplaySize = 240

// DefaultRotation is the display rotation applied on reset.
const DefaultRotation = 3

// Blink states.
const (
	NoBlink = iota
	BlinkEnding
	BlinkStarting
)

// Display is the render subsystem's handle to one physical panel. The
// reload coordinator only observes and stops it; column rendering lives
// elsewhere.
type Display interface {
	// Abort forcibly stops an in-flight transfer.
	Abort()

	// Deselect releases the panel's chip-select line.
	Deselect()

	// EndTransaction closes the panel's bus transaction so another user
	// may take the bus.
	EndTransaction()

	// SetRotation applies a display rotation, 0 through 3.
	SetRotation(rotation int)
}

// TextureBinding ties an eye layer to a texture.
type TextureBinding struct {
	Color      uint16
	Texture    *Texture
	Filename   string
	StartAngle int
	Angle      int
	Spin       float32
	ISpin      int
	Mirror     uint16
}

// Eye is the rendering state of one display.
type Eye struct {
	Index      int
	PupilColor uint16
	BackColor  uint16
	Iris       TextureBinding
	Sclera     TextureBinding
	Rotation   int

	BlinkState  int
	BlinkFactor float32

	ColNum       int
	ColIdx       int
	ActiveBuffer int

	GazeX int
	GazeY int

	// DMABusy is set by the render loop when a column transfer starts and
	// cleared when it completes.
	DMABusy atomic.Bool

	// ColumnReady is set when the next column is rendered and waiting.
	ColumnReady atomic.Bool

	// Display is the hardware handle. Resets never touch it.
	Display Display
}

// resetDefaults returns every transient field to its default value.
// Hardware handles and render counters are left alone.
func (e *Eye) resetDefaults() {
	startAngle := 0
	if e.Index&1 == 1 {
		startAngle = 512
	}
	e.PupilColor = 0x0000
	e.BackColor = 0xFFFF
	e.Iris = TextureBinding{Color: 0xFF01, StartAngle: startAngle, Angle: startAngle}
	e.Sclera = TextureBinding{Color: 0xFFFF, StartAngle: startAngle, Angle: startAngle}
	e.Rotation = DefaultRotation
	e.BlinkState = NoBlink
	e.BlinkFactor = 0
}

// Tracking holds the gaze and pupil parameters a configuration may set.
type Tracking struct {
	Enabled     bool
	TrackFactor float32
	GazeMax     int
	IrisMin     float32
	IrisRange   float32
}

// DefaultTracking returns the tracking parameters for a configuration
// that sets nothing.
func DefaultTracking() Tracking {
	return Tracking{
		Enabled:     true,
		TrackFactor: 0.5,
		GazeMax:     3000000,
		IrisMin:     0.45,
		IrisRange:   0.35,
	}
}

// Eyelids holds, per display column, the row bounds of the open region
// for the upper and lower lids.
type Eyelids struct {
	UpperOpen   [DisplaySize]uint8
	UpperClosed [DisplaySize]uint8
	LowerOpen   [DisplaySize]uint8
	LowerClosed [DisplaySize]uint8

	// Filenames requested by the last configuration. Empty means the
	// built-in default.
	UpperFilename string
	LowerFilename string
}

// MemoryGauge reports free memory in bytes.
type MemoryGauge func() int

// RuntimeMemory reports headroom below limit bytes using the Go runtime's
// view of memory obtained from the OS.
func RuntimeMemory(limit int) MemoryGauge {
	return func() int {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		free := limit - int(ms.Sys) //nolint:gosec // Sys fits in int on supported targets
		if free < 0 {
			return 0
		}
		return free
	}
}

// Device is the single owned context for a running display: both eyes,
// the live geometry, tracking parameters, eyelids and the texture cache.
// It is created once at startup and only mutated by the control
// goroutine.
type Device struct {
	Eyes     [NumEyes]*Eye
	Geometry Geometry
	Tracking Tracking
	Eyelids  Eyelids
	Textures *TextureCache

	// Mood is the name of the active mood or style.
	Mood string

	// Frames counts completed display frames.
	Frames atomic.Uint64

	// FreeMemory reports free memory for status and load budgets.
	FreeMemory MemoryGauge
}

// NewDevice binds the two displays and initializes every field to its
// default. The texture cache starts empty.
func NewDevice(displays [NumEyes]Display) *Device {
	d := &Device{
		Geometry:   DefaultGeometry(),
		Tracking:   DefaultTracking(),
		Textures:   NewTextureCache(DefaultTextureCacheCapacity),
		Mood:       "default",
		FreeMemory: RuntimeMemory(256 << 20),
	}
	for i := range d.Eyes {
		e := &Eye{Index: i, Display: displays[i]}
		e.resetDefaults()
		e.ColNum = DisplaySize
		e.GazeX = d.Geometry.MapRadius
		e.GazeY = d.Geometry.MapRadius
		d.Eyes[i] = e
	}
	return d
}

// ResetDefaults returns every eye and the tracking parameters to their
// defaults. Hardware handles are untouched.
func (d *Device) ResetDefaults() {
	for _, e := range d.Eyes {
		e.resetDefaults()
	}
	d.Tracking = DefaultTracking()
	d.Eyelids.UpperFilename = ""
	d.Eyelids.LowerFilename = ""
}
