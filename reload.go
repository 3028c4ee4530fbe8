package gaze

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Built-in eyelid masks used when a configuration names none.
const (
	DefaultUpperEyelid = "upper.bmp"
	DefaultLowerEyelid = "lower.bmp"
)

// DefaultStackReserve is held back from free memory when computing the
// texture load budget.
const DefaultStackReserve = 5192

// DefaultWarningHistory is the number of reload warnings retained.
const DefaultWarningHistory = 16

// Coordinator switches a running device to a new mood configuration in
// place, without restarting and without changing geometry.
//
// A reload walks a fixed sequence of steps (see State) and always returns
// to idle: every failure along the way degrades to a fallback color, a
// default filename or the previous geometry, and is recorded as a warning
// instead of stopping the sequence.
type Coordinator struct {
	device   *Device
	config   ConfigLoader
	textures TextureLoader
	eyelids  EyelidLoader

	geometry     GeometryInvariant
	clock        clockz.Clock
	drainTimeout time.Duration
	stackReserve int
	metrics      MetricsProvider
	yield        func()

	state     atomic.Int32
	lastError atomic.Pointer[error]
	warnings  *warningLog

	mu   sync.RWMutex
	path string
}

// NewCoordinator creates a Coordinator for a device. The loaders are the
// external collaborators for mood files, textures and eyelid masks.
func NewCoordinator(d *Device, config ConfigLoader, textures TextureLoader, eyelids EyelidLoader) *Coordinator {
	c := &Coordinator{
		device:       d,
		config:       config,
		textures:     textures,
		eyelids:      eyelids,
		clock:        clockz.RealClock,
		drainTimeout: DefaultDrainTimeout,
		stackReserve: DefaultStackReserve,
		yield:        runtime.Gosched,
		warnings:     newWarningLog(DefaultWarningHistory),
	}
	c.state.Store(int32(StateIdle))
	return c
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Clock sets a custom clock for the drain deadline and reload timing.
// Use this with clockz.FakeClock for deterministic testing.
func (c *Coordinator) Clock(clock clockz.Clock) *Coordinator {
	c.clock = clock
	return c
}

// DrainTimeout sets how long a reload waits for each display's transfer
// before aborting it. Default: 100ms.
func (c *Coordinator) DrainTimeout(d time.Duration) *Coordinator {
	c.drainTimeout = d
	return c
}

// StackReserve sets the bytes held back from free memory when computing
// the texture load budget.
func (c *Coordinator) StackReserve(n int) *Coordinator {
	c.stackReserve = n
	return c
}

// Metrics sets a metrics provider for observability integration.
func (c *Coordinator) Metrics(provider MetricsProvider) *Coordinator {
	c.metrics = provider
	return c
}

// WarningHistory sets the number of reload warnings to retain.
// Use 0 to only retain the most recent one via LastError().
func (c *Coordinator) WarningHistory(n int) *Coordinator {
	c.warnings = newWarningLog(n)
	return c
}

// Yield sets the function called before long loads to let other work run.
// Default: runtime.Gosched.
func (c *Coordinator) Yield(fn func()) *Coordinator {
	c.yield = fn
	return c
}

// State returns the current reload step.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Path returns the configuration path of the last completed reload.
func (c *Coordinator) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Boot records the configuration path and geometry the device started
// with. The geometry captured here is the one every later reload keeps.
func (c *Coordinator) Boot(path string) {
	c.geometry.Snapshot(&c.device.Geometry)
	c.mu.Lock()
	c.path = path
	c.mu.Unlock()
}

// Initialize performs the boot-time load of path. Unlike Reload it keeps
// whatever geometry the file specifies, and that geometry becomes the one
// every later reload preserves.
func (c *Coordinator) Initialize(ctx context.Context, path string) {
	id := uuid.NewString()
	d := c.device

	c.warnings.begin(id)
	c.lastError.Store(nil)

	d.ResetDefaults()
	c.applyConfig(ctx, id, path)
	c.Boot(path)

	budget := c.budget()
	c.loadTextures(ctx, budget)
	c.loadEyelids(ctx, id, budget)
	c.resetRenderState()
}

// LastError returns the most recent non-fatal condition, or nil.
func (c *Coordinator) LastError() error {
	ptr := c.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// Warnings returns the non-fatal conditions of the last reload, oldest
// first.
func (c *Coordinator) Warnings() []error {
	return c.warnings.all()
}

// Reload switches the device to the configuration at path. It must be
// called from the control goroutine; the render loop is held off for the
// whole call. Reload cannot fail and cannot be canceled.
func (c *Coordinator) Reload(ctx context.Context, path string) {
	start := c.clock.Now()
	id := uuid.NewString()
	d := c.device

	c.warnings.begin(id)
	c.lastError.Store(nil)

	capitan.Emit(ctx, ReloadStarted,
		KeyReloadID.Field(id),
		KeyPath.Field(path),
	)

	c.geometry.Snapshot(&d.Geometry)

	var budget int
	for _, step := range reloadSequence {
		c.transitionState(ctx, id, step)
		switch step {
		case StateDrainDMA:
			c.drainDMA(ctx, id)
		case StateResetDefaults:
			d.ResetDefaults()
		case StateApplyConfig:
			c.applyConfig(ctx, id, path)
		case StateRestoreGeometry:
			c.geometry.Restore(&d.Geometry)
		case StateLoadTextures:
			budget = c.budget()
			c.loadTextures(ctx, budget)
		case StateLoadEyelids:
			c.loadEyelids(ctx, id, budget)
		case StateResetRenderState:
			c.resetRenderState()
		}
	}
	c.transitionState(ctx, id, StateIdle)

	c.mu.Lock()
	c.path = path
	c.mu.Unlock()

	duration := c.clock.Since(start)
	capitan.Emit(ctx, ReloadCompleted,
		KeyReloadID.Field(id),
		KeyPath.Field(path),
		KeyDuration.Field(duration),
		KeyFreeMemory.Field(d.FreeMemory()),
	)
	if c.metrics != nil {
		c.metrics.OnReloadComplete(duration, c.warnings.len())
	}
}

// drainDMA waits for every eye's in-flight transfer, aborting any that
// miss the deadline, then releases the bus on every display.
func (c *Coordinator) drainDMA(ctx context.Context, id string) {
	for _, e := range c.device.Eyes {
		eye := e
		AwaitReady(c.clock, c.drainTimeout,
			func() bool { return !eye.DMABusy.Load() },
			func() {
				if eye.Display != nil {
					eye.Display.Abort()
				}
				eye.DMABusy.Store(false)
				capitan.Emit(ctx, DMADrainTimeout,
					KeyReloadID.Field(id),
					KeyEye.Field(eye.Index),
					KeyTimeout.Field(c.drainTimeout),
				)
				c.warn(fmt.Errorf("eye %d: %w", eye.Index, ErrDrainTimeout))
				if c.metrics != nil {
					c.metrics.OnDrainTimeout(eye.Index)
				}
			},
		)
	}
	for _, e := range c.device.Eyes {
		if e.Display == nil {
			continue
		}
		e.Display.Deselect()
		e.Display.EndTransaction()
	}
}

func (c *Coordinator) applyConfig(ctx context.Context, id, path string) {
	if err := c.config.LoadConfig(path, c.device); err != nil {
		capitan.Emit(ctx, ConfigLoadFailed,
			KeyReloadID.Field(id),
			KeyPath.Field(path),
			KeyError.Field(err.Error()),
		)
		c.warn(err)
	}
}

// budget is the memory a single texture or eyelid load may use.
func (c *Coordinator) budget() int {
	free := c.device.FreeMemory() - c.stackReserve
	if free < 0 {
		return 0
	}
	return free
}

// loadTextures binds iris and sclera textures for each eye. An eye naming
// the same file as a lower-indexed eye shares that eye's texture.
func (c *Coordinator) loadTextures(ctx context.Context, budget int) {
	eyes := c.device.Eyes
	for i, e := range eyes {
		if c.yield != nil {
			c.yield()
		}
		c.bindLayer(ctx, &e.Iris, budget, func(j int) *TextureBinding { return &eyes[j].Iris }, i)
		c.bindLayer(ctx, &e.Sclera, budget, func(j int) *TextureBinding { return &eyes[j].Sclera }, i)
	}
}

func (c *Coordinator) bindLayer(ctx context.Context, b *TextureBinding, budget int, layer func(int) *TextureBinding, index int) {
	if b.Filename != "" {
		for j := 0; j < index; j++ {
			prior := layer(j)
			if prior.Filename == b.Filename {
				b.Texture = prior.Texture
				return
			}
		}
	}
	tex, err := c.device.Textures.GetOrLoad(ctx, b.Filename, c.textures, b.Color, budget)
	if err != nil && b.Filename != "" {
		c.warn(err)
	}
	b.Texture = tex
}

func (c *Coordinator) loadEyelids(ctx context.Context, id string, budget int) {
	if c.yield != nil {
		c.yield()
	}
	lids := &c.device.Eyelids
	upper := lids.UpperFilename
	if upper == "" {
		upper = DefaultUpperEyelid
	}
	lower := lids.LowerFilename
	if lower == "" {
		lower = DefaultLowerEyelid
	}
	if err := c.eyelids.LoadEyelid(upper, lids.UpperClosed[:], lids.UpperOpen[:], DisplaySize-1, budget); err != nil {
		c.eyelidFailed(ctx, id, upper, err)
	}
	if err := c.eyelids.LoadEyelid(lower, lids.LowerOpen[:], lids.LowerClosed[:], 0, budget); err != nil {
		c.eyelidFailed(ctx, id, lower, err)
	}
}

func (c *Coordinator) eyelidFailed(ctx context.Context, id, filename string, err error) {
	capitan.Emit(ctx, EyelidLoadFailed,
		KeyReloadID.Field(id),
		KeyFilename.Field(filename),
		KeyError.Field(err.Error()),
	)
	c.warn(fmt.Errorf("eyelid %s: %w", filename, err))
}

// resetRenderState forces the render loop to restart at the first column
// with fresh flags and a centered gaze.
func (c *Coordinator) resetRenderState() {
	mapRadius := c.device.Geometry.MapRadius
	for _, e := range c.device.Eyes {
		e.ColNum = DisplaySize
		e.ColIdx = 0
		e.DMABusy.Store(false)
		e.ColumnReady.Store(false)
		e.GazeX = mapRadius
		e.GazeY = mapRadius
		if e.Display != nil {
			e.Display.SetRotation(e.Rotation)
		}
	}
}

// transitionState updates the state and emits a state change event.
func (c *Coordinator) transitionState(ctx context.Context, id string, newState State) {
	oldState := State(c.state.Swap(int32(newState)))
	if oldState == newState {
		return
	}
	capitan.Emit(ctx, ReloadStateChanged,
		KeyReloadID.Field(id),
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
	if c.metrics != nil {
		c.metrics.OnStateChange(oldState, newState)
	}
}

// warn records a non-fatal condition.
func (c *Coordinator) warn(err error) {
	var e error = c.warnings.record(c.State(), err)
	c.lastError.Store(&e)
}
