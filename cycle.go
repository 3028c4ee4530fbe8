package gaze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// CycleTag marks a register word as written by this program. It occupies
// the upper 16 bits of each word.
const CycleTag uint32 = 0xC7C10000

const (
	cycleTagMask     uint32 = 0xFFFF0000
	cyclePayloadMask uint32 = 0x000000FF
)

// DefaultCycleInterval is how long a style stays up before auto-cycling.
const DefaultCycleInterval = 2 * time.Minute

// CycleState is the style selection that survives a soft reset.
type CycleState struct {
	Index     int
	AutoCycle bool
}

// DefaultCycleState is used when nothing valid is persisted.
func DefaultCycleState() CycleState {
	return CycleState{Index: 0, AutoCycle: true}
}

// Encode packs the state into two tagged words: the style index in word
// 0 and the auto-cycle flag in word 1.
func (s CycleState) Encode() [2]uint32 {
	var enabled uint32
	if s.AutoCycle {
		enabled = 1
	}
	return [2]uint32{
		CycleTag | (uint32(s.Index) & cyclePayloadMask), //nolint:gosec // Index is bounded by the style table
		CycleTag | enabled,
	}
}

// DecodeCycleState unpacks two tagged words. A word whose tag does not
// match is treated as absent and its field takes the default; the
// returned error then wraps ErrCorruptState but the state is still
// usable. An index outside the table also falls back to zero.
func DecodeCycleState(words [2]uint32, tableSize int) (CycleState, error) {
	s := DefaultCycleState()
	var errs []error

	if words[0]&cycleTagMask == CycleTag {
		s.Index = int(words[0] & cyclePayloadMask)
		if s.Index >= tableSize {
			s.Index = 0
		}
	} else {
		errs = append(errs, fmt.Errorf("index word %#08x: %w", words[0], ErrCorruptState))
	}

	if words[1]&cycleTagMask == CycleTag {
		s.AutoCycle = words[1]&cyclePayloadMask != 0
	} else {
		errs = append(errs, fmt.Errorf("autocycle word %#08x: %w", words[1], ErrCorruptState))
	}

	return s, errors.Join(errs...)
}

// Resetter restarts the process. A successful Reset does not return.
type Resetter interface {
	Reset() error
}

// ResetFunc adapts a function to Resetter.
type ResetFunc func() error

// Reset calls f.
func (f ResetFunc) Reset() error {
	return f()
}

// Cycler selects a style by persisting its index and restarting, so each
// style boots with its own geometry. It also advances automatically on a
// fixed interval while auto-cycle is enabled.
//
// Cycler is driven from the control goroutine.
type Cycler struct {
	styles   Catalog
	regs     Registers
	resetter Resetter
	out      io.Writer
	clock    clockz.Clock
	interval time.Duration

	state     CycleState
	lastCycle time.Time
	started   bool
}

// NewCycler creates a Cycler over a style table. An empty table falls
// back to DefaultStyles.
func NewCycler(styles Catalog, regs Registers, resetter Resetter) *Cycler {
	if len(styles) == 0 {
		styles = DefaultStyles
	}
	return &Cycler{
		styles:   styles,
		regs:     regs,
		resetter: resetter,
		out:      io.Discard,
		clock:    clockz.RealClock,
		interval: DefaultCycleInterval,
		state:    DefaultCycleState(),
	}
}

// Clock sets a custom clock for the auto-cycle timer.
func (c *Cycler) Clock(clock clockz.Clock) *Cycler {
	c.clock = clock
	return c
}

// Interval sets the auto-cycle interval. Default: 2 minutes.
func (c *Cycler) Interval(d time.Duration) *Cycler {
	c.interval = d
	return c
}

// Output sets where the reboot status line is written. If w has a Flush
// or Sync method it is called before the reset.
func (c *Cycler) Output(w io.Writer) *Cycler {
	c.out = w
	return c
}

// Styles returns the style table.
func (c *Cycler) Styles() Catalog {
	return c.styles
}

// State returns the current selection.
func (c *Cycler) State() CycleState {
	return c.state
}

// Style returns the selected style.
func (c *Cycler) Style() Entry {
	return c.styles.At(c.state.Index)
}

// ConfigPath returns the configuration path of the selected style. Call
// Load first at boot.
func (c *Cycler) ConfigPath() string {
	return c.Style().Path
}

// Load reads the persisted selection. Absent or corrupt words fall back
// to the defaults silently; the condition is only signaled.
func (c *Cycler) Load(ctx context.Context) CycleState {
	words, err := c.regs.Load()
	if err != nil {
		capitan.Emit(ctx, CycleStateCorrupt, KeyError.Field(err.Error()))
		c.state = DefaultCycleState()
		return c.state
	}
	s, err := DecodeCycleState(words, len(c.styles))
	if err != nil {
		capitan.Emit(ctx, CycleStateCorrupt, KeyError.Field(err.Error()))
	}
	c.state = s
	return c.state
}

// Save persists the selection with both words tagged.
func (c *Cycler) Save() error {
	return c.regs.Store(c.state.Encode())
}

// Start arms the auto-cycle timer.
func (c *Cycler) Start() {
	c.lastCycle = c.clock.Now()
	c.started = true
}

// Transition persists index next (modulo the table size), reports the
// reboot and resets the process. A successful reset never returns; an
// error is returned only if persisting or resetting failed.
func (c *Cycler) Transition(ctx context.Context, next int) error {
	c.state.Index = ((next % len(c.styles)) + len(c.styles)) % len(c.styles)
	if err := c.Save(); err != nil {
		return fmt.Errorf("failed to persist style: %w", err)
	}

	style := c.Style()
	capitan.Emit(ctx, StyleRebooting,
		KeyName.Field(style.Name),
		KeyIndex.Field(c.state.Index),
	)
	fmt.Fprintf(c.out, "STYLE:REBOOTING:%s\n", style.Name)
	flush(c.out)

	if err := c.resetter.Reset(); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	return nil
}

// SetEnabled persists the auto-cycle flag. Enabling restarts the timer.
// No reset happens.
func (c *Cycler) SetEnabled(ctx context.Context, enabled bool) error {
	c.state.AutoCycle = enabled
	if enabled {
		c.Start()
	}
	capitan.Emit(ctx, AutoCycleChanged, KeyAutoCycle.Field(onOff(enabled)))
	return c.Save()
}

// Tick advances to the next style when auto-cycle is enabled and the
// interval has elapsed. It reports whether a transition was made. The
// first Tick arms the timer if Start was never called.
func (c *Cycler) Tick(ctx context.Context) (bool, error) {
	if !c.started {
		c.Start()
		return false, nil
	}
	if !c.state.AutoCycle || c.clock.Since(c.lastCycle) < c.interval {
		return false, nil
	}
	err := c.Transition(ctx, c.state.Index+1)
	c.lastCycle = c.clock.Now()
	return true, err
}

func flush(w io.Writer) {
	switch f := w.(type) {
	case interface{ Flush() error }:
		_ = f.Flush() //nolint:errcheck // Best effort before reset
	case interface{ Sync() error }:
		_ = f.Sync() //nolint:errcheck // Best effort before reset
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
