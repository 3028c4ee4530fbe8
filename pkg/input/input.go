// Package input turns key presses on a Linux input device into gaze
// command lines, so a physical button can cycle moods.
package input

import (
	"context"
	"fmt"
	"time"

	"github.com/holoplot/go-evdev"
	"github.com/zoobzio/clockz"
)

// DefaultDebounce ignores repeat presses closer together than this.
const DefaultDebounce = 500 * time.Millisecond

// Source yields input events. *evdev.InputDevice satisfies it.
type Source interface {
	ReadOne() (*evdev.InputEvent, error)
}

// Submitter queues a command line. *gaze.Controller satisfies it.
type Submitter interface {
	Submit(ctx context.Context, line string) ([]string, error)
}

// Open finds the input device with the given name and grabs it.
func Open(name string) (*evdev.InputDevice, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}
	for _, p := range paths {
		if p.Name != name {
			continue
		}
		dev, err := evdev.Open(p.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", p.Path, err)
		}
		_ = dev.Grab() //nolint:errcheck // Shared access still delivers events
		return dev, nil
	}
	return nil, fmt.Errorf("input device %q not found", name)
}

// Buttons maps key presses to command lines.
type Buttons struct {
	src      Source
	submit   Submitter
	bindings map[evdev.EvCode]string
	clock    clockz.Clock
	debounce time.Duration
	last     map[evdev.EvCode]time.Time
}

// Option configures Buttons.
type Option func(*Buttons)

// WithBinding submits line when code is pressed.
func WithBinding(code evdev.EvCode, line string) Option {
	return func(b *Buttons) {
		b.bindings[code] = line
	}
}

// WithDebounce sets the minimum time between accepted presses of a key.
func WithDebounce(d time.Duration) Option {
	return func(b *Buttons) {
		b.debounce = d
	}
}

// WithClock sets a custom clock for debouncing.
func WithClock(clock clockz.Clock) Option {
	return func(b *Buttons) {
		b.clock = clock
	}
}

// New creates Buttons reading src. Without bindings the power key
// advances to the next mood.
func New(src Source, submit Submitter, opts ...Option) *Buttons {
	b := &Buttons{
		src:      src,
		submit:   submit,
		bindings: map[evdev.EvCode]string{},
		clock:    clockz.RealClock,
		debounce: DefaultDebounce,
		last:     map[evdev.EvCode]time.Time{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.bindings) == 0 {
		b.bindings[evdev.KEY_POWER] = "MOOD:next"
	}
	return b
}

// Run reads events until the source fails or ctx is canceled. Close the
// underlying device to unblock a pending read.
func (b *Buttons) Run(ctx context.Context) error {
	for {
		ev, err := b.src.ReadOne()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return fmt.Errorf("input read failed: %w", err)
		}
		if line, ok := b.press(ev); ok {
			if _, err := b.submit.Submit(ctx, line); err != nil {
				return err
			}
		}
	}
}

// press reports the bound line for a debounced key press.
func (b *Buttons) press(ev *evdev.InputEvent) (string, bool) {
	if ev.Type != evdev.EV_KEY || ev.Value != 1 {
		return "", false
	}
	line, ok := b.bindings[ev.Code]
	if !ok {
		return "", false
	}
	now := b.clock.Now()
	if last, seen := b.last[ev.Code]; seen && now.Sub(last) < b.debounce {
		return "", false
	}
	b.last[ev.Code] = now
	return line, true
}
