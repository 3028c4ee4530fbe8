// Package testing provides test utilities and helpers for gaze devices.
package testing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/gaze"
)

// Display records every call a coordinator or renderer makes on a panel.
type Display struct {
	mu        sync.Mutex
	aborts    int
	deselects int
	ends      int
	rotation  int
}

// Abort implements gaze.Display.
func (d *Display) Abort() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.aborts++
}

// Deselect implements gaze.Display.
func (d *Display) Deselect() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deselects++
}

// EndTransaction implements gaze.Display.
func (d *Display) EndTransaction() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ends++
}

// SetRotation implements gaze.Display.
func (d *Display) SetRotation(r int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rotation = r
}

// Counts returns the number of aborts, deselects and transaction ends.
func (d *Display) Counts() (aborts, deselects, ends int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.aborts, d.deselects, d.ends
}

// Rotation returns the last rotation applied.
func (d *Display) Rotation() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rotation
}

// NewDevice creates a device backed by recording displays and a fixed
// free-memory gauge.
func NewDevice(freeMemory int) (*gaze.Device, [gaze.NumEyes]*Display) {
	var recs [gaze.NumEyes]*Display
	var displays [gaze.NumEyes]gaze.Display
	for i := range recs {
		recs[i] = &Display{}
		displays[i] = recs[i]
	}
	d := gaze.NewDevice(displays)
	d.FreeMemory = func() int { return freeMemory }
	return d, recs
}

// Resetter counts resets instead of restarting the process.
type Resetter struct {
	mu     sync.Mutex
	resets int
	Err    error
}

// Reset implements gaze.Resetter.
func (r *Resetter) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
	return r.Err
}

// Resets returns the number of resets requested.
func (r *Resetter) Resets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resets
}

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// Inspect runs fn on the controller's goroutine, failing the test if the
// controller has stopped.
func Inspect(t *testing.T, ctrl *gaze.Controller, fn func()) {
	t.Helper()
	if err := ctrl.Do(context.Background(), func(context.Context) { fn() }); err != nil {
		t.Fatalf("controller unavailable: %v", err)
	}
}

// RequireResponse submits line and fails the test unless the first
// response line equals want.
func RequireResponse(t *testing.T, ctrl *gaze.Controller, line, want string) []string {
	t.Helper()
	got, err := ctrl.Submit(context.Background(), line)
	if err != nil {
		t.Fatalf("submit %q: %v", line, err)
	}
	if len(got) == 0 || got[0] != want {
		t.Fatalf("submit %q: expected %q, got %q", line, want, got)
	}
	return got
}
