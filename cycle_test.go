package gaze

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

type recordingResetter struct {
	resets int
	err    error
}

func (r *recordingResetter) Reset() error {
	r.resets++
	return r.err
}

func TestCycleState_EncodeDecode(t *testing.T) {
	s := CycleState{Index: 5, AutoCycle: false}
	words := s.Encode()
	if words[0] != 0xC7C10005 || words[1] != 0xC7C10000 {
		t.Fatalf("unexpected encoding %#08x %#08x", words[0], words[1])
	}
	got, err := DecodeCycleState(words, len(DefaultStyles))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != s {
		t.Errorf("expected %+v, got %+v", s, got)
	}
}

func TestDecodeCycleState_PowerOn(t *testing.T) {
	got, err := DecodeCycleState([2]uint32{}, len(DefaultStyles))
	if !errors.Is(err, ErrCorruptState) {
		t.Errorf("expected ErrCorruptState, got %v", err)
	}
	if got != DefaultCycleState() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestDecodeCycleState_IndexOutOfRange(t *testing.T) {
	got, err := DecodeCycleState([2]uint32{CycleTag | 200, CycleTag}, len(DefaultStyles))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Index != 0 || got.AutoCycle {
		t.Errorf("expected index 0 autocycle off, got %+v", got)
	}
}

func TestDecodeCycleState_OneWordCorrupt(t *testing.T) {
	got, err := DecodeCycleState([2]uint32{CycleTag | 3, 0xDEAD0001}, len(DefaultStyles))
	if !errors.Is(err, ErrCorruptState) {
		t.Errorf("expected ErrCorruptState, got %v", err)
	}
	if got.Index != 3 || !got.AutoCycle {
		t.Errorf("expected index kept and autocycle defaulted, got %+v", got)
	}
}

func TestCycler_TransitionSurvivesReset(t *testing.T) {
	regs := &MemoryRegisters{}
	reset := &recordingResetter{}
	var out bytes.Buffer
	c := NewCycler(DefaultStyles, regs, reset).Output(&out)
	c.Load(context.Background())

	n := len(DefaultStyles)
	if err := c.Transition(context.Background(), n+3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reset.resets != 1 {
		t.Errorf("expected 1 reset, got %d", reset.resets)
	}
	if out.String() != "STYLE:REBOOTING:demon\n" {
		t.Errorf("unexpected output %q", out.String())
	}

	// Simulate the restarted process.
	next := NewCycler(DefaultStyles, regs, reset)
	s := next.Load(context.Background())
	if s.Index != 3 || !s.AutoCycle {
		t.Errorf("expected index 3 autocycle on, got %+v", s)
	}
	if next.ConfigPath() != "demon/config.eye" {
		t.Errorf("expected demon config, got %s", next.ConfigPath())
	}
}

func TestCycler_PowerCycleRestoresDefaults(t *testing.T) {
	regs := &MemoryRegisters{}
	c := NewCycler(DefaultStyles, regs, &recordingResetter{})
	if err := c.Transition(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.SetEnabled(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	regs.PowerOn()
	s := NewCycler(DefaultStyles, regs, &recordingResetter{}).Load(context.Background())
	if s != DefaultCycleState() {
		t.Errorf("expected defaults after power-on, got %+v", s)
	}
}

func TestCycler_TickAdvances(t *testing.T) {
	clock := clockz.NewFakeClock()
	reset := &recordingResetter{}
	c := NewCycler(DefaultStyles, &MemoryRegisters{}, reset).Clock(clock)
	c.Load(context.Background())
	c.Start()

	clock.Advance(DefaultCycleInterval - time.Second)
	if moved, _ := c.Tick(context.Background()); moved {
		t.Fatal("expected no transition before interval")
	}

	clock.Advance(time.Second)
	moved, err := c.Tick(context.Background())
	if !moved || err != nil {
		t.Fatalf("expected transition, got %v %v", moved, err)
	}
	if c.State().Index != 1 || reset.resets != 1 {
		t.Errorf("expected index 1 after one reset, got %d/%d", c.State().Index, reset.resets)
	}
}

func TestCycler_TickDisabled(t *testing.T) {
	clock := clockz.NewFakeClock()
	reset := &recordingResetter{}
	c := NewCycler(DefaultStyles, &MemoryRegisters{}, reset).Clock(clock)
	c.Start()
	if err := c.SetEnabled(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.Advance(10 * DefaultCycleInterval)
	if moved, _ := c.Tick(context.Background()); moved {
		t.Error("expected no transition while disabled")
	}
	if reset.resets != 0 {
		t.Errorf("expected no reset, got %d", reset.resets)
	}
}

func TestCycler_EnableRestartsTimer(t *testing.T) {
	clock := clockz.NewFakeClock()
	c := NewCycler(DefaultStyles, &MemoryRegisters{}, &recordingResetter{}).
		Clock(clock).
		Interval(time.Minute)
	c.Start()

	clock.Advance(50 * time.Second)
	if err := c.SetEnabled(context.Background(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock.Advance(50 * time.Second)
	if moved, _ := c.Tick(context.Background()); moved {
		t.Error("expected timer restarted by enable")
	}
}

func TestCycler_ResetFailureReported(t *testing.T) {
	c := NewCycler(DefaultStyles, &MemoryRegisters{}, &recordingResetter{err: errors.New("exec denied")})
	if err := c.Transition(context.Background(), 1); err == nil {
		t.Error("expected reset error")
	}
}

func TestFileRegisters_RoundTrip(t *testing.T) {
	regs := NewFileRegisters(filepath.Join(t.TempDir(), "gaze.regs"))

	words, err := regs.Load()
	if err != nil || words != [2]uint32{} {
		t.Fatalf("expected zero words for missing file, got %v %v", words, err)
	}

	want := CycleState{Index: 9, AutoCycle: true}.Encode()
	if err := regs.Store(want); err != nil {
		t.Fatalf("failed to store: %v", err)
	}
	got, err := regs.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCycler_EmptyTableUsesDefaults(t *testing.T) {
	reset := &recordingResetter{}
	c := NewCycler(nil, &MemoryRegisters{}, reset)
	c.Load(context.Background())

	if len(c.Styles()) != len(DefaultStyles) || c.Style().Name != "hazel" {
		t.Fatalf("expected default styles, got %d entries", len(c.Styles()))
	}
	if err := c.Transition(context.Background(), 1); err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if c.Style().Name != "anime" || reset.resets != 1 {
		t.Errorf("expected anime after one reset, got %s/%d", c.Style().Name, reset.resets)
	}
}
