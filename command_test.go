package gaze

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLineBuffer_Terminators(t *testing.T) {
	var lb LineBuffer
	var lines []string
	for _, c := range []byte("STATUS\r\n\nMOOD:list\n") {
		line, ok, err := lb.Push(c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			lines = append(lines, line)
		}
	}
	if len(lines) != 2 || lines[0] != "STATUS" || lines[1] != "MOOD:list" {
		t.Errorf("expected two lines, got %q", lines)
	}
}

func TestLineBuffer_OverflowDiscardsLine(t *testing.T) {
	var lb LineBuffer
	long := strings.Repeat("x", MaxLineLength+10) + "\n"

	var gotErr error
	for _, c := range []byte(long) {
		if _, ok, err := lb.Push(c); ok {
			t.Fatal("expected overflowed line to be discarded")
		} else if err != nil {
			gotErr = err
		}
	}
	if !errors.Is(gotErr, ErrLineTooLong) {
		t.Errorf("expected ErrLineTooLong, got %v", gotErr)
	}

	// The buffer recovers for the next line.
	var line string
	for _, c := range []byte("STATUS\n") {
		if l, ok, _ := lb.Push(c); ok {
			line = l
		}
	}
	if line != "STATUS" {
		t.Errorf("expected STATUS after overflow, got %q", line)
	}
}

func TestLineBuffer_ExactlyMaxLength(t *testing.T) {
	var lb LineBuffer
	in := strings.Repeat("a", MaxLineLength)
	var line string
	for _, c := range []byte(in + "\n") {
		l, ok, err := lb.Push(c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			line = l
		}
	}
	if line != in {
		t.Errorf("expected full line kept, got %d bytes", len(line))
	}
}

func TestReadLines(t *testing.T) {
	var lines []string
	var errs int
	in := "MOOD:angry\n" + strings.Repeat("z", 80) + "\nSTATUS"
	err := ReadLines(strings.NewReader(in+"\n"), func(line string, err error) {
		if err != nil {
			errs++
			return
		}
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 || errs != 1 {
		t.Errorf("expected 2 lines and 1 overflow, got %q and %d", lines, errs)
	}
}

var testMoods = Catalog{
	{Name: "calm", Path: "calm.eye"},
	{Name: "angry", Path: "angry.eye"},
	{Name: "sleepy", Path: "sleepy.eye"},
}

func newReloadProtocol(t *testing.T) (*ReloadProtocol, *reloadFixture) {
	t.Helper()
	f := newReloadFixture(t)
	for _, m := range testMoods {
		f.write(t, m.Path, `{}`)
	}
	return NewReloadProtocol(f.device, f.coord, testMoods), f
}

func TestReloadProtocol_SwitchThenStatus(t *testing.T) {
	p, f := newReloadProtocol(t)
	ctx := context.Background()

	got := p.Handle(ctx, "MOOD:angry")
	if len(got) != 1 || got[0] != "MOOD:SWITCHING:angry" {
		t.Fatalf("unexpected response %q", got)
	}
	if f.coord.Path() != "angry.eye" {
		t.Errorf("expected angry.eye loaded, got %s", f.coord.Path())
	}

	got = p.Handle(ctx, "STATUS")
	if len(got) != 1 || got[0] != "STATUS:mood=angry,frames=0,freeRAM=1048576" {
		t.Errorf("unexpected status %q", got)
	}
}

func TestReloadProtocol_UnknownMood(t *testing.T) {
	p, f := newReloadProtocol(t)

	got := p.Handle(context.Background(), "MOOD:bogus")
	if len(got) != 1 || got[0] != "UNKNOWN:MOOD:bogus" {
		t.Fatalf("unexpected response %q", got)
	}
	if f.coord.Path() != "boot.eye" {
		t.Errorf("expected no reload, path is %s", f.coord.Path())
	}
	if f.device.Mood != "default" {
		t.Errorf("expected mood unchanged, got %s", f.device.Mood)
	}
}

func TestReloadProtocol_CaseAndWhitespace(t *testing.T) {
	p, _ := newReloadProtocol(t)

	got := p.Handle(context.Background(), " \tmood:ANGRY")
	if len(got) != 1 || got[0] != "MOOD:SWITCHING:angry" {
		t.Errorf("unexpected response %q", got)
	}
}

func TestReloadProtocol_List(t *testing.T) {
	p, f := newReloadProtocol(t)
	f.device.Mood = "angry"

	got := p.Handle(context.Background(), "MOOD:list")
	want := []string{
		"MOOD:LIST",
		"  calm -> calm.eye",
		"  angry -> angry.eye [current]",
		"  sleepy -> sleepy.eye",
		"MOOD:CURRENT:angry",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReloadProtocol_NextWraps(t *testing.T) {
	p, f := newReloadProtocol(t)
	f.device.Mood = "sleepy"

	got := p.Handle(context.Background(), "MOOD:next")
	if len(got) != 1 || got[0] != "MOOD:SWITCHING:calm" {
		t.Errorf("unexpected response %q", got)
	}
	if f.device.Mood != "calm" {
		t.Errorf("expected calm, got %s", f.device.Mood)
	}
}

func TestReloadProtocol_UnknownCommand(t *testing.T) {
	p, _ := newReloadProtocol(t)
	ctx := context.Background()

	for _, in := range []string{"HELLO", "AUTOCYCLE:on"} {
		got := p.Handle(ctx, in)
		if len(got) != 1 || got[0] != "UNKNOWN:CMD:"+in {
			t.Errorf("%s: unexpected response %q", in, got)
		}
	}
	if got := p.Handle(ctx, "   "); got != nil {
		t.Errorf("expected blank line ignored, got %q", got)
	}
}

func newRebootProtocol(t *testing.T) (*RebootProtocol, *Cycler, *recordingResetter, *bytes.Buffer) {
	t.Helper()
	f := newReloadFixture(t)
	reset := &recordingResetter{}
	out := &bytes.Buffer{}
	c := NewCycler(DefaultStyles, &MemoryRegisters{}, reset).Output(out)
	c.Load(context.Background())
	return NewRebootProtocol(f.device, c), c, reset, out
}

func TestRebootProtocol_StyleByName(t *testing.T) {
	p, c, reset, out := newRebootProtocol(t)

	got := p.Handle(context.Background(), "MOOD:Skull")
	if got != nil {
		t.Errorf("expected no direct response, got %q", got)
	}
	if reset.resets != 1 || c.State().Index != 10 {
		t.Errorf("expected reset into skull, got %d resets index %d", reset.resets, c.State().Index)
	}
	if out.String() != "STYLE:REBOOTING:skull\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRebootProtocol_UnknownStyle(t *testing.T) {
	p, _, reset, _ := newRebootProtocol(t)

	got := p.Handle(context.Background(), "MOOD:bogus")
	if len(got) != 1 || got[0] != "UNKNOWN:STYLE:bogus" {
		t.Errorf("unexpected response %q", got)
	}
	if reset.resets != 0 {
		t.Error("expected no reset")
	}
}

func TestRebootProtocol_AutoCycle(t *testing.T) {
	p, c, _, _ := newRebootProtocol(t)
	ctx := context.Background()

	got := p.Handle(ctx, "AUTOCYCLE:off")
	if len(got) != 1 || got[0] != "AUTOCYCLE:off" || c.State().AutoCycle {
		t.Errorf("expected autocycle off, got %q", got)
	}
	got = p.Handle(ctx, "autocycle:ON")
	if len(got) != 1 || got[0] != "AUTOCYCLE:on" || !c.State().AutoCycle {
		t.Errorf("expected autocycle on, got %q", got)
	}
	got = p.Handle(ctx, "AUTOCYCLE:maybe")
	if len(got) != 1 || got[0] != "UNKNOWN:CMD:AUTOCYCLE:maybe" {
		t.Errorf("unexpected response %q", got)
	}
}

func TestRebootProtocol_StatusAndList(t *testing.T) {
	p, _, _, _ := newRebootProtocol(t)
	ctx := context.Background()

	got := p.Handle(ctx, "STATUS")
	want := "STATUS:style=hazel,index=0/14,autocycle=on,frames=0,freeRAM=1048576"
	if len(got) != 1 || got[0] != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	got = p.Handle(ctx, "MOOD:list")
	if len(got) != len(DefaultStyles)+3 {
		t.Fatalf("expected %d lines, got %d", len(DefaultStyles)+3, len(got))
	}
	if got[0] != "STYLE:LIST" || got[1] != "  hazel -> hazel/config.eye [current]" {
		t.Errorf("unexpected list head %q", got[:2])
	}
	if got[len(got)-2] != "STYLE:CURRENT:hazel" || got[len(got)-1] != "AUTOCYCLE:on" {
		t.Errorf("unexpected list tail %q", got[len(got)-2:])
	}
}

func TestRebootProtocol_Next(t *testing.T) {
	p, c, reset, _ := newRebootProtocol(t)

	p.Handle(context.Background(), "MOOD:next")
	if c.State().Index != 1 || reset.resets != 1 {
		t.Errorf("expected reset into index 1, got %d/%d", c.State().Index, reset.resets)
	}
}
