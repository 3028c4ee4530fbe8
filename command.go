package gaze

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zoobzio/capitan"
)

// MaxLineLength is the longest command line accepted, excluding the
// terminator.
const MaxLineLength = 63

// LineBuffer accumulates bytes into command lines. A carriage return or
// line feed terminates a line; empty lines are skipped.
type LineBuffer struct {
	buf      []byte
	overflow bool
}

// Push adds one byte. When c completes a line, the line is returned with
// ok set. A line that grew past MaxLineLength is discarded whole and
// reported as ErrLineTooLong when it terminates.
func (b *LineBuffer) Push(c byte) (line string, ok bool, err error) {
	if c != '\n' && c != '\r' {
		if len(b.buf) < MaxLineLength {
			b.buf = append(b.buf, c)
		} else {
			b.overflow = true
		}
		return "", false, nil
	}

	overflow := b.overflow
	line = string(b.buf)
	b.buf = b.buf[:0]
	b.overflow = false

	if overflow {
		return "", false, ErrLineTooLong
	}
	if line == "" {
		return "", false, nil
	}
	return line, true, nil
}

// ReadLines feeds r through a LineBuffer and calls fn for each complete
// line or overflow error. It returns when r is exhausted or fails.
func ReadLines(r io.Reader, fn func(line string, err error)) error {
	br := bufio.NewReader(r)
	var lb LineBuffer
	for {
		c, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line, ok, lerr := lb.Push(c)
		switch {
		case lerr != nil:
			fn("", lerr)
		case ok:
			fn(line, nil)
		}
	}
}

// Handler answers one command line with zero or more response lines.
// Handlers run on the control goroutine.
type Handler interface {
	Handle(ctx context.Context, line string) []string
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, line string) []string

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, line string) []string {
	return f(ctx, line)
}

// command is a parsed line.
type command struct {
	raw  string
	verb string
	arg  string
}

const (
	verbMood      = "MOOD"
	verbAutoCycle = "AUTOCYCLE"
	verbStatus    = "STATUS"
)

// parseCommand trims leading blanks and splits off a case-insensitive
// verb. STATUS matches as a prefix.
func parseCommand(line string) command {
	raw := strings.TrimLeft(line, " \t")
	cmd := command{raw: raw}
	upper := strings.ToUpper(raw)
	switch {
	case strings.HasPrefix(upper, verbMood+":"):
		cmd.verb = verbMood
		cmd.arg = raw[len(verbMood)+1:]
	case strings.HasPrefix(upper, verbAutoCycle+":"):
		cmd.verb = verbAutoCycle
		cmd.arg = raw[len(verbAutoCycle)+1:]
	case strings.HasPrefix(upper, verbStatus):
		cmd.verb = verbStatus
	}
	return cmd
}

func reject(ctx context.Context, cmd command, err error, response string) []string {
	capitan.Emit(ctx, CommandRejected,
		KeyCommand.Field(cmd.raw),
		KeyError.Field(err.Error()),
	)
	return []string{response}
}

func unknownCommand(ctx context.Context, cmd command) []string {
	return reject(ctx, cmd, ErrUnknownCommand, "UNKNOWN:CMD:"+cmd.raw)
}

// ReloadProtocol switches moods in place through a Coordinator.
type ReloadProtocol struct {
	device *Device
	coord  *Coordinator
	moods  Catalog
}

// NewReloadProtocol creates the in-place reload command set over a mood
// catalog.
func NewReloadProtocol(d *Device, coord *Coordinator, moods Catalog) *ReloadProtocol {
	return &ReloadProtocol{device: d, coord: coord, moods: moods}
}

// Moods returns the mood catalog.
func (p *ReloadProtocol) Moods() Catalog {
	return p.moods
}

// Handle answers one command line.
func (p *ReloadProtocol) Handle(ctx context.Context, line string) []string {
	cmd := parseCommand(line)
	if cmd.raw == "" {
		return nil
	}
	capitan.Emit(ctx, CommandReceived, KeyCommand.Field(cmd.raw))

	switch cmd.verb {
	case verbMood:
		switch {
		case strings.EqualFold(cmd.arg, "list"):
			return p.list()
		case strings.EqualFold(cmd.arg, "next"):
			if len(p.moods) == 0 {
				return reject(ctx, cmd, ErrUnknownMood, "UNKNOWN:MOOD:next")
			}
			i, ok := p.moods.Find(p.device.Mood)
			if !ok {
				i = -1
			}
			return p.switchTo(ctx, p.moods.At(i+1))
		}
		i, ok := p.moods.Find(cmd.arg)
		if !ok {
			return reject(ctx, cmd, fmt.Errorf("%s: %w", cmd.arg, ErrUnknownMood), "UNKNOWN:MOOD:"+cmd.arg)
		}
		return p.switchTo(ctx, p.moods[i])
	case verbStatus:
		return []string{fmt.Sprintf("STATUS:mood=%s,frames=%d,freeRAM=%d",
			p.device.Mood, p.device.Frames.Load(), p.device.FreeMemory())}
	}
	return unknownCommand(ctx, cmd)
}

func (p *ReloadProtocol) switchTo(ctx context.Context, mood Entry) []string {
	p.coord.Reload(ctx, mood.Path)
	p.device.Mood = mood.Name
	return []string{"MOOD:SWITCHING:" + mood.Name}
}

func (p *ReloadProtocol) list() []string {
	out := make([]string, 0, len(p.moods)+2)
	out = append(out, "MOOD:LIST")
	for _, m := range p.moods {
		out = append(out, entryLine(m, strings.EqualFold(m.Name, p.device.Mood)))
	}
	return append(out, "MOOD:CURRENT:"+p.device.Mood)
}

// RebootProtocol switches styles by persisting the selection and
// restarting through a Cycler.
type RebootProtocol struct {
	device *Device
	cycler *Cycler
}

// NewRebootProtocol creates the reboot command set.
func NewRebootProtocol(d *Device, cycler *Cycler) *RebootProtocol {
	return &RebootProtocol{device: d, cycler: cycler}
}

// Handle answers one command line. A successful style change does not
// return; its status line goes to the Cycler's output.
func (p *RebootProtocol) Handle(ctx context.Context, line string) []string {
	cmd := parseCommand(line)
	if cmd.raw == "" {
		return nil
	}
	capitan.Emit(ctx, CommandReceived, KeyCommand.Field(cmd.raw))

	styles := p.cycler.Styles()
	state := p.cycler.State()

	switch cmd.verb {
	case verbMood:
		switch {
		case strings.EqualFold(cmd.arg, "list"):
			return p.list()
		case strings.EqualFold(cmd.arg, "next"):
			return p.transition(ctx, state.Index+1)
		}
		i, ok := styles.Find(cmd.arg)
		if !ok {
			return reject(ctx, cmd, fmt.Errorf("%s: %w", cmd.arg, ErrUnknownStyle), "UNKNOWN:STYLE:"+cmd.arg)
		}
		return p.transition(ctx, i)
	case verbAutoCycle:
		var enabled bool
		switch {
		case strings.EqualFold(cmd.arg, "on"):
			enabled = true
		case strings.EqualFold(cmd.arg, "off"):
		default:
			return unknownCommand(ctx, cmd)
		}
		if err := p.cycler.SetEnabled(ctx, enabled); err != nil {
			return []string{"ERROR:" + err.Error()}
		}
		return []string{"AUTOCYCLE:" + onOff(enabled)}
	case verbStatus:
		return []string{fmt.Sprintf("STATUS:style=%s,index=%d/%d,autocycle=%s,frames=%d,freeRAM=%d",
			p.cycler.Style().Name, state.Index, len(styles), onOff(state.AutoCycle),
			p.device.Frames.Load(), p.device.FreeMemory())}
	}
	return unknownCommand(ctx, cmd)
}

func (p *RebootProtocol) transition(ctx context.Context, next int) []string {
	if err := p.cycler.Transition(ctx, next); err != nil {
		return []string{"ERROR:" + err.Error()}
	}
	return nil
}

func (p *RebootProtocol) list() []string {
	styles := p.cycler.Styles()
	state := p.cycler.State()
	out := make([]string, 0, len(styles)+3)
	out = append(out, "STYLE:LIST")
	for i, s := range styles {
		out = append(out, entryLine(s, i == state.Index))
	}
	return append(out,
		"STYLE:CURRENT:"+p.cycler.Style().Name,
		"AUTOCYCLE:"+onOff(state.AutoCycle),
	)
}

func entryLine(e Entry, current bool) string {
	if current {
		return fmt.Sprintf("  %s -> %s [current]", e.Name, e.Path)
	}
	return fmt.Sprintf("  %s -> %s", e.Name, e.Path)
}

// Ensure both protocols satisfy Handler.
var (
	_ Handler = (*ReloadProtocol)(nil)
	_ Handler = (*RebootProtocol)(nil)
)
