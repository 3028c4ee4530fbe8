// Package panel drives one eye display over an SPI bus with periph.io.
//
// A Panel implements gaze.Display. Column data is streamed by Transfer on
// a background goroutine, standing in for the DMA engine of a
// microcontroller: the caller marks the eye busy, and the completion
// callback clears it.
package panel

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"

	"github.com/zoobzio/gaze"
)

// Controller commands shared by ST77xx and GC9xxx panels.
const (
	cmdSoftReset    = 0x01
	cmdSleepOut     = 0x11
	cmdDisplayOn    = 0x29
	cmdColumnAddr   = 0x2A
	cmdRowAddr      = 0x2B
	cmdMemoryWrite  = 0x2C
	cmdMemoryAccess = 0x36
	cmdPixelFormat  = 0x3A
)

// DefaultChunkSize is the number of bytes sent per bus write. Abort is
// observed between chunks.
const DefaultChunkSize = 64

// madctl holds the memory access control value for each rotation.
var madctl = [4]byte{0x00, 0x60, 0xC0, 0xA0}

// Panel is one display on an SPI bus.
type Panel struct {
	conn  spi.Conn
	dc    gpio.PinOut
	cs    gpio.PinOut
	size  int
	chunk int

	bus         sync.Mutex
	inFlight    sync.WaitGroup
	cancel      atomic.Pointer[context.CancelFunc]
	transaction atomic.Bool
	rotation    atomic.Int32
	lastErr     atomic.Pointer[error]
}

// Option configures a Panel.
type Option func(*Panel)

// WithChunkSize sets the number of bytes sent per bus write.
func WithChunkSize(n int) Option {
	return func(p *Panel) {
		p.chunk = n
	}
}

// WithSize sets the panel edge length in pixels. Default: gaze.DisplaySize.
func WithSize(n int) Option {
	return func(p *Panel) {
		p.size = n
	}
}

// New creates a Panel on conn with data/command and chip-select lines.
func New(conn spi.Conn, dc, cs gpio.PinOut, opts ...Option) *Panel {
	p := &Panel{
		conn:  conn,
		dc:    dc,
		cs:    cs,
		size:  gaze.DisplaySize,
		chunk: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init wakes the panel and selects 16-bit color.
func (p *Panel) Init() error {
	p.bus.Lock()
	defer p.bus.Unlock()
	steps := []struct {
		cmd    byte
		params []byte
	}{
		{cmdSoftReset, nil},
		{cmdSleepOut, nil},
		{cmdPixelFormat, []byte{0x55}},
		{cmdMemoryAccess, []byte{madctl[gaze.DefaultRotation]}},
		{cmdDisplayOn, nil},
	}
	for _, s := range steps {
		if err := p.command(s.cmd, s.params); err != nil {
			return err
		}
	}
	p.rotation.Store(gaze.DefaultRotation)
	return p.deselect()
}

// Transfer streams one column of RGB565 pixels in the background and
// calls done when the last byte is written. An aborted transfer never
// calls done. Only one transfer may be in flight.
func (p *Panel) Transfer(column []uint16, done func()) {
	buf := make([]byte, len(column)*2)
	for i, px := range column {
		buf[2*i] = byte(px >> 8)
		buf[2*i+1] = byte(px)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel.Store(&cancel)
	p.inFlight.Add(1)

	go func() {
		defer p.inFlight.Done()
		defer cancel()

		p.bus.Lock()
		defer p.bus.Unlock()

		if !p.transaction.Swap(true) {
			if err := p.openWindow(); err != nil {
				p.fail(err)
				done()
				return
			}
		}
		for off := 0; off < len(buf); off += p.chunk {
			if ctx.Err() != nil {
				return
			}
			end := min(off+p.chunk, len(buf))
			if err := p.conn.Tx(buf[off:end], nil); err != nil {
				p.fail(fmt.Errorf("column write failed: %w", err))
				break
			}
		}
		done()
	}()
}

// Abort stops the in-flight transfer and waits for the bus to be free.
func (p *Panel) Abort() {
	if c := p.cancel.Load(); c != nil {
		(*c)()
	}
	p.inFlight.Wait()
}

// Deselect raises chip-select.
func (p *Panel) Deselect() {
	p.bus.Lock()
	defer p.bus.Unlock()
	if err := p.deselect(); err != nil {
		p.fail(err)
	}
}

// EndTransaction closes the memory write window. The next transfer opens
// a fresh one starting at the first column.
func (p *Panel) EndTransaction() {
	p.transaction.Store(false)
}

// SetRotation applies rotation 0 through 3.
func (p *Panel) SetRotation(rotation int) {
	r := rotation & 3
	p.bus.Lock()
	defer p.bus.Unlock()
	if err := p.command(cmdMemoryAccess, []byte{madctl[r]}); err != nil {
		p.fail(err)
		return
	}
	p.rotation.Store(int32(r)) //nolint:gosec // Masked to 0..3
}

// Rotation returns the applied rotation.
func (p *Panel) Rotation() int {
	return int(p.rotation.Load())
}

// Err returns the most recent bus error, or nil.
func (p *Panel) Err() error {
	if e := p.lastErr.Load(); e != nil {
		return *e
	}
	return nil
}

// openWindow addresses the full panel and starts a memory write. Columns
// then stream in order. Caller holds the bus.
func (p *Panel) openWindow() error {
	last := byte(p.size - 1)
	window := []byte{0, 0, 0, last}
	if err := p.command(cmdColumnAddr, window); err != nil {
		return err
	}
	if err := p.command(cmdRowAddr, window); err != nil {
		return err
	}
	return p.command(cmdMemoryWrite, nil)
}

// command sends a command byte and its parameters. Caller holds the bus.
func (p *Panel) command(cmd byte, params []byte) error {
	if err := p.cs.Out(gpio.Low); err != nil {
		return fmt.Errorf("chip select failed: %w", err)
	}
	if err := p.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("data/command select failed: %w", err)
	}
	if err := p.conn.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("command %#02x failed: %w", cmd, err)
	}
	if err := p.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("data/command select failed: %w", err)
	}
	if len(params) == 0 {
		return nil
	}
	if err := p.conn.Tx(params, nil); err != nil {
		return fmt.Errorf("command %#02x parameters failed: %w", cmd, err)
	}
	return nil
}

func (p *Panel) deselect() error {
	if err := p.cs.Out(gpio.High); err != nil {
		return fmt.Errorf("chip deselect failed: %w", err)
	}
	return nil
}

func (p *Panel) fail(err error) {
	p.lastErr.Store(&err)
}

var _ gaze.Display = (*Panel)(nil)
