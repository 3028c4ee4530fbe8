package panel

import (
	"context"
	"runtime"

	"github.com/zoobzio/gaze"
)

// Pump is a minimal gaze.Renderer that keeps each panel fed with columns
// of the eye's background color. It follows the same handshake a full
// renderer uses: a column is only started when the eye is not busy, the
// busy flag is raised before the transfer and cleared by its completion.
type Pump struct {
	device  *gaze.Device
	panels  [gaze.NumEyes]*Panel
	columns [gaze.NumEyes][]uint16
}

// NewPump creates a Pump for the device's eyes, one panel per eye.
func NewPump(d *gaze.Device, panels [gaze.NumEyes]*Panel) *Pump {
	p := &Pump{device: d, panels: panels}
	for i := range p.columns {
		p.columns[i] = make([]uint16, gaze.DisplaySize)
	}
	return p
}

// Step starts the next column on every idle eye. A frame is counted each
// time the last eye wraps back to the first column.
func (p *Pump) Step(_ context.Context) {
	started := false
	for i, e := range p.device.Eyes {
		panel := p.panels[i]
		if panel == nil || e.DMABusy.Load() {
			continue
		}
		col := p.columns[i]
		for y := range col {
			col[y] = e.BackColor
		}

		eye := e
		eye.DMABusy.Store(true)
		panel.Transfer(col, func() { eye.DMABusy.Store(false) })
		started = true

		e.ColIdx++
		e.ColNum--
		if e.ColNum <= 0 {
			e.ColNum = gaze.DisplaySize
			e.ColIdx = 0
			if i == len(p.device.Eyes)-1 {
				p.device.Frames.Add(1)
			}
		}
	}
	if !started {
		runtime.Gosched()
	}
}

var _ gaze.Renderer = (*Pump)(nil)
