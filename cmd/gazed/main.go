// Command gazed runs an animated-eyes display: it boots the configured
// mood or style, renders to the panels, and accepts mood commands from a
// serial console, HTTP and a hardware button.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/zoobzio/capitan"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/zoobzio/gaze"
	"github.com/zoobzio/gaze/pkg/asset"
	"github.com/zoobzio/gaze/pkg/input"
	"github.com/zoobzio/gaze/pkg/panel"
	"github.com/zoobzio/gaze/pkg/serve"
)

func main() {
	configPath := flag.String("config", "/etc/gaze/gazed.yaml", "settings file")
	flag.Parse()

	settings, err := loadSettings(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logSignals()
	defer capitan.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, settings); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("gazed: %v", err)
		capitan.Shutdown()
		os.Exit(1) //nolint:gocritic // Signals drained above
	}
}

func run(ctx context.Context, s *Settings) error {
	console, closeConsole, err := openConsole(s.Serial)
	if err != nil {
		return err
	}
	defer closeConsole()
	out := &lineWriter{w: bufio.NewWriter(console)}

	displays, panels, err := openPanels(s.Panels)
	if err != nil {
		return err
	}

	device := gaze.NewDevice(displays)
	device.FreeMemory = gaze.RuntimeMemory(s.MemoryLimit)

	assets := asset.New(s.AssetRoot, asset.WithSVGSize(s.SVGSize))
	coord := gaze.NewCoordinator(device, gaze.NewFileConfigLoader(s.AssetRoot), assets, assets).
		DrainTimeout(s.DrainTimeout).
		StackReserve(s.StackReserve)

	var handler gaze.Handler
	var cycler *gaze.Cycler
	switch s.Strategy {
	case strategyReboot:
		cycler = gaze.NewCycler(s.Styles, gaze.NewFileRegisters(s.Registers), gaze.ExecResetter{}).
			Interval(s.CycleInterval).
			Output(out)
		state := cycler.Load(ctx)
		device.Mood = cycler.Style().Name
		coord.Initialize(ctx, cycler.ConfigPath())
		handler = gaze.NewRebootProtocol(device, cycler)
		autocycle := "off"
		if state.AutoCycle {
			autocycle = fmt.Sprintf("on (%s)", s.CycleInterval)
		}
		out.println(fmt.Sprintf("Eye style: %s (%d/%d) autocycle=%s",
			device.Mood, state.Index, len(s.Styles), autocycle))
		cycler.Start()
	default:
		boot, err := s.bootMood()
		if err != nil {
			return err
		}
		coord.Initialize(ctx, boot.Path)
		device.Mood = boot.Name
		handler = gaze.NewReloadProtocol(device, coord, s.Moods)
		out.println("Eye mood: " + device.Mood)
	}
	out.println("Commands: MOOD:<name|list|next>, STATUS, AUTOCYCLE:<on|off>")

	ctrl := gaze.NewController(handler).Coordinator(coord)
	if cycler != nil {
		ctrl.Cycler(cycler)
	}
	if panels[0] != nil {
		ctrl.Renderer(panel.NewPump(device, panels))
	}

	if s.Follow && s.Strategy == strategyReload {
		if err := ctrl.Follow(ctx, gaze.NewFileWatcher(s.AssetRoot)); err != nil {
			return err
		}
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	if s.Listen != "" {
		srv := serve.New(ctrl)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Listen(s.Listen); err != nil {
				log.Printf("HTTP: %v", err)
			}
		}()
		defer srv.Shutdown() //nolint:errcheck // Best effort on exit
	}

	if s.Input != "" {
		dev, err := input.Open(s.Input)
		if err != nil {
			log.Printf("INPUT: %v", err)
		} else {
			defer dev.Close()
			go func() {
				if err := input.New(dev, ctrl).Run(ctx); err != nil && ctx.Err() == nil {
					log.Printf("INPUT: %v", err)
				}
			}()
		}
	}

	go func() {
		err := gaze.ReadLines(console, func(line string, err error) {
			if err != nil {
				out.println("ERROR:LINE_TOO_LONG")
				return
			}
			lines, err := ctrl.Submit(ctx, line)
			if err != nil {
				return
			}
			for _, l := range lines {
				out.println(l)
			}
		})
		if err != nil && ctx.Err() == nil {
			log.Printf("SERIAL: %v", err)
		}
	}()

	return ctrl.Run(ctx)
}

// openConsole opens the serial device, or stdio when path is empty.
func openConsole(path string) (io.ReadWriter, func(), error) {
	if path == "" {
		return struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open serial console: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// openPanels connects both displays. No panel settings means headless.
func openPanels(cfg []PanelSettings) ([gaze.NumEyes]gaze.Display, [gaze.NumEyes]*panel.Panel, error) {
	var displays [gaze.NumEyes]gaze.Display
	var panels [gaze.NumEyes]*panel.Panel
	if len(cfg) == 0 {
		return displays, panels, nil
	}

	if _, err := host.Init(); err != nil {
		return displays, panels, fmt.Errorf("failed to initialize host: %w", err)
	}
	for i, pc := range cfg {
		port, err := spireg.Open(pc.Port)
		if err != nil {
			return displays, panels, fmt.Errorf("failed to open %s: %w", pc.Port, err)
		}
		conn, err := port.Connect(physic.Frequency(pc.SpeedKHz)*physic.KiloHertz, spi.Mode0, 8)
		if err != nil {
			return displays, panels, fmt.Errorf("failed to connect %s: %w", pc.Port, err)
		}
		dc := gpioreg.ByName(pc.DC)
		cs := gpioreg.ByName(pc.CS)
		if dc == nil || cs == nil {
			return displays, panels, fmt.Errorf("panel %d: unknown pin %s or %s", i, pc.DC, pc.CS)
		}
		p := panel.New(conn, dc, cs)
		if err := p.Init(); err != nil {
			return displays, panels, fmt.Errorf("panel %d: %w", i, err)
		}
		panels[i] = p
		displays[i] = p
	}
	return displays, panels, nil
}

// lineWriter serializes console output from the serial reader and the
// control goroutine.
type lineWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func (l *lineWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (l *lineWriter) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Flush()
}

func (l *lineWriter) println(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.WriteString(line)
	l.w.WriteByte('\n')
	l.w.Flush()
}
