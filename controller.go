package gaze

import (
	"context"
	"errors"
	"path"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Controller defaults.
const (
	DefaultIdleTick       = 10 * time.Millisecond
	DefaultFollowDebounce = 250 * time.Millisecond
	DefaultQueueSize      = 16
)

// Renderer produces one unit of display work per call, typically one
// column per eye. Step must not block for long; the controller calls it
// between command batches.
type Renderer interface {
	Step(ctx context.Context)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context)

// Step calls f.
func (f RendererFunc) Step(ctx context.Context) {
	f(ctx)
}

type job struct {
	line  string
	run   func(ctx context.Context)
	reply chan []string
}

// Controller is the single goroutine that owns the device. Command lines
// from any number of sources are queued with Submit and executed between
// render steps, so a reload never races the render loop.
type Controller struct {
	handler  Handler
	coord    *Coordinator
	cycler   *Cycler
	renderer Renderer
	clock    clockz.Clock
	idle     time.Duration
	debounce time.Duration

	jobs     chan job
	done     chan struct{}
	stopOnce sync.Once
}

// NewController creates a Controller that answers lines with handler.
func NewController(handler Handler) *Controller {
	return &Controller{
		handler:  handler,
		clock:    clockz.RealClock,
		idle:     DefaultIdleTick,
		debounce: DefaultFollowDebounce,
		jobs:     make(chan job, DefaultQueueSize),
		done:     make(chan struct{}),
	}
}

// Coordinator sets the coordinator used to follow configuration changes.
func (c *Controller) Coordinator(coord *Coordinator) *Controller {
	c.coord = coord
	return c
}

// Cycler sets the cycler whose auto-cycle timer is ticked every loop.
func (c *Controller) Cycler(cycler *Cycler) *Controller {
	c.cycler = cycler
	return c
}

// Renderer sets the render step run between command batches. Without
// one the controller waits for work, waking every idle tick.
func (c *Controller) Renderer(r Renderer) *Controller {
	c.renderer = r
	return c
}

// Clock sets a custom clock for idle waits and follow debouncing.
func (c *Controller) Clock(clock clockz.Clock) *Controller {
	c.clock = clock
	return c
}

// Idle sets the wait between loop iterations when no renderer is set.
func (c *Controller) Idle(d time.Duration) *Controller {
	c.idle = d
	return c
}

// Debounce sets how long Follow waits for changes to settle.
func (c *Controller) Debounce(d time.Duration) *Controller {
	c.debounce = d
	return c
}

// Run executes the control loop until ctx is canceled. Each iteration
// runs every queued job, ticks the auto-cycle timer, then renders.
func (c *Controller) Run(ctx context.Context) error {
	defer c.stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.drain(ctx)

		if c.cycler != nil {
			if _, err := c.cycler.Tick(ctx); err != nil {
				capitan.Emit(ctx, ResetFailed, KeyError.Field(err.Error()))
			}
		}

		if c.renderer != nil {
			c.renderer.Step(ctx)
			continue
		}

		timer := c.clock.NewTimer(c.idle)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case j := <-c.jobs:
			timer.Stop()
			c.execute(ctx, j)
		case <-timer.C():
		}
	}
}

// Submit queues a command line and waits for its response lines.
func (c *Controller) Submit(ctx context.Context, line string) ([]string, error) {
	return c.submit(ctx, job{line: line, reply: make(chan []string, 1)})
}

// Do runs fn on the control goroutine and waits for it to return. Use it
// to read device state that is only safe to touch from the loop.
func (c *Controller) Do(ctx context.Context, fn func(ctx context.Context)) error {
	_, err := c.submit(ctx, job{run: fn, reply: make(chan []string, 1)})
	return err
}

func (c *Controller) submit(ctx context.Context, j job) ([]string, error) {
	select {
	case c.jobs <- j:
	case <-c.done:
		return nil, ErrControllerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-j.reply:
		return r, nil
	case <-c.done:
		return nil, ErrControllerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Follow reloads the active mood in place whenever its configuration file
// changes. Bursts of changes are collapsed into one reload after the
// debounce interval. Follow returns once watching has started. A
// controller that cycles styles by restarting cannot follow.
func (c *Controller) Follow(ctx context.Context, w Watcher) error {
	if c.coord == nil {
		return errors.New("follow requires a coordinator")
	}
	if c.cycler != nil {
		return errors.New("follow reloads in place and cannot run alongside a cycler")
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go c.follow(ctx, changes)
	return nil
}

func (c *Controller) follow(ctx context.Context, changes <-chan string) {
	var timer clockz.Timer
	pending := map[string]struct{}{}

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case name, ok := <-changes:
			if !ok {
				return
			}
			capitan.Emit(ctx, ConfigFileChanged, KeyFilename.Field(name))
			if c.coord.metrics != nil {
				c.coord.metrics.OnChangeReceived()
			}
			pending[path.Clean(name)] = struct{}{}

			if timer == nil {
				timer = c.clock.NewTimer(c.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(c.debounce)
			}

		case <-timerC:
			names := pending
			pending = map[string]struct{}{}
			_ = c.Do(ctx, func(ctx context.Context) { //nolint:errcheck // Stopped controllers drop the reload
				active := c.coord.Path()
				if _, ok := names[path.Clean(active)]; ok {
					c.coord.Reload(ctx, active)
				}
			})
		}
	}
}

func (c *Controller) drain(ctx context.Context) {
	for {
		select {
		case j := <-c.jobs:
			c.execute(ctx, j)
		default:
			return
		}
	}
}

func (c *Controller) execute(ctx context.Context, j job) {
	if j.run != nil {
		j.run(ctx)
		j.reply <- nil
		return
	}
	j.reply <- c.handler.Handle(ctx, j.line)
}

func (c *Controller) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}
