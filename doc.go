/*
Package gaze drives a pair of animated eye displays and switches them
between moods at runtime.

A mood is a configuration file naming textures, colors, eyelid masks and
tracking parameters. gaze offers two ways to change moods, chosen when
the device starts.

# In-Place Reload

A Coordinator reloads a mood without restarting. It drains in-flight
display transfers, resets every field to its default, applies the new
file, restores the boot geometry, binds textures through a TextureCache
and restarts rendering at the first column:

	device := gaze.NewDevice(displays)
	assets := asset.New("/srv/eyes")
	coord := gaze.NewCoordinator(device, gaze.NewFileConfigLoader("/srv/eyes"), assets, assets)
	coord.Initialize(ctx, "calm.eye")

	coord.Reload(ctx, "angry.eye")

Reload cannot fail. Missing textures fall back to a solid color, missing
eyelid masks fall back to the built-in shape, and a broken configuration
leaves the defaults in place. Each non-fatal condition is kept in
Warnings and reported through signals.

Geometry sizes precomputed lookup tables and is only honored by
Initialize. Every later reload keeps the boot geometry whatever the new
file asks for.

The TextureCache never evicts. Once it is full, new textures are loaded
and used but not retained.

# Reboot Cycling

A Cycler persists the selected style and the auto-cycle flag in two
tagged words that survive a process restart, then asks a Resetter to
restart:

	cycler := gaze.NewCycler(gaze.DefaultStyles, gaze.NewFileRegisters("/run/gaze.regs"), gaze.ExecResetter{})
	cycler.Load(ctx)
	coord.Initialize(ctx, cycler.ConfigPath())
	cycler.Start()

Words that do not carry the tag decode to the defaults, so a cold start
begins at the first style with auto-cycle on.

# Commands

Command lines arrive from a serial console, HTTP or input buttons. A
Controller owns the device and runs each line between render steps:

	ctrl := gaze.NewController(gaze.NewReloadProtocol(device, coord, moods)).
	    Coordinator(coord).
	    Renderer(panel.NewPump(device, panels))

	go ctrl.Run(ctx)
	lines, err := ctrl.Submit(ctx, "MOOD:angry")

ReloadProtocol and RebootProtocol answer MOOD:<name>, MOOD:next,
MOOD:list and STATUS. RebootProtocol adds AUTOCYCLE:on and AUTOCYCLE:off.
Lines longer than MaxLineLength are discarded.

# Following Edits

Follow reloads the active mood whenever its file changes on disk:

	ctrl.Follow(ctx, gaze.NewFileWatcher("/srv/eyes"))

# Observability

gaze emits capitan signals for reload progress, cache activity,
commands and cycling. Hook them to log or collect metrics:

	capitan.Hook(gaze.ReloadCompleted, func(ctx context.Context, e *capitan.Event) {
	    path, _ := gaze.KeyPath.From(e)
	    log.Printf("reloaded %s", path)
	})
*/
package gaze
