package main

import (
	"context"
	"log"

	"github.com/zoobzio/capitan"

	"github.com/zoobzio/gaze"
)

// logSignals prints gaze events to the daemon log.
func logSignals() {
	capitan.Hook(gaze.ReloadStarted, func(_ context.Context, e *capitan.Event) {
		id, _ := gaze.KeyReloadID.From(e)
		path, _ := gaze.KeyPath.From(e)
		log.Printf("RELOAD: %s started (%s)", path, id)
	})

	capitan.Hook(gaze.ReloadCompleted, func(_ context.Context, e *capitan.Event) {
		path, _ := gaze.KeyPath.From(e)
		took, _ := gaze.KeyDuration.From(e)
		free, _ := gaze.KeyFreeMemory.From(e)
		log.Printf("RELOAD: %s complete in %s, %d bytes free", path, took, free)
	})

	capitan.Hook(gaze.DMADrainTimeout, func(_ context.Context, e *capitan.Event) {
		eye, _ := gaze.KeyEye.From(e)
		timeout, _ := gaze.KeyTimeout.From(e)
		log.Printf("RELOAD: eye %d transfer still busy after %s, aborted", eye, timeout)
	})

	capitan.Hook(gaze.ConfigLoadFailed, func(_ context.Context, e *capitan.Event) {
		errMsg, _ := gaze.KeyError.From(e)
		log.Printf("RELOAD: config failed, using defaults: %s", errMsg)
	})

	capitan.Hook(gaze.EyelidLoadFailed, func(_ context.Context, e *capitan.Event) {
		name, _ := gaze.KeyFilename.From(e)
		errMsg, _ := gaze.KeyError.From(e)
		log.Printf("RELOAD: eyelid %s failed: %s", name, errMsg)
	})

	capitan.Hook(gaze.ConfigFileChanged, func(_ context.Context, e *capitan.Event) {
		name, _ := gaze.KeyFilename.From(e)
		log.Printf("WATCH: %s changed", name)
	})

	capitan.Hook(gaze.TextureLoadFailed, func(_ context.Context, e *capitan.Event) {
		name, _ := gaze.KeyFilename.From(e)
		errMsg, _ := gaze.KeyError.From(e)
		log.Printf("TEXTURE: %s failed: %s", name, errMsg)
	})

	capitan.Hook(gaze.TextureCacheFull, func(_ context.Context, e *capitan.Event) {
		name, _ := gaze.KeyFilename.From(e)
		log.Printf("TEXTURE: cache full, %s not cached", name)
	})

	capitan.Hook(gaze.CommandRejected, func(_ context.Context, e *capitan.Event) {
		cmd, _ := gaze.KeyCommand.From(e)
		errMsg, _ := gaze.KeyError.From(e)
		log.Printf("COMMAND: %q rejected: %s", cmd, errMsg)
	})

	capitan.Hook(gaze.StyleRebooting, func(_ context.Context, e *capitan.Event) {
		name, _ := gaze.KeyName.From(e)
		index, _ := gaze.KeyIndex.From(e)
		log.Printf("CYCLE: rebooting into %s (%d)", name, index)
	})

	capitan.Hook(gaze.ResetFailed, func(_ context.Context, e *capitan.Event) {
		errMsg, _ := gaze.KeyError.From(e)
		log.Printf("CYCLE: reset failed: %s", errMsg)
	})

	capitan.Hook(gaze.AutoCycleChanged, func(_ context.Context, e *capitan.Event) {
		v, _ := gaze.KeyAutoCycle.From(e)
		log.Printf("CYCLE: autocycle %s", v)
	})

	capitan.Hook(gaze.CycleStateCorrupt, func(_ context.Context, e *capitan.Event) {
		errMsg, _ := gaze.KeyError.From(e)
		log.Printf("CYCLE: persisted state unusable, defaults applied: %s", errMsg)
	})
}
