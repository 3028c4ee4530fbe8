package gaze

import "testing"

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateIdle:             "idle",
		StateDrainDMA:         "drain-dma",
		StateResetDefaults:    "reset-defaults",
		StateApplyConfig:      "apply-config",
		StateRestoreGeometry:  "restore-geometry",
		StateLoadTextures:     "load-textures",
		StateLoadEyelids:      "load-eyelids",
		StateResetRenderState: "reset-render-state",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}

func TestState_String_Unknown(t *testing.T) {
	unknown := State(999)
	if s := unknown.String(); s != "unknown" {
		t.Errorf("expected 'unknown', got %q", s)
	}
}

func TestState_Values(t *testing.T) {
	// Verify iota ordering
	if StateIdle != 0 {
		t.Errorf("expected StateIdle=0, got %d", StateIdle)
	}
	if StateResetRenderState != 7 {
		t.Errorf("expected StateResetRenderState=7, got %d", StateResetRenderState)
	}
}

func TestReloadSequence_Order(t *testing.T) {
	if len(reloadSequence) != 7 {
		t.Fatalf("expected 7 steps, got %d", len(reloadSequence))
	}
	for i := 1; i < len(reloadSequence); i++ {
		if reloadSequence[i] <= reloadSequence[i-1] {
			t.Errorf("step %d (%s) does not follow %s", i, reloadSequence[i], reloadSequence[i-1])
		}
	}
	if reloadSequence[0] != StateDrainDMA {
		t.Errorf("expected first step drain-dma, got %s", reloadSequence[0])
	}
}
