package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zoobzio/gaze"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gazed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadSettings_Reload(t *testing.T) {
	path := writeSettings(t, `
strategy: reload
assetRoot: /srv/eyes
bootMood: Angry
drainTimeout: 50ms
moods:
  - name: calm
    path: calm.eye
  - name: angry
    path: angry.eye
`)
	s, err := loadSettings(path)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if s.DrainTimeout != 50*time.Millisecond {
		t.Errorf("expected 50ms drain timeout, got %s", s.DrainTimeout)
	}
	if s.CycleInterval != gaze.DefaultCycleInterval {
		t.Errorf("expected default cycle interval, got %s", s.CycleInterval)
	}
	if len(s.Styles) != len(gaze.DefaultStyles) {
		t.Errorf("expected default styles, got %d", len(s.Styles))
	}
	boot, err := s.bootMood()
	if err != nil || boot.Path != "angry.eye" {
		t.Errorf("expected angry boot mood, got %+v %v", boot, err)
	}
}

func TestLoadSettings_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown strategy": "strategy: sideways\nassetRoot: /srv\n",
		"reload without moods": "strategy: reload\nassetRoot: /srv\n",
		"one panel": `
strategy: reboot
assetRoot: /srv
panels:
  - {port: SPI0.0, dc: GPIO25, cs: GPIO8, speedKHz: 40000}
`,
		"reload with empty moods": "strategy: reload\nassetRoot: /srv\nmoods: []\n",
		"follow under reboot":     "strategy: reboot\nassetRoot: /srv\nfollow: true\n",
		"mood without path": `
strategy: reload
assetRoot: /srv
moods:
  - name: calm
`,
	}
	for name, content := range cases {
		if _, err := loadSettings(writeSettings(t, content)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestSettings_BootMoodWithoutMoods(t *testing.T) {
	s := defaultSettings()
	if _, err := s.bootMood(); !errors.Is(err, gaze.ErrUnknownMood) {
		t.Errorf("expected ErrUnknownMood, got %v", err)
	}
}

func TestSettings_UnknownBootMood(t *testing.T) {
	s := defaultSettings()
	s.Moods = gaze.Catalog{{Name: "calm", Path: "calm.eye"}}
	s.BootMood = "bogus"
	if _, err := s.bootMood(); !errors.Is(err, gaze.ErrUnknownMood) {
		t.Errorf("expected ErrUnknownMood, got %v", err)
	}
}
