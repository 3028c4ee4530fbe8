package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/zoobzio/gaze"
)

// Strategies.
const (
	strategyReload = "reload"
	strategyReboot = "reboot"
)

// PanelSettings wires one display.
type PanelSettings struct {
	Port     string `yaml:"port" validate:"required"`
	DC       string `yaml:"dc" validate:"required"`
	CS       string `yaml:"cs" validate:"required"`
	SpeedKHz int64  `yaml:"speedKHz" validate:"min=1"`
}

// Settings is the daemon configuration file.
type Settings struct {
	Strategy  string       `yaml:"strategy" validate:"oneof=reload reboot"`
	AssetRoot string       `yaml:"assetRoot" validate:"required"`
	Moods     gaze.Catalog `yaml:"moods" validate:"required_if=Strategy reload,dive"`
	Styles    gaze.Catalog `yaml:"styles" validate:"dive"`
	BootMood  string       `yaml:"bootMood"`

	Serial    string `yaml:"serial"`
	Listen    string `yaml:"listen"`
	Input     string `yaml:"input"`
	Registers string `yaml:"registers" validate:"required_if=Strategy reboot"`
	Follow    bool   `yaml:"follow"`

	DrainTimeout  time.Duration `yaml:"drainTimeout" validate:"min=0"`
	CycleInterval time.Duration `yaml:"cycleInterval" validate:"min=0"`
	MemoryLimit   int           `yaml:"memoryLimit" validate:"min=0"`
	StackReserve  int           `yaml:"stackReserve" validate:"min=0"`
	SVGSize       int           `yaml:"svgSize" validate:"min=1"`

	Panels []PanelSettings `yaml:"panels" validate:"omitempty,len=2,dive"`
}

// defaultSettings are overlaid by the settings file.
func defaultSettings() Settings {
	return Settings{
		Strategy:      strategyReload,
		AssetRoot:     "/usr/share/gaze",
		Registers:     "/run/gaze.regs",
		DrainTimeout:  gaze.DefaultDrainTimeout,
		CycleInterval: gaze.DefaultCycleInterval,
		MemoryLimit:   64 << 20,
		StackReserve:  gaze.DefaultStackReserve,
		SVGSize:       256,
	}
}

// loadSettings reads and validates the settings file at path.
func loadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	s := defaultSettings()
	if err := gaze.CodecFor(path).Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := validator.New().Struct(s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	switch {
	case s.Strategy == strategyReload && len(s.Moods) == 0:
		return nil, errors.New("invalid settings: reload strategy needs at least one mood")
	case s.Strategy == strategyReboot && s.Follow:
		return nil, errors.New("invalid settings: follow only applies to the reload strategy")
	}
	if len(s.Styles) == 0 {
		s.Styles = gaze.DefaultStyles
	}
	return &s, nil
}

// bootMood resolves the mood a reload-strategy device starts in.
func (s *Settings) bootMood() (gaze.Entry, error) {
	if len(s.Moods) == 0 {
		return gaze.Entry{}, fmt.Errorf("no moods configured: %w", gaze.ErrUnknownMood)
	}
	if s.BootMood == "" {
		return s.Moods[0], nil
	}
	i, ok := s.Moods.Find(s.BootMood)
	if !ok {
		return gaze.Entry{}, fmt.Errorf("boot mood %s: %w", s.BootMood, gaze.ErrUnknownMood)
	}
	return s.Moods[i], nil
}
