package gaze

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance.
var validate = validator.New()

// LayerConfig configures one texture layer (iris or sclera).
type LayerConfig struct {
	Texture *string  `json:"texture,omitempty" yaml:"texture,omitempty"`
	Color   *uint16  `json:"color,omitempty" yaml:"color,omitempty"`
	Spin    *float32 `json:"spin,omitempty" yaml:"spin,omitempty"`
	ISpin   *int     `json:"iSpin,omitempty" yaml:"iSpin,omitempty"`
	Mirror  *bool    `json:"mirror,omitempty" yaml:"mirror,omitempty"`
	Angle   *int     `json:"angle,omitempty" yaml:"angle,omitempty" validate:"omitempty,min=0,max=1023"`
}

// EyeConfig holds settings that may differ between the two eyes.
type EyeConfig struct {
	PupilColor *uint16     `json:"pupilColor,omitempty" yaml:"pupilColor,omitempty"`
	BackColor  *uint16     `json:"backColor,omitempty" yaml:"backColor,omitempty"`
	Iris       LayerConfig `json:"iris" yaml:"iris"`
	Sclera     LayerConfig `json:"sclera" yaml:"sclera"`
	Rotation   *int        `json:"rotation,omitempty" yaml:"rotation,omitempty" validate:"omitempty,min=0,max=3"`
}

// MoodConfig is a mood file. Every field is optional; anything left out
// keeps its default. Geometry fields are honored at boot and discarded by
// in-place reloads.
type MoodConfig struct {
	EyeRadius       *int     `json:"eyeRadius,omitempty" yaml:"eyeRadius,omitempty" validate:"omitempty,min=1,max=240"`
	IrisRadius      *int     `json:"irisRadius,omitempty" yaml:"irisRadius,omitempty" validate:"omitempty,min=1,max=240"`
	SlitPupilRadius *int     `json:"slitPupilRadius,omitempty" yaml:"slitPupilRadius,omitempty" validate:"omitempty,min=0,max=240"`
	Coverage        *float32 `json:"coverage,omitempty" yaml:"coverage,omitempty" validate:"omitempty,gt=0,lte=1"`

	EyeConfig `yaml:",inline"`

	Right *EyeConfig `json:"right,omitempty" yaml:"right,omitempty"`
	Left  *EyeConfig `json:"left,omitempty" yaml:"left,omitempty"`

	UpperEyelid *string `json:"upperEyelid,omitempty" yaml:"upperEyelid,omitempty"`
	LowerEyelid *string `json:"lowerEyelid,omitempty" yaml:"lowerEyelid,omitempty"`

	Tracking    *bool    `json:"tracking,omitempty" yaml:"tracking,omitempty"`
	TrackFactor *float32 `json:"trackFactor,omitempty" yaml:"trackFactor,omitempty" validate:"omitempty,gte=0,lte=1"`
	GazeMax     *int     `json:"gazeMax,omitempty" yaml:"gazeMax,omitempty" validate:"omitempty,min=0"`
	IrisMin     *float32 `json:"irisMin,omitempty" yaml:"irisMin,omitempty" validate:"omitempty,gte=0,lte=1"`
	IrisMax     *float32 `json:"irisMax,omitempty" yaml:"irisMax,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Validate checks field ranges.
func (c MoodConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.IrisMin != nil && c.IrisMax != nil && *c.IrisMax < *c.IrisMin {
		return errors.New("irisMax must not be below irisMin")
	}
	return nil
}

// eyeOverride returns the per-eye section for an eye index. Eye 0 is the
// right eye.
func (c *MoodConfig) eyeOverride(index int) *EyeConfig {
	if index == 0 {
		return c.Right
	}
	return c.Left
}

// Apply writes the configuration into the device. Geometry is recomputed
// from whatever the file specifies; callers that must keep geometry
// frozen restore it afterwards.
func (c *MoodConfig) Apply(d *Device) {
	g := d.Geometry
	eyeRadius, irisRadius, slit, coverage := g.EyeRadius, g.IrisRadius, g.SlitPupilRadius, g.Coverage
	if c.EyeRadius != nil {
		eyeRadius = *c.EyeRadius
	}
	if c.IrisRadius != nil {
		irisRadius = *c.IrisRadius
	}
	if c.SlitPupilRadius != nil {
		slit = *c.SlitPupilRadius
	}
	if c.Coverage != nil {
		coverage = *c.Coverage
	}
	d.Geometry = NewGeometry(eyeRadius, irisRadius, slit, coverage)

	for _, e := range d.Eyes {
		c.EyeConfig.applyTo(e)
		if o := c.eyeOverride(e.Index); o != nil {
			o.applyTo(e)
		}
	}

	if c.UpperEyelid != nil {
		d.Eyelids.UpperFilename = *c.UpperEyelid
	}
	if c.LowerEyelid != nil {
		d.Eyelids.LowerFilename = *c.LowerEyelid
	}

	t := &d.Tracking
	if c.Tracking != nil {
		t.Enabled = *c.Tracking
	}
	if c.TrackFactor != nil {
		t.TrackFactor = *c.TrackFactor
	}
	if c.GazeMax != nil {
		t.GazeMax = *c.GazeMax
	}
	if c.IrisMin != nil {
		t.IrisMin = *c.IrisMin
	}
	if c.IrisMax != nil {
		t.IrisRange = *c.IrisMax - t.IrisMin
	}
}

func (c *EyeConfig) applyTo(e *Eye) {
	if c.PupilColor != nil {
		e.PupilColor = *c.PupilColor
	}
	if c.BackColor != nil {
		e.BackColor = *c.BackColor
	}
	if c.Rotation != nil {
		e.Rotation = *c.Rotation
	}
	c.Iris.applyTo(&e.Iris)
	c.Sclera.applyTo(&e.Sclera)
}

func (c *LayerConfig) applyTo(b *TextureBinding) {
	if c.Texture != nil {
		b.Filename = *c.Texture
	}
	if c.Color != nil {
		b.Color = *c.Color
	}
	if c.Spin != nil {
		b.Spin = *c.Spin
	}
	if c.ISpin != nil {
		b.ISpin = *c.ISpin
	}
	if c.Mirror != nil {
		b.Mirror = 0
		if *c.Mirror {
			b.Mirror = 1023
		}
	}
	if c.Angle != nil {
		b.StartAngle = *c.Angle
		b.Angle = *c.Angle
	}
}

// FileConfigLoader reads mood files from disk. Relative paths resolve
// against Root. The codec is chosen from the file extension.
type FileConfigLoader struct {
	Root string
}

// NewFileConfigLoader creates a loader rooted at root.
func NewFileConfigLoader(root string) *FileConfigLoader {
	return &FileConfigLoader{Root: root}
}

// Read parses and validates a mood file without applying it.
func (l *FileConfigLoader) Read(path string) (*MoodConfig, error) {
	full := path
	if l.Root != "" && !filepath.IsAbs(path) {
		full = filepath.Join(l.Root, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config %s: %w", path, ErrAssetNotFound)
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	var cfg MoodConfig
	if err := CodecFor(full).Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config %s: unmarshal failed: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: validation failed: %w", path, err)
	}
	return &cfg, nil
}

// LoadConfig implements ConfigLoader. On any error the device is left
// untouched.
func (l *FileConfigLoader) LoadConfig(path string, d *Device) error {
	cfg, err := l.Read(path)
	if err != nil {
		return err
	}
	cfg.Apply(d)
	return nil
}

// Ensure FileConfigLoader implements ConfigLoader.
var _ ConfigLoader = (*FileConfigLoader)(nil)
