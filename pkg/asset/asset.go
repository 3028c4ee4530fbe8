// Package asset decodes texture images and eyelid masks for gaze from an
// asset directory. BMP, PNG, JPEG and GIF files are decoded directly; SVG
// files are rasterized to a fixed square size.
package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp" // Register BMP decoder

	"github.com/zoobzio/gaze"
)

// DefaultSVGSize is the edge length SVG textures are rasterized to.
const DefaultSVGSize = 256

// Loader reads assets relative to a root directory.
type Loader struct {
	root    string
	svgSize int
}

// Option configures a Loader.
type Option func(*Loader)

// WithSVGSize sets the edge length SVG textures are rasterized to.
func WithSVGSize(n int) Option {
	return func(l *Loader) {
		l.svgSize = n
	}
}

// New creates a Loader for the assets under root.
func New(root string, opts ...Option) *Loader {
	l := &Loader{
		root:    root,
		svgSize: DefaultSVGSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadTexture decodes filename into an RGB565 texture. A decoded buffer
// larger than budget bytes is refused before any pixels are converted.
func (l *Loader) LoadTexture(filename string, budget int) (*gaze.Texture, error) {
	img, err := l.decode(filename, 2, budget)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	tex := &gaze.Texture{
		Pixels: make([]uint16, b.Dx()*b.Dy()),
		Width:  b.Dx(),
		Height: b.Dy(),
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			tex.Pixels[y*b.Dx()+x] = RGB565(img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return tex, nil
}

// LoadEyelid scans a mask image column by column. For each display
// column the first lit row goes to lo and the last lit row to hi; a
// column with no lit pixel, or beyond the image, gets edge in both.
func (l *Loader) LoadEyelid(filename string, lo, hi []uint8, edge uint8, budget int) error {
	img, err := l.decode(filename, 1, budget)
	if err != nil {
		return err
	}
	b := img.Bounds()
	for x := range lo {
		lo[x], hi[x] = edge, edge
		if x >= b.Dx() {
			continue
		}
		first, last := -1, -1
		for y := 0; y < b.Dy() && y <= 0xFF; y++ {
			if lit(img.At(b.Min.X+x, b.Min.Y+y)) {
				if first < 0 {
					first = y
				}
				last = y
			}
		}
		if first >= 0 {
			lo[x] = uint8(first) //nolint:gosec // Bounded by the loop
			hi[x] = uint8(last)  //nolint:gosec // Bounded by the loop
		}
	}
	return nil
}

// decode opens filename and returns its image, refusing images whose
// width*height*bytesPerPixel exceeds budget.
func (l *Loader) decode(filename string, bytesPerPixel, budget int) (image.Image, error) {
	path := filepath.Join(l.root, filepath.FromSlash(filename))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", filename, gaze.ErrAssetNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	if strings.EqualFold(filepath.Ext(filename), ".svg") {
		if l.svgSize*l.svgSize*bytesPerPixel > budget {
			return nil, fmt.Errorf("%s: %w", filename, gaze.ErrInsufficientMemory)
		}
		return rasterize(data, l.svgSize)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	if cfg.Width*cfg.Height*bytesPerPixel > budget {
		return nil, fmt.Errorf("%s (%dx%d): %w", filename, cfg.Width, cfg.Height, gaze.ErrInsufficientMemory)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return img, nil
}

func rasterize(data []byte, size int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 0xFF}), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(size, size, scanner)
	icon.Draw(dasher, 1.0)
	return rgba, nil
}

// RGB565 packs a color into 5 bits red, 6 bits green, 5 bits blue.
func RGB565(c color.Color) uint16 {
	r, g, b, _ := c.RGBA()
	return uint16((r>>11)<<11 | (g>>10)<<5 | b>>11) //nolint:gosec // Components fit 16 bits
}

// lit reports whether a mask pixel is on.
func lit(c color.Color) bool {
	g := color.GrayModel.Convert(c).(color.Gray)
	return g.Y >= 0x80
}

// Ensure Loader satisfies both loader interfaces.
var (
	_ gaze.TextureLoader = (*Loader)(nil)
	_ gaze.EyelidLoader  = (*Loader)(nil)
)
