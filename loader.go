package gaze

// Texture is a decoded RGB565 pixel buffer. Eyes hold non-owning
// references; two eyes naming the same file share one *Texture.
type Texture struct {
	Pixels []uint16
	Width  int
	Height int
}

// SolidTexture returns a 1x1 texture holding a single color. It stands in
// for any texture that could not be loaded.
func SolidTexture(color uint16) *Texture {
	return &Texture{Pixels: []uint16{color}, Width: 1, Height: 1}
}

// Bytes reports the memory the pixel buffer occupies.
func (t *Texture) Bytes() int {
	return len(t.Pixels) * 2
}

// ConfigLoader parses a mood configuration into the device. A missing or
// malformed file returns an error and leaves the device defaults in place.
type ConfigLoader interface {
	LoadConfig(path string, d *Device) error
}

// TextureLoader decodes an image file into a Texture. Implementations
// return ErrAssetNotFound for a missing file and ErrInsufficientMemory
// when the decoded buffer would exceed budget bytes.
type TextureLoader interface {
	LoadTexture(filename string, budget int) (*Texture, error)
}

// EyelidLoader scans a monochrome eyelid mask and writes, per display
// column, the first and last lit row into lo and hi. Columns with no
// lit pixel get edge in both.
type EyelidLoader interface {
	LoadEyelid(filename string, lo, hi []uint8, edge uint8, budget int) error
}

// TextureLoaderFunc adapts a function to TextureLoader.
type TextureLoaderFunc func(filename string, budget int) (*Texture, error)

// LoadTexture calls f.
func (f TextureLoaderFunc) LoadTexture(filename string, budget int) (*Texture, error) {
	return f(filename, budget)
}
