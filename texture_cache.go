package gaze

import (
	"context"
	"fmt"

	"github.com/zoobzio/capitan"
)

// DefaultTextureCacheCapacity is the number of textures retained for the
// life of the process.
const DefaultTextureCacheCapacity = 8

// TextureCacheStats counts cache outcomes since the process started.
type TextureCacheStats struct {
	Hits     int // Served from the cache
	Loads    int // Loader succeeded
	Failures int // Loader failed, fallback bound
	Dropped  int // Loaded but not retained because the cache was full
	Entries  int // Textures currently retained
	Capacity int // Maximum retained textures
}

type textureEntry struct {
	filename string
	texture  *Texture
}

// TextureCache remembers loaded textures by filename. Textures live in
// storage that cannot be reclaimed, so the cache only ever grows: entries
// are never evicted and once it is full new filenames are loaded but not
// retained.
//
// TextureCache is not safe for concurrent use. It is only touched by the
// control goroutine while a reload holds the render loop.
type TextureCache struct {
	entries  []textureEntry
	capacity int
	stats    TextureCacheStats
}

// NewTextureCache creates a cache that retains at most capacity textures.
// A capacity below one uses DefaultTextureCacheCapacity.
func NewTextureCache(capacity int) *TextureCache {
	if capacity < 1 {
		capacity = DefaultTextureCacheCapacity
	}
	return &TextureCache{
		entries:  make([]textureEntry, 0, capacity),
		capacity: capacity,
	}
}

// Lookup returns the cached texture for filename, or nil and false.
func (c *TextureCache) Lookup(filename string) (*Texture, bool) {
	for i := range c.entries {
		if c.entries[i].filename == filename {
			return c.entries[i].texture, true
		}
	}
	return nil, false
}

// Insert retains texture under filename. When the cache is full the
// texture is not retained and ErrCacheFull is returned; the texture itself
// remains valid for the caller.
func (c *TextureCache) Insert(ctx context.Context, filename string, texture *Texture) error {
	if len(c.entries) >= c.capacity {
		c.stats.Dropped++
		capitan.Emit(ctx, TextureCacheFull,
			KeyFilename.Field(filename),
		)
		return ErrCacheFull
	}
	c.entries = append(c.entries, textureEntry{filename: filename, texture: texture})
	return nil
}

// GetOrLoad returns the texture for filename, loading it on a miss. It
// always returns a usable texture: when filename is empty or the loader
// fails, a 1x1 texture holding fallback is returned together with the
// load error. A full cache is not reported as an error.
func (c *TextureCache) GetOrLoad(ctx context.Context, filename string, loader TextureLoader, fallback uint16, budget int) (*Texture, error) {
	if filename == "" {
		return SolidTexture(fallback), ErrAssetNotFound
	}

	if tex, ok := c.Lookup(filename); ok {
		c.stats.Hits++
		capitan.Emit(ctx, TextureCacheHit,
			KeyFilename.Field(filename),
		)
		return tex, nil
	}

	tex, err := loader.LoadTexture(filename, budget)
	if err != nil || tex == nil {
		if err == nil {
			err = ErrAssetNotFound
		}
		c.stats.Failures++
		capitan.Emit(ctx, TextureLoadFailed,
			KeyFilename.Field(filename),
			KeyError.Field(err.Error()),
		)
		return SolidTexture(fallback), fmt.Errorf("texture %s: %w", filename, err)
	}

	c.stats.Loads++
	capitan.Emit(ctx, TextureLoaded,
		KeyFilename.Field(filename),
	)
	_ = c.Insert(ctx, filename, tex) //nolint:errcheck // A full cache still hands back a usable texture
	return tex, nil
}

// Len returns the number of retained textures.
func (c *TextureCache) Len() int {
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *TextureCache) Stats() TextureCacheStats {
	s := c.stats
	s.Entries = len(c.entries)
	s.Capacity = c.capacity
	return s
}
