package gaze

import "strings"

// Entry names a mood or style and the configuration that defines it.
type Entry struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	Path string `json:"path" yaml:"path" validate:"required"`
}

// Catalog is an ordered table of selectable moods or styles. Names match
// case-insensitively.
type Catalog []Entry

// Find returns the index of the entry named name.
func (c Catalog) Find(name string) (int, bool) {
	for i, e := range c {
		if strings.EqualFold(e.Name, name) {
			return i, true
		}
	}
	return 0, false
}

// At returns the entry at i modulo the catalog size. An empty catalog
// returns the zero Entry.
func (c Catalog) At(i int) Entry {
	n := len(c)
	if n == 0 {
		return Entry{}
	}
	return c[((i%n)+n)%n]
}

// DefaultStyles is the style table a device ships with.
var DefaultStyles = Catalog{
	{Name: "hazel", Path: "hazel/config.eye"},
	{Name: "anime", Path: "anime/config.eye"},
	{Name: "big_blue", Path: "big_blue/config.eye"},
	{Name: "demon", Path: "demon/config.eye"},
	{Name: "doom_red", Path: "doom-red/config.eye"},
	{Name: "doom_spiral", Path: "doom-spiral/config.eye"},
	{Name: "fish", Path: "fish_eyes/config.eye"},
	{Name: "fizzgig", Path: "fizzgig/config.eye"},
	{Name: "hypno_red", Path: "hypno_red/config.eye"},
	{Name: "reflection", Path: "reflection/config.eye"},
	{Name: "skull", Path: "skull/config.eye"},
	{Name: "snake", Path: "snake_green/config.eye"},
	{Name: "spikes", Path: "spikes/config.eye"},
	{Name: "toonstripe", Path: "toonstripe/config.eye"},
}
