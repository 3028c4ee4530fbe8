package gaze

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Registers is a pair of 32-bit words that survive a soft reset but not a
// power cycle.
type Registers interface {
	Load() ([2]uint32, error)
	Store(words [2]uint32) error
}

// MemoryRegisters holds the words in memory. PowerOn clears them the way
// a power cycle clears backup registers.
type MemoryRegisters struct {
	mu    sync.Mutex
	words [2]uint32
}

// Load returns the stored words.
func (r *MemoryRegisters) Load() ([2]uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.words, nil
}

// Store replaces the stored words.
func (r *MemoryRegisters) Store(words [2]uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.words = words
	return nil
}

// PowerOn clears both words.
func (r *MemoryRegisters) PowerOn() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.words = [2]uint32{}
}

// FileRegisters keeps the words in a small file. Placed on a tmpfs such as
// /run, the file survives a process restart and disappears on power-off,
// which is exactly the lifetime of backup registers.
type FileRegisters struct {
	path string
}

// NewFileRegisters creates registers backed by path.
func NewFileRegisters(path string) *FileRegisters {
	return &FileRegisters{path: path}
}

// Load reads the words. A missing file reads as zero, as after power-on.
func (r *FileRegisters) Load() ([2]uint32, error) {
	var words [2]uint32
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return words, nil
		}
		return words, fmt.Errorf("failed to read registers %s: %w", r.path, err)
	}
	if len(data) != 8 {
		return words, fmt.Errorf("registers %s: %w", r.path, ErrCorruptState)
	}
	words[0] = binary.LittleEndian.Uint32(data[0:4])
	words[1] = binary.LittleEndian.Uint32(data[4:8])
	return words, nil
}

// Store writes the words, replacing the file atomically.
func (r *FileRegisters) Store(words [2]uint32) error {
	var data [8]byte
	binary.LittleEndian.PutUint32(data[0:4], words[0])
	binary.LittleEndian.PutUint32(data[4:8], words[1])

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".gaze-registers-*")
	if err != nil {
		return fmt.Errorf("failed to store registers: %w", err)
	}
	if _, err := tmp.Write(data[:]); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store registers: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store registers: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store registers: %w", err)
	}
	return nil
}

// Ensure both implementations satisfy Registers.
var (
	_ Registers = (*MemoryRegisters)(nil)
	_ Registers = (*FileRegisters)(nil)
)
