//go:build unix

package gaze

import (
	"fmt"
	"os"
	"syscall"
)

// ExecResetter restarts the process by replacing it with a fresh copy of
// the running executable, keeping its arguments and environment. State
// held in FileRegisters survives; everything in memory does not.
type ExecResetter struct{}

// Reset replaces the process image. It only returns on failure.
func (ExecResetter) Reset() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	return syscall.Exec(exe, os.Args, os.Environ()) //nolint:gosec // Re-executes our own binary
}

var _ Resetter = ExecResetter{}
