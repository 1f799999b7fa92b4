// Package autostart registers the tool itself to launch at logon. The entry
// is a per-user run value whose command carries the --autostart flag, which
// is how a launch at logon is told apart from a manual one.
package autostart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Guliveer/umstartup/internal/platform"
)

const (
	// EntryName is the run value written for the tool.
	EntryName = "UMStartupManager"

	// Flag is appended to the command line of the registered entry.
	Flag = "--autostart"

	runPath = `Software\Microsoft\Windows\CurrentVersion\Run`
)

// Manager provides autostart installation.
type Manager interface {
	IsInstalled() (bool, error)
	Install(execPath string) error
	Uninstall() error
	EntryName() string
}

// registryManager implements Manager with a value under HKCU Run.
type registryManager struct {
	registry platform.Registry
}

// New returns a Manager backed by the per-user run key of reg.
func New(reg platform.Registry) Manager {
	return &registryManager{registry: reg}
}

// EntryName returns the run value name.
func (r *registryManager) EntryName() string { return EntryName }

// Command returns the command line registered for execPath.
func Command(execPath string) string {
	return `"` + execPath + `" ` + Flag
}

// IsInstalled reports whether the run value exists.
func (r *registryManager) IsInstalled() (bool, error) {
	v, err := r.registry.ReadValue(platform.CurrentUser, runPath, EntryName)
	if errors.Is(err, platform.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading autostart entry: %w", err)
	}
	return strings.TrimSpace(v.Text) != "", nil
}

// Install writes the run value, replacing any previous command.
func (r *registryManager) Install(execPath string) error {
	if execPath == "" {
		return fmt.Errorf("executable path is required")
	}
	if err := r.registry.WriteString(platform.CurrentUser, runPath, EntryName, Command(execPath)); err != nil {
		return fmt.Errorf("writing autostart entry: %w", err)
	}
	return nil
}

// Uninstall removes the run value. A missing value is not an error.
func (r *registryManager) Uninstall() error {
	err := r.registry.DeleteValue(platform.CurrentUser, runPath, EntryName)
	if err != nil && !errors.Is(err, platform.ErrNotExist) {
		return fmt.Errorf("deleting autostart entry: %w", err)
	}
	return nil
}

// IsAutostartLaunch reports whether args contain the autostart flag.
func IsAutostartLaunch(args []string) bool {
	for _, a := range args {
		if a == Flag {
			return true
		}
	}
	return false
}
