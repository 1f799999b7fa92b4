//go:build !windows

package elevation

import "os"

const hintFormat = "This change requires root privileges.\n\nRun with sudo:\n  sudo %s"

// IsElevated reports whether the process runs as root.
func IsElevated() (bool, error) {
	return os.Geteuid() == 0, nil
}
