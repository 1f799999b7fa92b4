//go:build windows

package elevation

import (
	"fmt"

	"golang.org/x/sys/windows"
)

const hintFormat = "This change requires Administrator privileges.\n\nRight-click a terminal and 'Run as administrator', then run:\n  %s"

// IsElevated reports whether the process token is elevated.
func IsElevated() (bool, error) {
	var token windows.Token
	err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token)
	if err != nil {
		return false, fmt.Errorf("cannot check elevation: %w", err)
	}
	defer token.Close()

	return token.IsElevated(), nil
}
