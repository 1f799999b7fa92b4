package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/Guliveer/umstartup/internal/elevation"
	"github.com/Guliveer/umstartup/internal/manager"
)

// UserMessage renders an operation error for the user, distinguishing a
// vanished item from a privilege problem from anything else.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, manager.ErrNotFound):
		return "Startup item not found. It may have changed since the last scan; run 'list' and try again."
	case errors.Is(err, manager.ErrAccessDenied):
		msg := "Access denied."
		if hint := elevation.Hint(commandLine()); hint != "" {
			msg += " " + hint
		}
		return msg
	default:
		return "Operation failed: " + err.Error()
	}
}

func commandLine() string {
	args := append([]string{filepath.Base(os.Args[0])}, os.Args[1:]...)
	return strings.Join(args, " ")
}
