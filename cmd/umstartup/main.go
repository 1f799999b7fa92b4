// Package main is the entry point for the startup manager. It lists, enables,
// disables and deletes logon entries, edits the auto-minimize policy and runs
// the window monitor, either on demand or when launched at logon with
// --autostart.
package main

import (
	"fmt"
	"os"

	"github.com/Guliveer/umstartup/internal/app"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	root := newRootCommand(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, app.UserMessage(err))
		os.Exit(1)
	}
}
