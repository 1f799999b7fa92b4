//go:build !windows

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	return []string{
		filepath.Join(home, ".config", "umstartup", "config.yaml"),
		"/etc/umstartup/config.yaml",
	}
}

func defaultSettingsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".umstartup"
	}
	return filepath.Join(home, ".config", "umstartup")
}
