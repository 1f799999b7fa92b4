//go:build windows

// Windows-specific Platform implementation.
// Registry and window access go through golang.org/x/sys/windows, shortcut
// resolution through COM (go-ole) and process names through gopsutil.
package platform

import (
	"os"
	"path/filepath"
)

const startupSubdir = `Microsoft\Windows\Start Menu\Programs\Startup`

// WindowsPlatform implements Platform for Windows systems.
type WindowsPlatform struct{}

// New creates a new Windows platform instance.
func New() Platform {
	return &WindowsPlatform{}
}

// Name returns the platform identifier.
func (p *WindowsPlatform) Name() string { return "windows" }

func (p *WindowsPlatform) Registry() Registry              { return windowsRegistry{} }
func (p *WindowsPlatform) Files() Files                    { return OSFiles{} }
func (p *WindowsPlatform) Windows() WindowSystem           { return windowsWindowSystem{} }
func (p *WindowsPlatform) Shortcuts() ShortcutResolver     { return windowsShortcuts{} }
func (p *WindowsPlatform) Icons() IconExtractor            { return NoIcons{} }
func (p *WindowsPlatform) Descriptions() DescriptionReader { return windowsDescriptions{} }
func (p *WindowsPlatform) Environment() EnvExpander        { return windowsEnv{} }

// StartupFolders returns the per-user (%APPDATA%) and all-users (%ProgramData%)
// startup folders that exist.
func (p *WindowsPlatform) StartupFolders() []StartupFolder {
	candidates := []StartupFolder{
		{Path: joinEnv("APPDATA", startupSubdir), Label: "User Startup Folder"},
		{Path: joinEnv("ProgramData", startupSubdir), Label: "All Users Startup Folder", AllUsers: true},
	}
	var folders []StartupFolder
	for _, f := range candidates {
		if f.Path == "" {
			continue
		}
		if info, err := os.Stat(f.Path); err == nil && info.IsDir() {
			folders = append(folders, f)
		}
	}
	return folders
}

func joinEnv(env, sub string) string {
	base := os.Getenv(env)
	if base == "" {
		return ""
	}
	return filepath.Join(base, sub)
}
