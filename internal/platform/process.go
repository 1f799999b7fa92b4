package platform

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// processName looks up the executable name of a live process via gopsutil
// and normalizes it to the form the monitor compares against: lower-case,
// without the .exe extension.
func processName(pid uint32) (string, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", err
	}
	name, err := p.Name()
	if err != nil {
		return "", err
	}
	return NormalizeProcessName(name), nil
}

// NormalizeProcessName lower-cases a process or executable base name and
// strips a trailing .exe.
func NormalizeProcessName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".exe")
}
