// Package autorun holds the conventions shared by the scanner and the
// manager: which registry keys are run keys, where their approval shadow
// lives, how approval flags are encoded, how startup-folder files are marked
// disabled, how command lines resolve to executables and how stable item
// ids are derived.
package autorun

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/Guliveer/umstartup/internal/platform"
)

// DisabledSuffix marks a startup-folder file as disabled.
const DisabledSuffix = ".disabled"

const (
	approvalEnabledByte  = 0x02
	approvalDisabledByte = 0x03
	approvalFlagSize     = 12
)

const (
	runPath         = `Software\Microsoft\Windows\CurrentVersion\Run`
	runOncePath     = `Software\Microsoft\Windows\CurrentVersion\RunOnce`
	run32Path       = `Software\WOW6432Node\Microsoft\Windows\CurrentVersion\Run`
	approvedRun     = `Software\Microsoft\Windows\CurrentVersion\Explorer\StartupApproved\Run`
	approvedRunOnce = `Software\Microsoft\Windows\CurrentVersion\Explorer\StartupApproved\RunOnce`
	approvedRun32   = `Software\Microsoft\Windows\CurrentVersion\Explorer\StartupApproved\Run32`
)

// RunKey is a registry location whose values launch at logon, paired with
// the approval shadow key that records their enabled state.
type RunKey struct {
	Hive         platform.Hive
	Path         string
	ApprovedPath string
	Label        string
}

// Location is the fully qualified key path used as an item's source location.
func (k RunKey) Location() string {
	return k.Hive.String() + `\` + k.Path
}

// RunKeys lists every run key the scanner enumerates.
var RunKeys = []RunKey{
	{Hive: platform.CurrentUser, Path: runPath, ApprovedPath: approvedRun, Label: `HKCU\...\Run`},
	{Hive: platform.CurrentUser, Path: runOncePath, ApprovedPath: approvedRunOnce, Label: `HKCU\...\RunOnce`},
	{Hive: platform.LocalMachine, Path: runPath, ApprovedPath: approvedRun, Label: `HKLM\...\Run`},
	{Hive: platform.LocalMachine, Path: runOncePath, ApprovedPath: approvedRunOnce, Label: `HKLM\...\RunOnce`},
	{Hive: platform.LocalMachine, Path: run32Path, ApprovedPath: approvedRun32, Label: `HKLM\...\WOW6432Node\...\Run`},
}

// LookupRunKey finds the run key for a source location.
func LookupRunKey(location string) (RunKey, bool) {
	for _, k := range RunKeys {
		if strings.EqualFold(k.Location(), location) {
			return k, true
		}
	}
	return RunKey{}, false
}

// ApprovalFlag returns the fixed-width binary value written to the approval
// shadow for the requested state.
func ApprovalFlag(enabled bool) []byte {
	flag := make([]byte, approvalFlagSize)
	if enabled {
		flag[0] = approvalEnabledByte
	} else {
		flag[0] = approvalDisabledByte
	}
	return flag
}

// IsApprovalDisabled reports whether raw approval data marks the entry
// disabled. Absent or unrecognised data means enabled.
func IsApprovalDisabled(data []byte) bool {
	return len(data) > 0 && data[0] == approvalDisabledByte
}

// ItemID derives the stable id of an entry from its source location and name.
func ItemID(sourceLocation, name string) string {
	sum := sha256.Sum256([]byte(sourceLocation + ":" + name))
	return hex.EncodeToString(sum[:8])
}

// ParseCommandPath extracts the executable path from a run-value command
// line. A quoted path is taken verbatim; an unquoted one is cut just after
// the first ".exe"; otherwise the first whitespace-separated token is used.
func ParseCommandPath(command string) string {
	command = strings.TrimSpace(command)
	if strings.HasPrefix(command, `"`) {
		if end := strings.IndexByte(command[1:], '"'); end >= 0 {
			return command[1 : end+1]
		}
	}
	if i := indexFold(command, ".exe"); i >= 0 {
		return command[:i+len(".exe")]
	}
	if fields := strings.Fields(command); len(fields) > 0 {
		return fields[0]
	}
	return command
}

func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

// EntryKind is the kind of file found in a startup folder.
type EntryKind int

const (
	EntryUnknown EntryKind = iota
	EntryShortcut
	EntryExecutable
)

// FolderEntry is a startup-folder file name split into its parts.
type FolderEntry struct {
	FileName string // name on disk
	BaseName string // name with the disabled suffix stripped
	Name     string // display name: base name without .lnk/.exe
	Kind     EntryKind
	Enabled  bool
}

// ParseFolderEntry splits a startup-folder file name.
func ParseFolderEntry(fileName string) FolderEntry {
	e := FolderEntry{FileName: fileName, BaseName: fileName, Enabled: true}
	if hasSuffixFold(fileName, DisabledSuffix) {
		e.BaseName = fileName[:len(fileName)-len(DisabledSuffix)]
		e.Enabled = false
	}
	e.Name = e.BaseName
	switch {
	case hasSuffixFold(e.BaseName, ".lnk"):
		e.Kind = EntryShortcut
		e.Name = e.BaseName[:len(e.BaseName)-len(".lnk")]
	case hasSuffixFold(e.BaseName, ".exe"):
		e.Kind = EntryExecutable
		e.Name = e.BaseName[:len(e.BaseName)-len(".exe")]
	}
	return e
}

// Hidden reports whether the entry is a hidden/system file.
func (e FolderEntry) Hidden() bool {
	return strings.HasPrefix(e.BaseName, ".")
}
