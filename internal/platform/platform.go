// Package platform provides the OS abstraction layer used by the scanner,
// manager and monitor. Every OS-proximate call goes through one of the
// capability interfaces below; Windows gets the real implementation and
// other builds get an inert stub so the core stays testable everywhere.
package platform

import "errors"

var (
	// ErrNotExist is returned when a key, value or file does not exist.
	ErrNotExist = errors.New("does not exist")

	// ErrAccessDenied is returned when the caller lacks the privilege to
	// read or modify a key, value or file.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnsupported is returned by capabilities this platform lacks.
	ErrUnsupported = errors.New("not supported on this platform")
)

// Hive is a registry root.
type Hive int

const (
	CurrentUser Hive = iota
	LocalMachine
)

// String returns the long root name used in source locations.
func (h Hive) String() string {
	switch h {
	case CurrentUser:
		return "HKEY_CURRENT_USER"
	case LocalMachine:
		return "HKEY_LOCAL_MACHINE"
	default:
		return "UNKNOWN"
	}
}

// Short returns the abbreviated root name used in human labels.
func (h Hive) Short() string {
	switch h {
	case CurrentUser:
		return "HKCU"
	case LocalMachine:
		return "HKLM"
	default:
		return "?"
	}
}

// ValueType is the stored type of a registry value.
type ValueType int

const (
	TypeOther ValueType = iota
	TypeString
	TypeExpandString
	TypeBinary
)

// Value is a single named registry value. Text is set for string types,
// Data for binary ones.
type Value struct {
	Name string
	Type ValueType
	Text string
	Data []byte
}

// Registry is the hierarchical key/value backing store.
type Registry interface {
	// Values enumerates every value directly under path.
	Values(hive Hive, path string) ([]Value, error)

	// ReadValue reads one value.
	ReadValue(hive Hive, path, name string) (Value, error)

	// WriteBinary stores a REG_BINARY value, creating the key if absent.
	WriteBinary(hive Hive, path, name string, data []byte) error

	// WriteString stores a REG_SZ value, creating the key if absent.
	WriteString(hive Hive, path, name, value string) error

	// DeleteValue removes one value.
	DeleteValue(hive Hive, path, name string) error
}

// Entry is one directory entry of a startup folder.
type Entry struct {
	Name  string
	IsDir bool
}

// Files is the filesystem backing store for startup folders.
type Files interface {
	List(dir string) ([]Entry, error)
	Rename(dir, from, to string) error
	Remove(dir, name string) error
	Exists(path string) bool
}

// Window is a visible top-level window and the process that owns it.
type Window struct {
	Handle uintptr
	PID    uint32
}

// WindowSystem is the process/window collaborator used by the monitor.
type WindowSystem interface {
	VisibleWindows() ([]Window, error)
	ProcessName(pid uint32) (string, error)
	Hide(handle uintptr) error
	RequestClose(handle uintptr) error
}

// ShortcutResolver resolves a shell link file to its target path.
type ShortcutResolver interface {
	Resolve(lnkPath string) (string, error)
}

// IconExtractor produces a self-describing embedded image (a data URI) for
// an executable.
type IconExtractor interface {
	Icon(path string) (string, error)
}

// DescriptionReader reads the human-readable file description of an executable.
type DescriptionReader interface {
	Description(path string) (string, error)
}

// EnvExpander expands %NAME% references in REG_EXPAND_SZ values.
type EnvExpander interface {
	Expand(s string) (string, error)
}

// StartupFolder is a filesystem directory whose contents run at logon.
type StartupFolder struct {
	Path     string
	Label    string
	AllUsers bool
}

// Platform bundles the capabilities of one operating system.
type Platform interface {
	// Name returns the platform name (windows, stub).
	Name() string

	Registry() Registry
	Files() Files
	Windows() WindowSystem
	Shortcuts() ShortcutResolver
	Icons() IconExtractor
	Descriptions() DescriptionReader
	Environment() EnvExpander

	// StartupFolders returns the per-user and all-users startup folders that
	// exist on this machine.
	StartupFolders() []StartupFolder
}
