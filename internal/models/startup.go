// Package models defines the data structures shared by the scanner, manager,
// settings store and monitor. Structures are serialized to JSON for the
// persisted policy file and for the command shell's machine-readable output.
package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SourceType identifies the backing mechanism of a startup entry.
type SourceType string

const (
	SourceRegistry SourceType = "registry"
	SourceFolder   SourceType = "folder"
)

// StartupItem is one normalized auto-run entry, recomputed on every scan.
type StartupItem struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Path           string     `json:"path"`
	Command        string     `json:"command"`
	Icon           string     `json:"icon,omitempty"`
	Source         string     `json:"source"`
	SourceType     SourceType `json:"source_type"`
	SourceLocation string     `json:"source_location"`
	Enabled        bool       `json:"enabled"`
	Valid          bool       `json:"valid"`
}

// Behavior is the action the monitor applies to a matched window.
type Behavior string

const (
	BehaviorMinimize Behavior = "minimize"
	BehaviorClose    Behavior = "close"
)

// ParseBehavior validates a user-supplied behavior string.
func ParseBehavior(s string) (Behavior, error) {
	switch Behavior(strings.ToLower(strings.TrimSpace(s))) {
	case BehaviorMinimize:
		return BehaviorMinimize, nil
	case BehaviorClose:
		return BehaviorClose, nil
	default:
		return "", fmt.Errorf("invalid behavior %q (expected \"minimize\" or \"close\")", s)
	}
}

// StringSet is a set of strings that serializes as a sorted JSON array.
type StringSet map[string]struct{}

// NewStringSet returns a set holding the given values.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in lexicographic order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON implements json.Marshaler.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}

// AppSettings is the persisted user policy. A missing key in any map means
// the default: not opted in, minimize, no delay.
type AppSettings struct {
	AutoMinimizeItems     StringSet           `json:"auto_minimize_items"`
	ProcessNameMappings   map[string]string   `json:"process_name_mappings"`
	MinimizeBehaviors     map[string]Behavior `json:"minimize_behaviors"`
	MinimizeDelays        map[string]uint32   `json:"minimize_delays"`
	AutoExitAfterMinimize bool                `json:"auto_exit_after_minimize"`
}

// DefaultSettings returns an all-defaults policy with non-nil containers.
func DefaultSettings() AppSettings {
	return AppSettings{
		AutoMinimizeItems:   StringSet{},
		ProcessNameMappings: map[string]string{},
		MinimizeBehaviors:   map[string]Behavior{},
		MinimizeDelays:      map[string]uint32{},
	}
}

// Normalize replaces nil containers with empty ones. Decoding a file written
// by an older version may leave fields absent.
func (s *AppSettings) Normalize() {
	if s.AutoMinimizeItems == nil {
		s.AutoMinimizeItems = StringSet{}
	}
	if s.ProcessNameMappings == nil {
		s.ProcessNameMappings = map[string]string{}
	}
	if s.MinimizeBehaviors == nil {
		s.MinimizeBehaviors = map[string]Behavior{}
	}
	if s.MinimizeDelays == nil {
		s.MinimizeDelays = map[string]uint32{}
	}
}

// Clone returns a deep copy.
func (s AppSettings) Clone() AppSettings {
	out := AppSettings{
		AutoMinimizeItems:     make(StringSet, len(s.AutoMinimizeItems)),
		ProcessNameMappings:   make(map[string]string, len(s.ProcessNameMappings)),
		MinimizeBehaviors:     make(map[string]Behavior, len(s.MinimizeBehaviors)),
		MinimizeDelays:        make(map[string]uint32, len(s.MinimizeDelays)),
		AutoExitAfterMinimize: s.AutoExitAfterMinimize,
	}
	for k := range s.AutoMinimizeItems {
		out.AutoMinimizeItems[k] = struct{}{}
	}
	for k, v := range s.ProcessNameMappings {
		out.ProcessNameMappings[k] = v
	}
	for k, v := range s.MinimizeBehaviors {
		out.MinimizeBehaviors[k] = v
	}
	for k, v := range s.MinimizeDelays {
		out.MinimizeDelays[k] = v
	}
	return out
}

// BehaviorFor returns the configured behavior for an item, defaulting to minimize.
func (s AppSettings) BehaviorFor(itemID string) Behavior {
	if b, ok := s.MinimizeBehaviors[itemID]; ok {
		return b
	}
	return BehaviorMinimize
}

// DelayFor returns the configured delay in seconds, defaulting to zero.
func (s AppSettings) DelayFor(itemID string) uint32 {
	return s.MinimizeDelays[itemID]
}
