// Package settings is the single source of truth for the persisted user
// policy (which items are auto-minimized, how and when) and for the
// session-only bookkeeping the monitor keeps while the process runs.
//
// Every setter is a full read-modify-write-persist sequence: the policy file
// is rewritten atomically before the in-memory cache is replaced, so a
// failed write leaves both the file and the cache at their prior value.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Guliveer/umstartup/internal/models"
	"github.com/Guliveer/umstartup/internal/platform"
)

// FileName is the name of the policy file inside the settings directory.
const FileName = "settings.json"

// Store holds the policy cache and the session state.
type Store struct {
	dir    string
	clock  clockwork.Clock
	logger *zap.Logger

	// writeMu serializes setters so concurrent read-modify-write sequences
	// cannot lose each other's updates. It is never held by readers.
	writeMu sync.Mutex

	mu    sync.Mutex
	cache models.AppSettings

	sessionMu sync.Mutex
	minimized map[string]struct{}
	execTimes map[string]int64
}

// New creates a Store persisting to dir. The cache starts at defaults until
// Load is called.
func New(dir string, clock clockwork.Clock, logger *zap.Logger) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		dir:       dir,
		clock:     clock,
		logger:    logger.Named("settings"),
		cache:     models.DefaultSettings(),
		minimized: make(map[string]struct{}),
		execTimes: make(map[string]int64),
	}
}

// Dir returns the settings directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the policy file path.
func (s *Store) Path() string { return filepath.Join(s.dir, FileName) }

// Load reads the policy file into the cache. A missing or corrupt file
// yields defaults; Load never fails.
func (s *Store) Load() models.AppSettings {
	loaded := models.DefaultSettings()

	data, err := os.ReadFile(s.Path())
	switch {
	case err == nil:
		var parsed models.AppSettings
		if err := json.Unmarshal(data, &parsed); err != nil {
			s.logger.Warn("Settings file is corrupt, using defaults",
				zap.String("file", s.Path()),
				zap.Error(err))
		} else {
			parsed.Normalize()
			loaded = parsed
		}
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("No settings file, using defaults", zap.String("file", s.Path()))
	default:
		s.logger.Warn("Failed to read settings file, using defaults",
			zap.String("file", s.Path()),
			zap.Error(err))
	}

	s.mu.Lock()
	s.cache = loaded
	s.mu.Unlock()
	return loaded.Clone()
}

// Get returns a snapshot of the cached policy. The caller owns the copy.
func (s *Store) Get() models.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Clone()
}

// Save persists settings and replaces the cache.
func (s *Store) Save(settings models.AppSettings) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.persist(settings.Clone())
}

// update applies mutate to a fresh snapshot and persists the result.
func (s *Store) update(mutate func(*models.AppSettings)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Get()
	mutate(&next)
	return s.persist(next)
}

// persist writes settings to a temp file and renames it over the policy
// file, then swaps the cache. Must be called with writeMu held.
func (s *Store) persist(settings models.AppSettings) error {
	settings.Normalize()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing settings: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing settings file: %w", err)
	}

	s.mu.Lock()
	s.cache = settings
	s.mu.Unlock()
	return nil
}

// Reset deletes the policy file and any temp files a failed write left
// behind, then removes the settings directory if nothing else lives there.
// A directory that never existed is not an error. Session state is untouched.
func (s *Store) Reset() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing settings file: %w", err)
	}
	leftovers, err := filepath.Glob(filepath.Join(s.dir, FileName+".*.tmp"))
	if err != nil {
		return fmt.Errorf("matching temp files: %w", err)
	}
	for _, tmp := range leftovers {
		if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing temp file: %w", err)
		}
	}
	if entries, err := os.ReadDir(s.dir); err == nil && len(entries) == 0 {
		if err := os.Remove(s.dir); err != nil {
			s.logger.Debug("Settings directory kept", zap.String("dir", s.dir), zap.Error(err))
		}
	}

	s.mu.Lock()
	s.cache = models.DefaultSettings()
	s.mu.Unlock()
	s.logger.Info("Settings reset", zap.String("path", s.Path()))
	return nil
}

// SetAutoMinimize opts an item in or out of post-launch suppression.
func (s *Store) SetAutoMinimize(itemID string, enabled bool) error {
	return s.update(func(a *models.AppSettings) {
		if enabled {
			a.AutoMinimizeItems[itemID] = struct{}{}
		} else {
			delete(a.AutoMinimizeItems, itemID)
		}
	})
}

// IsAutoMinimizeEnabled reports whether an item is opted in.
func (s *Store) IsAutoMinimizeEnabled(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.AutoMinimizeItems.Has(itemID)
}

// SetProcessNameMapping overrides the process name watched for an item. The
// name is stored in the form observed processes are compared in, so
// "Foo.exe" and "foo" are the same override. An empty name removes it.
func (s *Store) SetProcessNameMapping(itemID, processName string) error {
	name := platform.NormalizeProcessName(processName)
	return s.update(func(a *models.AppSettings) {
		if name == "" {
			delete(a.ProcessNameMappings, itemID)
		} else {
			a.ProcessNameMappings[itemID] = name
		}
	})
}

// ProcessNameMapping returns the override for an item, if any.
func (s *Store) ProcessNameMapping(itemID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.cache.ProcessNameMappings[itemID]
	return name, ok
}

// SetMinimizeBehavior sets the action for an item. Minimize is the default
// and is stored as the absence of an entry.
func (s *Store) SetMinimizeBehavior(itemID string, behavior models.Behavior) error {
	if _, err := models.ParseBehavior(string(behavior)); err != nil {
		return err
	}
	return s.update(func(a *models.AppSettings) {
		if behavior == models.BehaviorMinimize {
			delete(a.MinimizeBehaviors, itemID)
		} else {
			a.MinimizeBehaviors[itemID] = behavior
		}
	})
}

// MinimizeBehavior returns the action for an item.
func (s *Store) MinimizeBehavior(itemID string) models.Behavior {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.BehaviorFor(itemID)
}

// SetMinimizeDelay sets the delay in seconds for an item. nil or zero
// restores the default (no entry).
func (s *Store) SetMinimizeDelay(itemID string, seconds *uint32) error {
	return s.update(func(a *models.AppSettings) {
		if seconds == nil || *seconds == 0 {
			delete(a.MinimizeDelays, itemID)
		} else {
			a.MinimizeDelays[itemID] = *seconds
		}
	})
}

// MinimizeDelay returns the delay in seconds for an item.
func (s *Store) MinimizeDelay(itemID string) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.DelayFor(itemID)
}

// SetAutoExitEnabled sets the global auto-exit flag.
func (s *Store) SetAutoExitEnabled(enabled bool) error {
	return s.update(func(a *models.AppSettings) {
		a.AutoExitAfterMinimize = enabled
	})
}

// AutoExitEnabled reports the global auto-exit flag.
func (s *Store) AutoExitEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.AutoExitAfterMinimize
}
