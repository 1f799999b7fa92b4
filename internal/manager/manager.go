// Package manager enables, disables and deletes startup entries at their
// source. Operations are synchronous and single-shot; a NotFound result means
// the caller should rescan rather than retry.
package manager

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/umstartup/internal/autorun"
	"github.com/Guliveer/umstartup/internal/models"
	"github.com/Guliveer/umstartup/internal/platform"
)

// Manager mutates the run keys and startup folders.
type Manager struct {
	registry platform.Registry
	files    platform.Files
	logger   *zap.Logger
}

// New creates a Manager over the backing stores of p.
func New(p platform.Platform, logger *zap.Logger) *Manager {
	return &Manager{
		registry: p.Registry(),
		files:    p.Files(),
		logger:   logger.Named("manager"),
	}
}

// Toggle enables or disables an item. Applying the current state again is
// a no-op that succeeds.
func (m *Manager) Toggle(item models.StartupItem, enable bool) error {
	var err error
	switch item.SourceType {
	case models.SourceRegistry:
		err = m.toggleRegistry(item, enable)
	case models.SourceFolder:
		err = m.toggleFolder(item, enable)
	default:
		err = notFound("toggle", item.Name)
	}
	if err != nil {
		return err
	}
	m.logger.Info("Startup item toggled",
		zap.String("id", item.ID),
		zap.String("name", item.Name),
		zap.Bool("enabled", enable))
	return nil
}

// Delete removes an item from its source.
func (m *Manager) Delete(item models.StartupItem) error {
	var err error
	switch item.SourceType {
	case models.SourceRegistry:
		err = m.deleteRegistry(item)
	case models.SourceFolder:
		err = m.deleteFolder(item)
	default:
		err = notFound("delete", item.Name)
	}
	if err != nil {
		return err
	}
	m.logger.Info("Startup item deleted",
		zap.String("id", item.ID),
		zap.String("name", item.Name))
	return nil
}

// toggleRegistry writes the approval shadow; the run value is never touched.
func (m *Manager) toggleRegistry(item models.StartupItem, enable bool) error {
	key, ok := autorun.LookupRunKey(item.SourceLocation)
	if !ok {
		return notFound("toggle", item.Name)
	}
	if _, err := m.registry.ReadValue(key.Hive, key.Path, item.Name); err != nil {
		return classify("toggle", item.Name, KindRegistry, err)
	}
	if err := m.registry.WriteBinary(key.Hive, key.ApprovedPath, item.Name, autorun.ApprovalFlag(enable)); err != nil {
		return classify("toggle", item.Name, KindRegistry, err)
	}
	return nil
}

func (m *Manager) toggleFolder(item models.StartupItem, enable bool) error {
	entry, err := m.findFolderEntry(item, "toggle")
	if err != nil {
		return err
	}
	if entry.Enabled == enable {
		return nil
	}

	to := entry.BaseName
	if !enable {
		to = entry.FileName + autorun.DisabledSuffix
	}
	if err := m.files.Rename(item.SourceLocation, entry.FileName, to); err != nil {
		return classify("toggle", item.Name, KindIO, err)
	}
	return nil
}

// deleteRegistry removes the run value, then best-effort its approval value.
func (m *Manager) deleteRegistry(item models.StartupItem) error {
	key, ok := autorun.LookupRunKey(item.SourceLocation)
	if !ok {
		return notFound("delete", item.Name)
	}
	if err := m.registry.DeleteValue(key.Hive, key.Path, item.Name); err != nil {
		return classify("delete", item.Name, KindRegistry, err)
	}
	if err := m.registry.DeleteValue(key.Hive, key.ApprovedPath, item.Name); err != nil {
		m.logger.Debug("Approval value not removed",
			zap.String("name", item.Name),
			zap.Error(err))
	}
	return nil
}

func (m *Manager) deleteFolder(item models.StartupItem) error {
	entry, err := m.findFolderEntry(item, "delete")
	if err != nil {
		return err
	}
	if err := m.files.Remove(item.SourceLocation, entry.FileName); err != nil {
		return classify("delete", item.Name, KindIO, err)
	}
	return nil
}

// findFolderEntry locates the file backing a folder item. The entry whose id
// matches the item wins; an exact display name match comes next, then the
// first entry whose base name starts with the item name.
func (m *Manager) findFolderEntry(item models.StartupItem, op string) (autorun.FolderEntry, error) {
	listed, err := m.files.List(item.SourceLocation)
	if err != nil {
		return autorun.FolderEntry{}, classify(op, item.Name, KindIO, err)
	}

	var exact, prefix *autorun.FolderEntry
	for _, e := range listed {
		if e.IsDir {
			continue
		}
		entry := autorun.ParseFolderEntry(e.Name)
		if entry.Kind == autorun.EntryUnknown {
			continue
		}
		if item.ID != "" && autorun.ItemID(item.SourceLocation, entry.BaseName) == item.ID {
			return entry, nil
		}
		if exact == nil && entry.Name == item.Name {
			found := entry
			exact = &found
		}
		if prefix == nil && item.Name != "" && strings.HasPrefix(entry.BaseName, item.Name) {
			found := entry
			prefix = &found
		}
	}
	switch {
	case exact != nil:
		return *exact, nil
	case prefix != nil:
		return *prefix, nil
	}
	return autorun.FolderEntry{}, notFound(op, item.Name)
}
