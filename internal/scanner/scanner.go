// Package scanner enumerates the run keys and startup folders and normalizes
// every entry into a models.StartupItem. Scanning never mutates a backing
// store and never fails as a whole: an unreadable key, folder or entry is
// logged and skipped.
package scanner

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/umstartup/internal/autorun"
	"github.com/Guliveer/umstartup/internal/models"
	"github.com/Guliveer/umstartup/internal/platform"
)

// Scanner builds the startup item list from a platform's backing stores.
type Scanner struct {
	registry     platform.Registry
	files        platform.Files
	shortcuts    platform.ShortcutResolver
	icons        platform.IconExtractor
	descriptions platform.DescriptionReader
	env          platform.EnvExpander
	folders      []platform.StartupFolder
	logger       *zap.Logger
}

// New creates a Scanner over the capabilities of p.
func New(p platform.Platform, logger *zap.Logger) *Scanner {
	return &Scanner{
		registry:     p.Registry(),
		files:        p.Files(),
		shortcuts:    p.Shortcuts(),
		icons:        p.Icons(),
		descriptions: p.Descriptions(),
		env:          p.Environment(),
		folders:      p.StartupFolders(),
		logger:       logger.Named("scanner"),
	}
}

// Scan returns every startup entry, ordered case-insensitively by name.
func (s *Scanner) Scan() []models.StartupItem {
	items := s.scanRegistry()
	items = append(items, s.scanFolders()...)

	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})

	s.logger.Debug("Scan complete", zap.Int("items", len(items)))
	return items
}

func (s *Scanner) scanRegistry() []models.StartupItem {
	var items []models.StartupItem

	for _, key := range autorun.RunKeys {
		values, err := s.registry.Values(key.Hive, key.Path)
		if err != nil {
			if !errors.Is(err, platform.ErrNotExist) {
				s.logger.Warn("Failed to enumerate run key",
					zap.String("key", key.Location()),
					zap.Error(err))
			}
			continue
		}

		for _, v := range values {
			if v.Type != platform.TypeString && v.Type != platform.TypeExpandString {
				continue
			}
			command := strings.Trim(v.Text, "\x00")
			if strings.TrimSpace(command) == "" {
				continue
			}

			resolved := command
			if v.Type == platform.TypeExpandString {
				resolved = s.expand(command)
			}
			path := autorun.ParseCommandPath(resolved)
			location := key.Location()

			items = append(items, models.StartupItem{
				ID:             autorun.ItemID(location, v.Name),
				Name:           v.Name,
				Description:    s.description(path),
				Path:           path,
				Command:        command,
				Icon:           s.icon(path),
				Source:         key.Label,
				SourceType:     models.SourceRegistry,
				SourceLocation: location,
				Enabled:        s.approved(key, v.Name),
				Valid:          s.files.Exists(path),
			})
		}
	}

	return items
}

// approved reads the approval shadow for a run value. A missing or
// unreadable shadow means enabled.
func (s *Scanner) approved(key autorun.RunKey, name string) bool {
	v, err := s.registry.ReadValue(key.Hive, key.ApprovedPath, name)
	if err != nil {
		return true
	}
	return !autorun.IsApprovalDisabled(v.Data)
}

func (s *Scanner) scanFolders() []models.StartupItem {
	var items []models.StartupItem

	for _, folder := range s.folders {
		entries, err := s.files.List(folder.Path)
		if err != nil {
			if !errors.Is(err, platform.ErrNotExist) {
				s.logger.Warn("Failed to list startup folder",
					zap.String("folder", folder.Path),
					zap.Error(err))
			}
			continue
		}

		for _, e := range entries {
			if e.IsDir {
				continue
			}
			entry := autorun.ParseFolderEntry(e.Name)
			if entry.Hidden() || entry.Kind == autorun.EntryUnknown {
				continue
			}

			onDisk := filepath.Join(folder.Path, entry.FileName)
			var target string
			var valid bool
			if entry.Kind == autorun.EntryShortcut {
				target = s.resolveShortcut(onDisk)
				valid = s.files.Exists(target)
			} else {
				// A disabled executable still runs under its real name once enabled.
				target = filepath.Join(folder.Path, entry.BaseName)
				valid = s.files.Exists(onDisk)
			}
			if target == "" {
				continue
			}

			items = append(items, models.StartupItem{
				ID:             autorun.ItemID(folder.Path, entry.BaseName),
				Name:           entry.Name,
				Description:    s.description(target),
				Path:           target,
				Command:        target,
				Icon:           s.icon(target),
				Source:         folder.Label,
				SourceType:     models.SourceFolder,
				SourceLocation: folder.Path,
				Enabled:        entry.Enabled,
				Valid:          valid,
			})
		}
	}

	return items
}

// expand resolves environment references, keeping the raw text when
// expansion fails.
func (s *Scanner) expand(command string) string {
	expanded, err := s.env.Expand(command)
	if err != nil {
		s.logger.Debug("Expansion failed", zap.String("command", command), zap.Error(err))
		return command
	}
	return expanded
}

// resolveShortcut returns the link target, or the link itself when the
// target cannot be read.
func (s *Scanner) resolveShortcut(lnk string) string {
	target, err := s.shortcuts.Resolve(lnk)
	if err != nil || strings.TrimSpace(target) == "" {
		s.logger.Debug("Shortcut target unresolved", zap.String("shortcut", lnk), zap.Error(err))
		return lnk
	}
	return target
}

func (s *Scanner) icon(path string) string {
	icon, err := s.icons.Icon(path)
	if err != nil {
		s.logger.Debug("Icon unavailable", zap.String("path", path), zap.Error(err))
		return ""
	}
	return icon
}

func (s *Scanner) description(path string) string {
	desc, err := s.descriptions.Description(path)
	if err != nil {
		s.logger.Debug("Description unavailable", zap.String("path", path), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(desc)
}
