// Package app wires the scanner, manager, settings store and monitor
// together and exposes the operations the command shell calls. Every method
// maps onto one core operation.
package app

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Guliveer/umstartup/internal/autostart"
	"github.com/Guliveer/umstartup/internal/manager"
	"github.com/Guliveer/umstartup/internal/models"
	"github.com/Guliveer/umstartup/internal/monitor"
	"github.com/Guliveer/umstartup/internal/platform"
	"github.com/Guliveer/umstartup/internal/scanner"
	"github.com/Guliveer/umstartup/internal/settings"
)

// Options configures an App.
type Options struct {
	SettingsDir  string
	PollInterval time.Duration
	Clock        clockwork.Clock
	// Exit terminates the host when the monitor's auto-exit fires.
	Exit func()
}

// App is the composition root.
type App struct {
	platform  platform.Platform
	scanner   *scanner.Scanner
	manager   *manager.Manager
	settings  *settings.Store
	monitor   *monitor.Monitor
	autostart autostart.Manager
	logger    *zap.Logger
}

// New builds an App on p and loads the persisted policy.
func New(p platform.Platform, opts Options, logger *zap.Logger) *App {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	store := settings.New(opts.SettingsDir, clock, logger)
	store.Load()

	monOpts := []monitor.Option{
		monitor.WithClock(clock),
		monitor.WithInterval(opts.PollInterval),
	}
	if opts.Exit != nil {
		monOpts = append(monOpts, monitor.WithExit(opts.Exit))
	}

	return &App{
		platform:  p,
		scanner:   scanner.New(p, logger),
		manager:   manager.New(p, logger),
		settings:  store,
		monitor:   monitor.New(store, p.Windows(), logger, monOpts...),
		autostart: autostart.New(p.Registry()),
		logger:    logger,
	}
}

// Scan enumerates every startup item and registers each with the monitor.
func (a *App) Scan() []models.StartupItem {
	items := a.scanner.Scan()
	for _, it := range items {
		a.monitor.Register(it.ID, it.Path)
	}
	return items
}

// FindItem rescans and returns the item with the given id.
func (a *App) FindItem(id string) (models.StartupItem, error) {
	for _, it := range a.Scan() {
		if it.ID == id {
			return it, nil
		}
	}
	return models.StartupItem{}, &manager.Error{Kind: manager.KindNotFound, Op: "find", Item: id}
}

// Toggle enables or disables the item with the given id.
func (a *App) Toggle(id string, enable bool) (models.StartupItem, error) {
	item, err := a.FindItem(id)
	if err != nil {
		return item, err
	}
	if err := a.manager.Toggle(item, enable); err != nil {
		return item, err
	}
	item.Enabled = enable
	return item, nil
}

// Delete removes the item with the given id from its source.
func (a *App) Delete(id string) (models.StartupItem, error) {
	item, err := a.FindItem(id)
	if err != nil {
		return item, err
	}
	if err := a.manager.Delete(item); err != nil {
		return item, err
	}
	a.monitor.Unregister(item.ID)
	return item, nil
}

// Settings returns a snapshot of the persisted policy.
func (a *App) Settings() models.AppSettings { return a.settings.Get() }

// SettingsPath returns the location of the policy file.
func (a *App) SettingsPath() string { return a.settings.Path() }

func (a *App) SetAutoMinimize(id string, enabled bool) error {
	return a.settings.SetAutoMinimize(id, enabled)
}

func (a *App) IsAutoMinimizeEnabled(id string) bool {
	return a.settings.IsAutoMinimizeEnabled(id)
}

func (a *App) SetProcessNameMapping(id, name string) error {
	return a.settings.SetProcessNameMapping(id, name)
}

func (a *App) ProcessNameMapping(id string) (string, bool) {
	return a.settings.ProcessNameMapping(id)
}

// SetMinimizeBehavior validates and stores the behavior for an item.
func (a *App) SetMinimizeBehavior(id, behavior string) error {
	b, err := models.ParseBehavior(behavior)
	if err != nil {
		return err
	}
	return a.settings.SetMinimizeBehavior(id, b)
}

func (a *App) MinimizeBehavior(id string) models.Behavior {
	return a.settings.MinimizeBehavior(id)
}

func (a *App) SetMinimizeDelay(id string, seconds *uint32) error {
	return a.settings.SetMinimizeDelay(id, seconds)
}

func (a *App) MinimizeDelay(id string) uint32 {
	return a.settings.MinimizeDelay(id)
}

func (a *App) SetAutoExitEnabled(enabled bool) error {
	return a.settings.SetAutoExitEnabled(enabled)
}

func (a *App) AutoExitEnabled() bool {
	return a.settings.AutoExitEnabled()
}

// ResetSettings deletes the persisted policy.
func (a *App) ResetSettings() error {
	return a.settings.Reset()
}

// MinimizeTimes returns the session's action times keyed by item id.
func (a *App) MinimizeTimes() map[string]int64 {
	return a.settings.AllMinimizeTimes()
}

// StartMonitor starts the poll loop; false means it was already running.
func (a *App) StartMonitor(isAutostart bool) bool {
	return a.monitor.Start(isAutostart)
}

// StopMonitor requests the poll loop to stop.
func (a *App) StopMonitor() { a.monitor.Stop() }

// MonitorDone is closed when the current poll loop exits.
func (a *App) MonitorDone() <-chan struct{} { return a.monitor.Done() }

// MonitorStatus reports whether the loop runs and how many items are active.
func (a *App) MonitorStatus() (bool, int) { return a.monitor.Status() }

// SelfAutostart returns the manager for the tool's own logon entry.
func (a *App) SelfAutostart() autostart.Manager { return a.autostart }

// PlatformName returns the name of the backing platform.
func (a *App) PlatformName() string { return a.platform.Name() }

// String describes the app for logs.
func (a *App) String() string {
	return fmt.Sprintf("umstartup(platform=%s, settings=%s)", a.platform.Name(), a.settings.Path())
}
