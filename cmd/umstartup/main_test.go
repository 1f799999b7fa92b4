package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/umstartup/internal/manager"
	"github.com/Guliveer/umstartup/internal/models"
	"github.com/Guliveer/umstartup/internal/platform"
)

const runPath = `Software\Microsoft\Windows\CurrentVersion\Run`

type testEnv struct {
	t           *testing.T
	platform    *platform.Bundle
	settingsDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	reg := platform.NewMemoryRegistry()
	reg.SetString(platform.CurrentUser, runPath, "Foo", `C:\Apps\foo.exe --flag`)

	env := &testEnv{
		t:           t,
		platform:    &platform.Bundle{PlatformName: "test", RegistryStore: reg},
		settingsDir: t.TempDir(),
	}

	orig := newPlatform
	newPlatform = func() platform.Platform { return env.platform }
	t.Cleanup(func() { newPlatform = orig })
	return env
}

func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	root := newRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--settings-dir", e.settingsDir,
		"--config", filepath.Join(e.settingsDir, "absent.yaml"),
		"--log-level", "error",
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e *testEnv) items() []models.StartupItem {
	e.t.Helper()
	out, err := e.run("list", "--json")
	require.NoError(e.t, err)
	var items []models.StartupItem
	require.NoError(e.t, json.Unmarshal([]byte(out), &items))
	return items
}

func TestListAndToggle(t *testing.T) {
	env := newTestEnv(t)

	items := env.items()
	require.Len(t, items, 1)
	foo := items[0]
	assert.Equal(t, "Foo", foo.Name)
	assert.True(t, foo.Enabled)

	out, err := env.run("disable", foo.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Disabled Foo")
	assert.False(t, env.items()[0].Enabled)

	out, err = env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, foo.ID)
	assert.Contains(t, out, "disabled")

	_, err = env.run("enable", foo.ID)
	require.NoError(t, err)
	assert.True(t, env.items()[0].Enabled)
}

func TestUnknownID(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("delete", "0000000000000000")
	assert.True(t, errors.Is(err, manager.ErrNotFound))
}

func TestSettingsCommands(t *testing.T) {
	env := newTestEnv(t)
	id := env.items()[0].ID

	_, err := env.run("settings", "auto-minimize", id, "on")
	require.NoError(t, err)
	_, err = env.run("settings", "behavior", id, "close")
	require.NoError(t, err)
	_, err = env.run("settings", "delay", id, "5")
	require.NoError(t, err)
	_, err = env.run("settings", "process-name", id, "FooHelper")
	require.NoError(t, err)
	_, err = env.run("settings", "auto-exit", "on")
	require.NoError(t, err)

	out, err := env.run("settings", "show")
	require.NoError(t, err)
	var s models.AppSettings
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.True(t, s.AutoMinimizeItems.Has(id))
	assert.Equal(t, models.BehaviorClose, s.MinimizeBehaviors[id])
	assert.Equal(t, uint32(5), s.MinimizeDelays[id])
	assert.Equal(t, "foohelper", s.ProcessNameMappings[id])
	assert.True(t, s.AutoExitAfterMinimize)

	out, err = env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "close +5s (foohelper)")

	_, err = env.run("settings", "delay", id)
	require.NoError(t, err)
	_, err = env.run("settings", "behavior", id, "minimize")
	require.NoError(t, err)
	out, err = env.run("settings", "show")
	require.NoError(t, err)
	s = models.AppSettings{}
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.NotContains(t, s.MinimizeDelays, id)
	assert.NotContains(t, s.MinimizeBehaviors, id)

	_, err = env.run("settings", "behavior", id, "explode")
	assert.Error(t, err)
	_, err = env.run("settings", "auto-exit", "maybe")
	assert.Error(t, err)
	_, err = env.run("settings", "delay", id, "-1")
	assert.Error(t, err)

	_, err = env.run("settings", "reset")
	require.NoError(t, err)
	out, err = env.run("settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"auto_exit_after_minimize": false`)
}

func TestMonitorReturnsWhenNothingToDo(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run("monitor")
	require.NoError(t, err)
	assert.Contains(t, out, "Monitoring 0 item(s)")
	assert.Contains(t, out, "No windows handled in this session.")
}

type oneWindow struct {
	process string
	hidden  []uintptr
}

func (w *oneWindow) VisibleWindows() ([]platform.Window, error) {
	return []platform.Window{{Handle: 42, PID: 7}}, nil
}

func (w *oneWindow) ProcessName(uint32) (string, error) { return w.process, nil }

func (w *oneWindow) Hide(h uintptr) error {
	w.hidden = append(w.hidden, h)
	return nil
}

func (w *oneWindow) RequestClose(uintptr) error { return nil }

func TestMonitorPrintsHandledWindows(t *testing.T) {
	env := newTestEnv(t)
	win := &oneWindow{process: "foo.exe"}
	env.platform.WindowQueries = win
	id := env.items()[0].ID

	_, err := env.run("settings", "auto-minimize", id, "on")
	require.NoError(t, err)

	out, err := env.run("monitor")
	require.NoError(t, err)
	assert.Contains(t, out, id+"\t")
	assert.NotContains(t, out, "No windows handled")
	assert.Equal(t, []uintptr{42}, win.hidden)
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)
	id := env.items()[0].ID
	_, err := env.run("settings", "auto-minimize", id, "on")
	require.NoError(t, err)

	out, err := env.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Platform:     test")
	assert.Contains(t, out, "stopped")
	assert.Contains(t, out, "Active items: 1")
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "poll_interval: 1s")
	assert.Contains(t, out, "level: error")

	path := filepath.Join(t.TempDir(), "config.yaml")
	out, err = env.run("config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	_, err = env.run("config", "init", path)
	assert.Error(t, err, "existing file is not overwritten")
	_, err = env.run("config", "init", "--force", path)
	require.NoError(t, err)

	out, err = env.run("config", "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	_, err = env.run("config", "check", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSelfAutostart(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("self-autostart", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Launch at logon: false")

	_, err = env.run("self-autostart", "enable")
	require.NoError(t, err)
	out, err = env.run("self-autostart", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Launch at logon: true")

	_, err = env.run("self-autostart", "disable")
	require.NoError(t, err)
	out, err = env.run("self-autostart", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Launch at logon: false")
}

func TestParseSwitch(t *testing.T) {
	on, err := parseSwitch("on")
	require.NoError(t, err)
	assert.True(t, on)
	off, err := parseSwitch("0")
	require.NoError(t, err)
	assert.False(t, off)
	_, err = parseSwitch("sometimes")
	assert.Error(t, err)
}
