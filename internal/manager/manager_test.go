package manager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Guliveer/umstartup/internal/autorun"
	"github.com/Guliveer/umstartup/internal/models"
	"github.com/Guliveer/umstartup/internal/platform"
	"github.com/Guliveer/umstartup/internal/scanner"
)

const (
	runPath     = `Software\Microsoft\Windows\CurrentVersion\Run`
	approvedRun = `Software\Microsoft\Windows\CurrentVersion\Explorer\StartupApproved\Run`
)

func registryItem(hive platform.Hive, name string) models.StartupItem {
	loc := hive.String() + `\` + runPath
	return models.StartupItem{
		ID:             autorun.ItemID(loc, name),
		Name:           name,
		SourceType:     models.SourceRegistry,
		SourceLocation: loc,
	}
}

func folderItem(dir, name string) models.StartupItem {
	return models.StartupItem{Name: name, SourceType: models.SourceFolder, SourceLocation: dir}
}

func newManager(t *testing.T, p platform.Platform) *Manager {
	t.Helper()
	return New(p, zaptest.NewLogger(t))
}

func TestToggleRegistry_WritesApprovalOnly(t *testing.T) {
	reg := platform.NewMemoryRegistry()
	reg.SetString(platform.CurrentUser, runPath, "Foo", `C:\Apps\foo.exe --flag`)
	p := &platform.Bundle{RegistryStore: reg}
	m := newManager(t, p)
	item := registryItem(platform.CurrentUser, "Foo")

	require.NoError(t, m.Toggle(item, false))
	require.NoError(t, m.Toggle(item, false))

	v, err := reg.ReadValue(platform.CurrentUser, approvedRun, "Foo")
	require.NoError(t, err)
	assert.Equal(t, autorun.ApprovalFlag(false), v.Data)

	run, err := reg.ReadValue(platform.CurrentUser, runPath, "Foo")
	require.NoError(t, err)
	assert.Equal(t, `C:\Apps\foo.exe --flag`, run.Text)

	// A rescan reflects the change while the run value stays intact.
	items := scanner.New(p, zaptest.NewLogger(t)).Scan()
	require.Len(t, items, 1)
	assert.False(t, items[0].Enabled)
	assert.Equal(t, `C:\Apps\foo.exe --flag`, items[0].Command)

	require.NoError(t, m.Toggle(item, true))
	v, err = reg.ReadValue(platform.CurrentUser, approvedRun, "Foo")
	require.NoError(t, err)
	assert.Equal(t, autorun.ApprovalFlag(true), v.Data)
}

func TestToggleRegistry_Errors(t *testing.T) {
	reg := platform.NewMemoryRegistry()
	reg.SetString(platform.LocalMachine, runPath, "Locked", `C:\l.exe`)
	reg.DenyWrites(platform.LocalMachine, approvedRun)
	m := newManager(t, &platform.Bundle{RegistryStore: reg})

	err := m.Toggle(registryItem(platform.CurrentUser, "Ghost"), false)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = m.Toggle(models.StartupItem{Name: "x", SourceType: models.SourceRegistry, SourceLocation: `HKEY_USERS\nope`}, false)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = m.Toggle(registryItem(platform.LocalMachine, "Locked"), false)
	assert.True(t, errors.Is(err, ErrAccessDenied))
	assert.False(t, errors.Is(err, ErrNotFound))

	var merr *Error
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, KindAccessDenied, merr.Kind)
	assert.Equal(t, "toggle", merr.Op)
}

func TestDeleteRegistry(t *testing.T) {
	reg := platform.NewMemoryRegistry()
	reg.SetString(platform.CurrentUser, runPath, "Foo", `C:\foo.exe`)
	reg.SetString(platform.CurrentUser, runPath, "Bar", `C:\bar.exe`)
	reg.SetValue(platform.CurrentUser, approvedRun, platform.Value{Name: "Foo", Type: platform.TypeBinary, Data: autorun.ApprovalFlag(false)})
	m := newManager(t, &platform.Bundle{RegistryStore: reg})

	require.NoError(t, m.Delete(registryItem(platform.CurrentUser, "Foo")))
	_, err := reg.ReadValue(platform.CurrentUser, runPath, "Foo")
	assert.True(t, errors.Is(err, platform.ErrNotExist))
	_, err = reg.ReadValue(platform.CurrentUser, approvedRun, "Foo")
	assert.True(t, errors.Is(err, platform.ErrNotExist))

	// No approval value: the primary delete still succeeds.
	require.NoError(t, m.Delete(registryItem(platform.CurrentUser, "Bar")))

	err = m.Delete(registryItem(platform.CurrentUser, "Bar"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteRegistry_AccessDenied(t *testing.T) {
	reg := platform.NewMemoryRegistry()
	reg.SetString(platform.LocalMachine, runPath, "Sys", `C:\sys.exe`)
	reg.DenyWrites(platform.LocalMachine, runPath)
	m := newManager(t, &platform.Bundle{RegistryStore: reg})

	err := m.Delete(registryItem(platform.LocalMachine, "Sys"))
	assert.True(t, errors.Is(err, ErrAccessDenied))
}

func TestDeleteRegistry_ApprovalFailureSwallowed(t *testing.T) {
	reg := platform.NewMemoryRegistry()
	reg.SetString(platform.CurrentUser, runPath, "Foo", `C:\foo.exe`)
	reg.SetValue(platform.CurrentUser, approvedRun, platform.Value{Name: "Foo", Type: platform.TypeBinary, Data: autorun.ApprovalFlag(true)})
	reg.DenyWrites(platform.CurrentUser, approvedRun)
	m := newManager(t, &platform.Bundle{RegistryStore: reg})

	require.NoError(t, m.Delete(registryItem(platform.CurrentUser, "Foo")))
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestToggleFolder_RenameRoundTrip(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Bar.lnk")
	p := &platform.Bundle{
		Folders: []platform.StartupFolder{{Path: dir, Label: "User Startup Folder"}},
	}
	m := newManager(t, p)
	item := folderItem(dir, "Bar")

	require.NoError(t, m.Toggle(item, false))
	assert.FileExists(t, filepath.Join(dir, "Bar.lnk.disabled"))
	assert.NoFileExists(t, filepath.Join(dir, "Bar.lnk"))

	items := scanner.New(p, zaptest.NewLogger(t)).Scan()
	require.Len(t, items, 1)
	assert.Equal(t, "Bar", items[0].Name)
	assert.False(t, items[0].Enabled)

	// Same intent again is a no-op.
	require.NoError(t, m.Toggle(item, false))
	assert.FileExists(t, filepath.Join(dir, "Bar.lnk.disabled"))

	require.NoError(t, m.Toggle(item, true))
	require.NoError(t, m.Toggle(item, true))
	assert.FileExists(t, filepath.Join(dir, "Bar.lnk"))
	assert.NoFileExists(t, filepath.Join(dir, "Bar.lnk.disabled"))
}

func TestToggleFolder_ExactMatchBeatsPrefix(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Bar Helper.lnk")
	touch(t, dir, "Bar.exe")
	m := newManager(t, &platform.Bundle{})

	require.NoError(t, m.Toggle(folderItem(dir, "Bar"), false))
	assert.FileExists(t, filepath.Join(dir, "Bar.exe.disabled"))
	assert.FileExists(t, filepath.Join(dir, "Bar Helper.lnk"))
}

func TestToggleFolder_SameNameDifferentKind(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Bar.exe")
	touch(t, dir, "Bar.lnk")
	p := &platform.Bundle{
		Folders: []platform.StartupFolder{{Path: dir, Label: "User Startup Folder"}},
	}
	m := newManager(t, p)
	s := scanner.New(p, zaptest.NewLogger(t))

	lnkID := autorun.ItemID(dir, "Bar.lnk")
	exeID := autorun.ItemID(dir, "Bar.exe")
	byID := func() map[string]models.StartupItem {
		out := map[string]models.StartupItem{}
		for _, it := range s.Scan() {
			out[it.ID] = it
		}
		return out
	}

	items := byID()
	require.Contains(t, items, lnkID)
	require.Contains(t, items, exeID)

	require.NoError(t, m.Toggle(items[lnkID], false))
	assert.FileExists(t, filepath.Join(dir, "Bar.lnk.disabled"))
	assert.FileExists(t, filepath.Join(dir, "Bar.exe"))

	items = byID()
	assert.False(t, items[lnkID].Enabled)
	assert.True(t, items[exeID].Enabled)

	require.NoError(t, m.Delete(items[exeID]))
	assert.NoFileExists(t, filepath.Join(dir, "Bar.exe"))
	assert.FileExists(t, filepath.Join(dir, "Bar.lnk.disabled"))
}

func TestToggleFolder_PrefixFallback(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Spotify Web Helper.lnk")
	m := newManager(t, &platform.Bundle{})

	require.NoError(t, m.Toggle(folderItem(dir, "Spotify"), false))
	assert.FileExists(t, filepath.Join(dir, "Spotify Web Helper.lnk.disabled"))
}

func TestToggleFolder_NotFound(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Other.lnk")
	m := newManager(t, &platform.Bundle{})

	err := m.Toggle(folderItem(dir, "Missing"), true)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = m.Toggle(folderItem(filepath.Join(dir, "gone"), "Other"), true)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteFolder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Tool.exe.disabled")
	m := newManager(t, &platform.Bundle{})

	require.NoError(t, m.Delete(folderItem(dir, "Tool")))
	assert.NoFileExists(t, filepath.Join(dir, "Tool.exe.disabled"))

	err := m.Delete(folderItem(dir, "Tool"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUnknownSourceType(t *testing.T) {
	m := newManager(t, &platform.Bundle{})
	err := m.Toggle(models.StartupItem{Name: "x", SourceType: "service"}, true)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindIO, Op: "delete", Item: "Bar", Cause: errors.New("disk full")}
	assert.Equal(t, `delete "Bar": io: disk full`, err.Error())
	assert.Equal(t, `toggle "Foo": not_found`, notFound("toggle", "Foo").Error())
}
