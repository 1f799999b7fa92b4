package autostart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/umstartup/internal/platform"
)

func TestInstallUninstall(t *testing.T) {
	reg := platform.NewMemoryRegistry()
	m := New(reg)

	installed, err := m.IsInstalled()
	require.NoError(t, err)
	assert.False(t, installed)

	require.NoError(t, m.Install(`C:\Tools\umstartup.exe`))
	installed, err = m.IsInstalled()
	require.NoError(t, err)
	assert.True(t, installed)

	v, err := reg.ReadValue(platform.CurrentUser, runPath, EntryName)
	require.NoError(t, err)
	assert.Equal(t, `"C:\Tools\umstartup.exe" --autostart`, v.Text)

	require.NoError(t, m.Uninstall())
	require.NoError(t, m.Uninstall(), "uninstalling twice is fine")
	installed, err = m.IsInstalled()
	require.NoError(t, err)
	assert.False(t, installed)
}

func TestInstall_AccessDenied(t *testing.T) {
	reg := platform.NewMemoryRegistry()
	reg.DenyWrites(platform.CurrentUser, runPath)

	err := New(reg).Install(`C:\x.exe`)
	assert.ErrorIs(t, err, platform.ErrAccessDenied)
	assert.Error(t, New(reg).Install(""))
}

func TestIsAutostartLaunch(t *testing.T) {
	assert.True(t, IsAutostartLaunch([]string{"umstartup", "--autostart"}))
	assert.False(t, IsAutostartLaunch([]string{"umstartup", "monitor"}))
	assert.False(t, IsAutostartLaunch(nil))
}
