package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Bar.lnk"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	var fs OSFiles
	entries, err := fs.List(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Entry{{Name: "Bar.lnk"}, {Name: "sub", IsDir: true}}, entries)

	require.NoError(t, fs.Rename(dir, "Bar.lnk", "Bar.lnk.disabled"))
	assert.True(t, fs.Exists(filepath.Join(dir, "Bar.lnk.disabled")))
	assert.False(t, fs.Exists(filepath.Join(dir, "Bar.lnk")))
	assert.False(t, fs.Exists(""))

	require.NoError(t, fs.Remove(dir, "Bar.lnk.disabled"))
	err = fs.Remove(dir, "Bar.lnk.disabled")
	assert.True(t, errors.Is(err, ErrNotExist))

	_, err = fs.List(filepath.Join(dir, "missing"))
	assert.True(t, errors.Is(err, ErrNotExist))
}

func TestNormalizeProcessName(t *testing.T) {
	tests := map[string]string{
		"Discord.exe": "discord",
		" Steam.EXE ": "steam",
		"spotify":     "spotify",
		"my.tool.exe": "my.tool",
		"notexe":      "notexe",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeProcessName(in), in)
	}
}
