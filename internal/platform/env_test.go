package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessEnv(t *testing.T) {
	t.Setenv("UMS_TEST_ROOT", `C:\Tools`)

	tests := map[string]string{
		`%UMS_TEST_ROOT%\a.exe`: `C:\Tools\a.exe`,
		`%UMS_NOPE%\a.exe`:      `%UMS_NOPE%\a.exe`,
		`50% off`:               `50% off`,
		`%%UMS_TEST_ROOT%`:      `%C:\Tools`,
	}
	for in, want := range tests {
		got, err := ProcessEnv{}.Expand(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestBundleEnvironmentDefault(t *testing.T) {
	assert.IsType(t, ProcessEnv{}, (&Bundle{}).Environment())
}
