//go:build !windows

package platform

// New returns the inert platform used on non-Windows builds: an empty
// in-memory registry, the local filesystem, no visible windows and no
// startup folders. It keeps the command shell usable during development.
func New() Platform {
	return &Bundle{
		PlatformName:  "stub",
		RegistryStore: NewMemoryRegistry(),
	}
}
