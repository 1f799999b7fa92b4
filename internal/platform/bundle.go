package platform

// Bundle is a Platform assembled from individual capabilities. Nil
// capabilities fall back to inert defaults. It is how tests and callers
// substitute a single collaborator.
type Bundle struct {
	PlatformName      string
	RegistryStore     Registry
	FileStore         Files
	WindowQueries     WindowSystem
	ShortcutTargets   ShortcutResolver
	IconSource        IconExtractor
	DescriptionSource DescriptionReader
	Env               EnvExpander
	Folders           []StartupFolder
}

func (b *Bundle) Name() string {
	if b.PlatformName == "" {
		return "bundle"
	}
	return b.PlatformName
}

func (b *Bundle) Registry() Registry {
	if b.RegistryStore == nil {
		b.RegistryStore = NewMemoryRegistry()
	}
	return b.RegistryStore
}

func (b *Bundle) Files() Files {
	if b.FileStore == nil {
		return OSFiles{}
	}
	return b.FileStore
}

func (b *Bundle) Windows() WindowSystem {
	if b.WindowQueries == nil {
		return noWindows{}
	}
	return b.WindowQueries
}

func (b *Bundle) Shortcuts() ShortcutResolver {
	if b.ShortcutTargets == nil {
		return noShortcuts{}
	}
	return b.ShortcutTargets
}

func (b *Bundle) Icons() IconExtractor {
	if b.IconSource == nil {
		return NoIcons{}
	}
	return b.IconSource
}

func (b *Bundle) Descriptions() DescriptionReader {
	if b.DescriptionSource == nil {
		return noDescriptions{}
	}
	return b.DescriptionSource
}

func (b *Bundle) Environment() EnvExpander {
	if b.Env == nil {
		return ProcessEnv{}
	}
	return b.Env
}

func (b *Bundle) StartupFolders() []StartupFolder { return b.Folders }

type noWindows struct{}

func (noWindows) VisibleWindows() ([]Window, error)      { return nil, nil }
func (noWindows) ProcessName(pid uint32) (string, error) { return processName(pid) }
func (noWindows) Hide(uintptr) error                     { return ErrUnsupported }
func (noWindows) RequestClose(uintptr) error             { return ErrUnsupported }

type noShortcuts struct{}

func (noShortcuts) Resolve(string) (string, error) { return "", ErrUnsupported }

type noDescriptions struct{}

func (noDescriptions) Description(string) (string, error) { return "", ErrUnsupported }
