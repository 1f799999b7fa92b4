package platform

// NoIcons is the IconExtractor used when no icon producer is wired in.
// Icon extraction lives in the presentation shell; the core only carries the
// optional payload through.
type NoIcons struct{}

// Icon always reports no icon.
func (NoIcons) Icon(string) (string, error) { return "", nil }
