package platform

import (
	"os"
	"strings"
)

// ProcessEnv expands %NAME% references from the process environment. It
// stands in for the shell's expansion off Windows; unknown names are left
// untouched, as Windows does.
type ProcessEnv struct{}

func (ProcessEnv) Expand(s string) (string, error) {
	var b strings.Builder
	for {
		start := strings.IndexByte(s, '%')
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start+1:], '%')
		if end < 0 {
			break
		}
		end += start + 1
		name := s[start+1 : end]
		if v, ok := os.LookupEnv(name); ok && name != "" {
			b.WriteString(s[:start])
			b.WriteString(v)
			s = s[end+1:]
			continue
		}
		b.WriteString(s[:end])
		s = s[end:]
	}
	b.WriteString(s)
	return b.String(), nil
}
