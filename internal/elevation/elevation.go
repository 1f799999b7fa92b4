// Package elevation reports whether the process runs with administrator
// privileges. The tool never elevates itself; the answer only shapes the
// advice given after an access-denied failure.
package elevation

import "fmt"

// Hint returns the advice shown after an access-denied failure, or an empty
// string when the process is already elevated and elevation would not help.
func Hint(program string) string {
	elevated, err := IsElevated()
	if err == nil && elevated {
		return ""
	}
	return fmt.Sprintf(hintFormat, program)
}
