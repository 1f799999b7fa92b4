package manager

import (
	"errors"
	"fmt"

	"github.com/Guliveer/umstartup/internal/platform"
)

// Kind is the category of a manager failure.
type Kind string

const (
	// KindNotFound means the entry vanished since the last scan.
	KindNotFound Kind = "not_found"
	// KindAccessDenied means the process lacks the privilege for the change.
	KindAccessDenied Kind = "access_denied"
	// KindIO is a startup-folder failure.
	KindIO Kind = "io"
	// KindRegistry is a run-key failure.
	KindRegistry Kind = "registry"
)

// Sentinels for errors.Is.
var (
	ErrNotFound     = errors.New("startup item not found")
	ErrAccessDenied = errors.New("access denied")
)

// Error is a classified manager failure.
type Error struct {
	Kind  Kind
	Op    string
	Item  string
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %q: %s", e.Op, e.Item, e.Kind)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches the package sentinels by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrAccessDenied:
		return e.Kind == KindAccessDenied
	}
	return false
}

// classify maps a backing-store error onto a Kind. fallback is used for
// anything that is neither missing nor denied.
func classify(op, item string, fallback Kind, err error) *Error {
	kind := fallback
	switch {
	case errors.Is(err, platform.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, platform.ErrAccessDenied):
		kind = KindAccessDenied
	}
	return &Error{Kind: kind, Op: op, Item: item, Cause: err}
}

func notFound(op, item string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Item: item}
}
