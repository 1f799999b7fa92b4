//go:build windows

package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// sFalse is returned by CoInitializeEx when COM is already initialized on
// the thread; the call must still be balanced by CoUninitialize.
const sFalse = 0x1

// windowsShortcuts resolves .lnk files through the WScript.Shell automation object.
type windowsShortcuts struct{}

func (windowsShortcuts) Resolve(lnkPath string) (string, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			return "", fmt.Errorf("initializing COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return "", fmt.Errorf("creating WScript.Shell: %w", err)
	}
	defer unknown.Release()

	shell, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return "", fmt.Errorf("querying IDispatch: %w", err)
	}
	defer shell.Release()

	linkVar, err := oleutil.CallMethod(shell, "CreateShortcut", lnkPath)
	if err != nil {
		return "", fmt.Errorf("loading shortcut: %w", err)
	}
	link := linkVar.ToIDispatch()
	defer link.Release()

	targetVar, err := oleutil.GetProperty(link, "TargetPath")
	if err != nil {
		return "", fmt.Errorf("reading TargetPath: %w", err)
	}
	defer targetVar.Clear()

	target := strings.TrimSpace(targetVar.ToString())
	if target == "" {
		return "", fmt.Errorf("%w: shortcut %s has no target", ErrNotExist, lnkPath)
	}
	return target, nil
}
