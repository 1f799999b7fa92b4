//go:build windows

package platform

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"
)

const wmClose = 0x0010

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procPostMessage = user32.NewProc("PostMessageW")

	// EnumWindows callbacks are a limited resource, so one is created for the
	// process and results are collected under enumMu.
	enumMu          sync.Mutex
	enumResult      []Window
	enumVisibleProc = windows.NewCallback(collectVisibleWindow)
)

func collectVisibleWindow(hwnd windows.HWND, _ uintptr) uintptr {
	if !windows.IsWindowVisible(hwnd) {
		return 1
	}
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil || pid == 0 {
		return 1
	}
	enumResult = append(enumResult, Window{Handle: uintptr(hwnd), PID: pid})
	return 1 // continue enumeration
}

type windowsWindowSystem struct{}

func (windowsWindowSystem) VisibleWindows() ([]Window, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumResult = nil
	if err := windows.EnumWindows(enumVisibleProc, nil); err != nil {
		return nil, fmt.Errorf("enumerating windows: %w", err)
	}
	windowsFound := enumResult
	enumResult = nil
	return windowsFound, nil
}

func (windowsWindowSystem) ProcessName(pid uint32) (string, error) {
	return processName(pid)
}

func (windowsWindowSystem) Hide(handle uintptr) error {
	windows.ShowWindow(windows.HWND(handle), windows.SW_MINIMIZE)
	return nil
}

func (windowsWindowSystem) RequestClose(handle uintptr) error {
	r, _, err := procPostMessage.Call(handle, wmClose, 0, 0)
	if r == 0 {
		return fmt.Errorf("posting WM_CLOSE: %w", err)
	}
	return nil
}
