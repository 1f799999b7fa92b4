//go:build windows

package platform

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Language/code-page blocks tried before falling back to the translation table.
var descriptionLangCodepages = []string{
	"040904B0", // US English, Unicode
	"040904E4", // US English, Windows Multilingual
	"080404B0", // Chinese Simplified, Unicode
	"000004B0", // Neutral, Unicode
}

// windowsDescriptions reads FileDescription from the version resource.
type windowsDescriptions struct{}

func (windowsDescriptions) Description(path string) (string, error) {
	size, err := windows.GetFileVersionInfoSize(path, nil)
	if err != nil {
		return "", fmt.Errorf("version info size: %w", err)
	}
	if size == 0 {
		return "", ErrNotExist
	}
	buf := make([]byte, size)
	block := unsafe.Pointer(&buf[0])
	if err := windows.GetFileVersionInfo(path, 0, size, block); err != nil {
		return "", fmt.Errorf("version info: %w", err)
	}

	for _, lc := range descriptionLangCodepages {
		if d, ok := queryDescription(block, lc); ok {
			return d, nil
		}
	}

	var trans unsafe.Pointer
	var transLen uint32
	if err := windows.VerQueryValue(block, `\VarFileInfo\Translation`, unsafe.Pointer(&trans), &transLen); err == nil && transLen >= 4 {
		lang := *(*uint16)(trans)
		codepage := *(*uint16)(unsafe.Add(trans, 2))
		if d, ok := queryDescription(block, fmt.Sprintf("%04X%04X", lang, codepage)); ok {
			return d, nil
		}
	}
	return "", ErrNotExist
}

func queryDescription(block unsafe.Pointer, langCodepage string) (string, bool) {
	var ptr *uint16
	var n uint32
	sub := `\StringFileInfo\` + langCodepage + `\FileDescription`
	if err := windows.VerQueryValue(block, sub, unsafe.Pointer(&ptr), &n); err != nil || n == 0 || ptr == nil {
		return "", false
	}
	d := strings.TrimSpace(windows.UTF16PtrToString(ptr))
	return d, d != ""
}
