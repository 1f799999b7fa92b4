//go:build windows

package platform

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// windowsRegistry implements Registry on top of x/sys/windows/registry.
type windowsRegistry struct{}

func rootKey(h Hive) registry.Key {
	if h == LocalMachine {
		return registry.LOCAL_MACHINE
	}
	return registry.CURRENT_USER
}

func classifyRegistryError(err error) error {
	switch {
	case errors.Is(err, registry.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrNotExist, err)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	default:
		return err
	}
}

func (windowsRegistry) Values(hive Hive, path string) ([]Value, error) {
	k, err := registry.OpenKey(rootKey(hive), path, registry.QUERY_VALUE)
	if err != nil {
		return nil, classifyRegistryError(err)
	}
	defer k.Close()

	names, err := k.ReadValueNames(0)
	if err != nil {
		return nil, classifyRegistryError(err)
	}
	values := make([]Value, 0, len(names))
	for _, name := range names {
		v, err := readValue(k, name)
		if err != nil {
			// Value vanished or is unreadable; skip it rather than fail the key.
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

func (windowsRegistry) ReadValue(hive Hive, path, name string) (Value, error) {
	k, err := registry.OpenKey(rootKey(hive), path, registry.QUERY_VALUE)
	if err != nil {
		return Value{}, classifyRegistryError(err)
	}
	defer k.Close()
	v, err := readValue(k, name)
	if err != nil {
		return Value{}, classifyRegistryError(err)
	}
	return v, nil
}

func readValue(k registry.Key, name string) (Value, error) {
	_, valType, err := k.GetValue(name, nil)
	if err != nil && !errors.Is(err, registry.ErrShortBuffer) {
		return Value{}, err
	}
	switch valType {
	case registry.SZ, registry.EXPAND_SZ:
		s, _, err := k.GetStringValue(name)
		if err != nil {
			return Value{}, err
		}
		t := TypeString
		if valType == registry.EXPAND_SZ {
			t = TypeExpandString
		}
		return Value{Name: name, Type: t, Text: s}, nil
	case registry.BINARY:
		b, _, err := k.GetBinaryValue(name)
		if err != nil {
			return Value{}, err
		}
		return Value{Name: name, Type: TypeBinary, Data: b}, nil
	default:
		return Value{Name: name, Type: TypeOther}, nil
	}
}

func (windowsRegistry) WriteBinary(hive Hive, path, name string, data []byte) error {
	k, _, err := registry.CreateKey(rootKey(hive), path, registry.SET_VALUE)
	if err != nil {
		return classifyRegistryError(err)
	}
	defer k.Close()
	if err := k.SetBinaryValue(name, data); err != nil {
		return classifyRegistryError(err)
	}
	return nil
}

func (windowsRegistry) WriteString(hive Hive, path, name, value string) error {
	k, _, err := registry.CreateKey(rootKey(hive), path, registry.SET_VALUE)
	if err != nil {
		return classifyRegistryError(err)
	}
	defer k.Close()
	if err := k.SetStringValue(name, value); err != nil {
		return classifyRegistryError(err)
	}
	return nil
}

func (windowsRegistry) DeleteValue(hive Hive, path, name string) error {
	k, err := registry.OpenKey(rootKey(hive), path, registry.SET_VALUE)
	if err != nil {
		return classifyRegistryError(err)
	}
	defer k.Close()
	if err := k.DeleteValue(name); err != nil {
		return classifyRegistryError(err)
	}
	return nil
}

// windowsEnv expands values the way the shell does for REG_EXPAND_SZ data.
type windowsEnv struct{}

func (windowsEnv) Expand(s string) (string, error) {
	return registry.ExpandString(s)
}
