package platform

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryRegistry is an in-memory Registry. It backs the stub platform and
// the package tests. Key paths are case-insensitive like the real registry.
type MemoryRegistry struct {
	mu     sync.Mutex
	keys   map[string]map[string]Value
	denied map[string]bool
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		keys:   make(map[string]map[string]Value),
		denied: make(map[string]bool),
	}
}

func memKey(hive Hive, path string) string {
	return hive.String() + `\` + strings.ToLower(strings.Trim(path, `\`))
}

// SetString seeds a REG_SZ value.
func (r *MemoryRegistry) SetString(hive Hive, path, name, value string) {
	r.put(hive, path, Value{Name: name, Type: TypeString, Text: value})
}

// SetExpandString seeds a REG_EXPAND_SZ value.
func (r *MemoryRegistry) SetExpandString(hive Hive, path, name, value string) {
	r.put(hive, path, Value{Name: name, Type: TypeExpandString, Text: value})
}

// SetValue seeds an arbitrary value.
func (r *MemoryRegistry) SetValue(hive Hive, path string, v Value) {
	r.put(hive, path, v)
}

// DenyWrites makes every write and delete under the exact key fail with
// ErrAccessDenied.
func (r *MemoryRegistry) DenyWrites(hive Hive, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.denied[memKey(hive, path)] = true
}

// HasKey reports whether a key exists.
func (r *MemoryRegistry) HasKey(hive Hive, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.keys[memKey(hive, path)]
	return ok
}

func (r *MemoryRegistry) put(hive Hive, path string, v Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := memKey(hive, path)
	if r.keys[k] == nil {
		r.keys[k] = make(map[string]Value)
	}
	if v.Data != nil {
		v.Data = append([]byte(nil), v.Data...)
	}
	r.keys[k][v.Name] = v
}

// Values implements Registry.
func (r *MemoryRegistry) Values(hive Hive, path string) ([]Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.keys[memKey(hive, path)]
	if !ok {
		return nil, fmt.Errorf("%w: key %s\\%s", ErrNotExist, hive, path)
	}
	out := make([]Value, 0, len(key))
	for _, v := range key {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ReadValue implements Registry.
func (r *MemoryRegistry) ReadValue(hive Hive, path, name string) (Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.keys[memKey(hive, path)]
	if !ok {
		return Value{}, fmt.Errorf("%w: key %s\\%s", ErrNotExist, hive, path)
	}
	v, ok := key[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: value %q", ErrNotExist, name)
	}
	return v, nil
}

// WriteBinary implements Registry.
func (r *MemoryRegistry) WriteBinary(hive Hive, path, name string, data []byte) error {
	if r.isDenied(hive, path) {
		return fmt.Errorf("%w: key %s\\%s", ErrAccessDenied, hive, path)
	}
	r.put(hive, path, Value{Name: name, Type: TypeBinary, Data: data})
	return nil
}

// WriteString implements Registry.
func (r *MemoryRegistry) WriteString(hive Hive, path, name, value string) error {
	if r.isDenied(hive, path) {
		return fmt.Errorf("%w: key %s\\%s", ErrAccessDenied, hive, path)
	}
	r.put(hive, path, Value{Name: name, Type: TypeString, Text: value})
	return nil
}

// DeleteValue implements Registry.
func (r *MemoryRegistry) DeleteValue(hive Hive, path, name string) error {
	if r.isDenied(hive, path) {
		return fmt.Errorf("%w: key %s\\%s", ErrAccessDenied, hive, path)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.keys[memKey(hive, path)]
	if !ok {
		return fmt.Errorf("%w: key %s\\%s", ErrNotExist, hive, path)
	}
	if _, ok := key[name]; !ok {
		return fmt.Errorf("%w: value %q", ErrNotExist, name)
	}
	delete(key, name)
	return nil
}

func (r *MemoryRegistry) isDenied(hive Hive, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.denied[memKey(hive, path)]
}
