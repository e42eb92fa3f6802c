package schema

import (
	"fmt"
	"sync"
)

var (
	mu       sync.RWMutex
	registry = make(map[string]*TypeDef)
)

// Register registers a type in the global registry.
func Register(t *TypeDef) error {
	if t == nil {
		return fmt.Errorf("cannot register nil type")
	}
	if err := t.Validate(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[t.TypeName]; exists {
		return fmt.Errorf("type %q already registered", t.TypeName)
	}

	registry[t.TypeName] = t
	return nil
}

// MustRegister registers a type and panics on error. Intended for package
// init blocks.
func MustRegister(t *TypeDef) {
	if err := Register(t); err != nil {
		panic(err)
	}
}

// Lookup looks up a type by name.
func Lookup(name string) *TypeDef {
	mu.RLock()
	defer mu.RUnlock()
	t := registry[name]
	return t
}

// All returns all registered types.
func All() map[string]*TypeDef {
	mu.RLock()
	defer mu.RUnlock()

	result := make(map[string]*TypeDef, len(registry))
	for k, v := range registry {
		result[k] = v
	}
	return result
}

// Registered is the global registry exposed through the Registry interface.
var Registered Registry = globalRegistry{}

type globalRegistry struct{}

func (globalRegistry) HasType(name string) bool {
	return Lookup(name) != nil
}

func (globalRegistry) Describe(name string) (Descriptor, error) {
	t := Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("no type registered under %q", name)
	}
	return t, nil
}

// MapRegistry is a standalone Registry over a plain map, for callers that do
// not want process-global state.
type MapRegistry map[string]*TypeDef

func (m MapRegistry) HasType(name string) bool {
	_, ok := m[name]
	return ok
}

func (m MapRegistry) Describe(name string) (Descriptor, error) {
	t, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no type registered under %q", name)
	}
	return t, nil
}
