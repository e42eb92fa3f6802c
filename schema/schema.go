// Package schema defines the read-only capability interfaces through which
// the engine sees record types, plus a concrete in-memory provider and a
// process-global registry. Any descriptor service implementing Registry,
// Descriptor and Property plugs in without the engine depending on it.
package schema

import "fmt"

// Kind is the structural kind of a property.
type Kind int

const (
	KindScalar Kind = iota
	KindArray
	KindMap
	KindObject
)

func (k Kind) String() string {
	s, ok := map[Kind]string{
		KindScalar: "scalar",
		KindArray:  "array",
		KindMap:    "map",
		KindObject: "object",
	}[k]
	if ok {
		return s
	}
	return "<unknown kind>"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(d []byte) error {
	kk, ok := map[string]Kind{
		"scalar": KindScalar,
		"array":  KindArray,
		"map":    KindMap,
		"object": KindObject,
	}[string(d)]
	if !ok {
		return fmt.Errorf("unrecognized structural kind %q", d)
	}
	*k = kk
	return nil
}

// IsCollection reports whether properties of this kind hold addressable
// elements (array indices or map keys).
func (k Kind) IsCollection() bool {
	return k == KindArray || k == KindMap
}

// ScalarKind is the value kind of a scalar property, or of the elements of an
// array/map property. ScalarObject marks elements that are nested objects
// described by their own schema.
type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarNumber
	ScalarBool
	ScalarDateTime
	ScalarRef
	ScalarObject
)

func (k ScalarKind) String() string {
	s, ok := map[ScalarKind]string{
		ScalarString:   "string",
		ScalarNumber:   "number",
		ScalarBool:     "boolean",
		ScalarDateTime: "datetime",
		ScalarRef:      "reference",
		ScalarObject:   "nested-object",
	}[k]
	if ok {
		return s
	}
	return "<unknown scalar kind>"
}

func (k ScalarKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ScalarKind) UnmarshalText(d []byte) error {
	kk, ok := map[string]ScalarKind{
		"string":        ScalarString,
		"number":        ScalarNumber,
		"boolean":       ScalarBool,
		"datetime":      ScalarDateTime,
		"reference":     ScalarRef,
		"nested-object": ScalarObject,
	}[string(d)]
	if !ok {
		return fmt.Errorf("unrecognized scalar kind %q", d)
	}
	*k = kk
	return nil
}

// Registry resolves record type names to descriptors.
type Registry interface {
	HasType(name string) bool
	Describe(name string) (Descriptor, error)
}

// Descriptor describes one record type: an ordered set of named properties.
type Descriptor interface {
	Name() string

	// Property returns the named property, or nil when the type does not
	// declare it.
	Property(name string) Property

	// Properties returns the declared properties in declaration order.
	Properties() []Property

	// Identity returns the identity property, or nil when the type has none.
	Identity() Property
}

// Property is the per-property capability surface the engine consumes.
type Property interface {
	Name() string
	Kind() Kind
	Scalar() ScalarKind

	Optional() bool
	Modifiable() bool
	Identity() bool
	Computed() bool
	View() bool

	// Ref names the target type of a reference property, "" otherwise.
	Ref() string

	// Schema returns the nested schema of a nested-object property or of
	// nested-object collection elements, nil otherwise.
	Schema() Descriptor

	// Subtype returns the polymorphic subtype schema registered under the
	// given discriminator value, or nil.
	Subtype(discriminator string) Descriptor
}
