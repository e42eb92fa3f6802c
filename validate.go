package patchkit

import (
	"fmt"
	"time"

	"github.com/openrec/patchkit/pointer"
	"github.com/openrec/patchkit/schema"
)

// All operation validation runs at build time. Apply never re-checks what is
// validated here.

// checkSetTarget enforces that add/replace/move/copy destinations are
// modifiable. The root pointer (whole-record write) is always settable.
func checkSetTarget(index int, ptr *pointer.Pointer) error {
	if ptr.IsRoot() {
		return nil
	}
	if !ptr.Prop().Modifiable() {
		return synErr(index, "target %q is not modifiable", ptr)
	}
	return nil
}

// checkEraseTarget enforces that remove targets and move sources are optional
// properties, unless the pointer addresses a collection element. The root
// cannot be erased.
func checkEraseTarget(index int, ptr *pointer.Pointer) error {
	if ptr.IsRoot() {
		return synErr(index, "cannot remove the record root")
	}
	if ptr.IsElement() {
		return nil
	}
	if !ptr.Prop().Optional() {
		return synErr(index, "target %q is not optional", ptr)
	}
	return nil
}

// checkLiteral enforces that a literal value matches the target's scalar kind
// and null-ability. Test operations skip the null-ability rules: testing a
// required property for null is a legitimate probe.
func checkLiteral(index int, desc schema.Descriptor, ptr *pointer.Pointer, value any, forTest bool) error {
	if ptr.IsRoot() {
		obj, ok := value.(map[string]any)
		if !ok {
			return synErr(index, "root value must be an object")
		}
		return checkObjectValue(index, desc, "", obj)
	}
	prop := ptr.Prop()
	if ptr.IsElement() {
		if value == nil {
			if forTest {
				return nil
			}
			if prop.Scalar() == schema.ScalarObject {
				return synErr(index, "null not allowed for nested-object element at %q", ptr)
			}
			return nil
		}
		return checkScalarValue(index, prop, ptr.String(), value)
	}
	return checkPropValue(index, prop, ptr.String(), value, forTest)
}

// checkPropValue checks a whole-property literal.
func checkPropValue(index int, prop schema.Property, at string, value any, forTest bool) error {
	if value == nil {
		if forTest || prop.Optional() {
			return nil
		}
		return synErr(index, "null not allowed for required property %q", at)
	}
	switch prop.Kind() {
	case schema.KindArray:
		arr, ok := value.([]any)
		if !ok {
			return synErr(index, "value for %q must be an array", at)
		}
		if len(arr) == 0 && !prop.Optional() && !forTest {
			return synErr(index, "empty array not allowed for required property %q", at)
		}
		for i, el := range arr {
			if el == nil {
				if prop.Scalar() == schema.ScalarObject {
					return synErr(index, "null element not allowed in %q", at)
				}
				continue
			}
			if err := checkScalarValue(index, prop, fmt.Sprintf("%s/%d", at, i), el); err != nil {
				return err
			}
		}
		return nil

	case schema.KindMap:
		m, ok := value.(map[string]any)
		if !ok {
			return synErr(index, "value for %q must be a map", at)
		}
		if len(m) == 0 && !prop.Optional() && !forTest {
			return synErr(index, "empty map not allowed for required property %q", at)
		}
		for k, el := range m {
			if el == nil {
				if prop.Scalar() == schema.ScalarObject {
					return synErr(index, "null element not allowed in %q", at)
				}
				continue
			}
			if err := checkScalarValue(index, prop, at+"/"+k, el); err != nil {
				return err
			}
		}
		return nil

	default:
		return checkScalarValue(index, prop, at, value)
	}
}

// checkScalarValue checks one value against a property's scalar kind.
func checkScalarValue(index int, prop schema.Property, at string, value any) error {
	switch prop.Scalar() {
	case schema.ScalarString:
		if _, ok := value.(string); !ok {
			return synErr(index, "value at %q must be a string", at)
		}
	case schema.ScalarNumber:
		switch value.(type) {
		case int, int64, float64:
		default:
			return synErr(index, "value at %q must be a number", at)
		}
	case schema.ScalarBool:
		if _, ok := value.(bool); !ok {
			return synErr(index, "value at %q must be a boolean", at)
		}
	case schema.ScalarDateTime:
		s, ok := value.(string)
		if !ok {
			return synErr(index, "value at %q must be a datetime string", at)
		}
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return synErr(index, "value at %q is not RFC 3339: %v", at, err)
		}
	case schema.ScalarRef:
		s, ok := value.(string)
		if !ok || s == "" {
			return synErr(index, "value at %q must be a non-empty %s reference", at, prop.Ref())
		}
	case schema.ScalarObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return synErr(index, "value at %q must be an object", at)
		}
		return checkObjectValue(index, prop.Schema(), at, obj)
	}
	return nil
}

// checkObjectValue checks a nested-object literal field by field: no unknown
// properties, sound field values, all required declared fields present.
func checkObjectValue(index int, desc schema.Descriptor, at string, obj map[string]any) error {
	for k, v := range obj {
		prop := desc.Property(k)
		if prop == nil {
			return synErr(index, "no property %q in type %q at %q", k, desc.Name(), at)
		}
		if v == nil {
			if !prop.Optional() {
				return synErr(index, "null not allowed for required property %q at %q", k, at)
			}
			continue
		}
		if err := checkPropValue(index, prop, at+"/"+k, v, false); err != nil {
			return err
		}
	}
	for _, prop := range desc.Properties() {
		if prop.Optional() || prop.Computed() || prop.View() {
			continue
		}
		if obj[prop.Name()] == nil {
			return synErr(index, "missing required property %q in type %q at %q",
				prop.Name(), desc.Name(), at)
		}
	}
	return nil
}

// shape is the effective value shape a pointer addresses: the element shape
// for collection elements, the property shape otherwise.
type shape struct {
	kind   schema.Kind
	scalar schema.ScalarKind
	ref    string
	nested schema.Descriptor
}

func shapeOf(ptr *pointer.Pointer) shape {
	prop := ptr.Prop()
	s := shape{scalar: prop.Scalar(), ref: prop.Ref(), nested: prop.Schema()}
	if ptr.IsElement() {
		if prop.Scalar() == schema.ScalarObject {
			s.kind = schema.KindObject
		} else {
			s.kind = schema.KindScalar
		}
		return s
	}
	s.kind = prop.Kind()
	return s
}

// checkCompatible enforces move/copy shape rules: matching structural and
// scalar kinds, matching reference targets, and structurally compatible
// nested-object types.
func checkCompatible(index int, from, to *pointer.Pointer) error {
	if from.IsRoot() || to.IsRoot() {
		return synErr(index, "root pointer not allowed in move/copy")
	}
	fs, ts := shapeOf(from), shapeOf(to)
	if fs.kind != ts.kind {
		return synErr(index, "incompatible kinds: %q is %s, %q is %s", from, fs.kind, to, ts.kind)
	}
	if fs.scalar != ts.scalar {
		return synErr(index, "incompatible scalar kinds: %q is %s, %q is %s",
			from, fs.scalar, to, ts.scalar)
	}
	if fs.ref != ts.ref {
		return synErr(index, "incompatible reference targets: %q -> %q vs %q -> %q",
			from, fs.ref, to, ts.ref)
	}
	if fs.nested != nil && ts.nested != nil {
		if err := structCompatible(fs.nested, ts.nested); err != nil {
			return synErr(index, "incompatible shapes for %q -> %q: %v", from, to, err)
		}
	}
	return nil
}

// structCompatible requires every non-optional field of the source type to
// appear, with matching kinds, in the destination type. The reverse direction
// is required only for the destination's computed/view fields.
func structCompatible(src, dst schema.Descriptor) error {
	for _, f := range src.Properties() {
		if f.Optional() {
			continue
		}
		d := dst.Property(f.Name())
		if d == nil {
			return fmt.Errorf("field %q of %q missing in %q", f.Name(), src.Name(), dst.Name())
		}
		if d.Kind() != f.Kind() || d.Scalar() != f.Scalar() {
			return fmt.Errorf("field %q differs between %q and %q", f.Name(), src.Name(), dst.Name())
		}
	}
	for _, d := range dst.Properties() {
		if !d.Computed() && !d.View() {
			continue
		}
		f := src.Property(d.Name())
		if f == nil {
			return fmt.Errorf("computed field %q of %q missing in %q", d.Name(), dst.Name(), src.Name())
		}
		if d.Kind() != f.Kind() || d.Scalar() != f.Scalar() {
			return fmt.Errorf("field %q differs between %q and %q", d.Name(), dst.Name(), src.Name())
		}
	}
	return nil
}
