package patchkit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/openrec/patchkit/debug"
	"github.com/openrec/patchkit/errs"
	"github.com/openrec/patchkit/libdiff"
	"github.com/openrec/patchkit/opspec"
	"github.com/openrec/patchkit/pointer"
	"github.com/openrec/patchkit/schema"
)

// DiffType diffs two records of the named type. A nil registry uses the
// process-global one.
func DiffType(reg schema.Registry, typeName string, oldRec, newRec map[string]any) (opspec.Spec, error) {
	if reg == nil {
		reg = schema.Registered
	}
	if !reg.HasType(typeName) {
		return nil, fmt.Errorf("%w: unknown record type %q", errs.ErrUsage, typeName)
	}
	desc, err := reg.Describe(typeName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUsage, err)
	}
	return Diff(desc, oldRec, newRec)
}

// Diff computes an operation spec such that applying the built patch to a
// structural copy of oldRec yields a record deep-equal to newRec. Array
// alignment is greedy, not globally minimal. Properties of newRec unknown to
// the schema fail the whole diff.
func Diff(desc schema.Descriptor, oldRec, newRec map[string]any) (opspec.Spec, error) {
	if unknown := unknownPaths(desc, "", newRec); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unrecognized properties: %s",
			errs.ErrSyntax, strings.Join(unknown, ", "))
	}
	if debug.Diff() {
		debug.Logf("diff %s\nold:\n%snew:\n%s", desc.Name(), debug.Dump(oldRec), debug.Dump(newRec))
	}
	return diffObject(desc, "", oldRec, newRec)
}

func diffObject(desc schema.Descriptor, prefix string, oldO, newO map[string]any) (opspec.Spec, error) {
	var res opspec.Spec
	for _, prop := range desc.Properties() {
		if prop.Computed() || prop.View() {
			continue
		}
		name := prop.Name()
		path := prefix + "/" + pointer.EscapeToken(name)
		oldV, newV := oldO[name], newO[name]

		if prop.Kind() == schema.KindScalar {
			if newV == nil {
				if oldV != nil && !prop.Identity() {
					res = append(res, opspec.Op{Op: opspec.OpRemove, Path: path})
				}
				continue
			}
			if !libdiff.Equal(oldV, newV) {
				res = append(res, opspec.Op{Op: opspec.OpReplace, Path: path, Value: newV})
			}
			continue
		}

		// containers share the emptiness shortcuts
		oldEmpty, newEmpty := libdiff.Empty(oldV), libdiff.Empty(newV)
		switch {
		case oldEmpty && newEmpty:
			continue
		case newEmpty:
			res = append(res, opspec.Op{Op: opspec.OpRemove, Path: path})
			continue
		case oldEmpty:
			res = append(res, opspec.Op{Op: opspec.OpReplace, Path: path, Value: newV})
			continue
		}

		switch prop.Kind() {
		case schema.KindObject:
			oldM, ok1 := oldV.(map[string]any)
			newM, ok2 := newV.(map[string]any)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("%w: expected objects at %q", errs.ErrData, path)
			}
			sub, err := diffObject(prop.Schema(), path, oldM, newM)
			if err != nil {
				return nil, err
			}
			res = append(res, sub...)

		case schema.KindArray:
			oldA, ok1 := oldV.([]any)
			newA, ok2 := newV.([]any)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("%w: expected arrays at %q", errs.ErrData, path)
			}
			if prop.Scalar() != schema.ScalarObject {
				res = append(res, libdiff.DiffScalarArray(path, oldA, newA)...)
				continue
			}
			nested := prop.Schema()
			idProp := nested.Identity()
			if idProp == nil {
				return nil, fmt.Errorf("%w: type %q has no identity property, cannot align %q",
					errs.ErrUsage, nested.Name(), path)
			}
			sub, err := libdiff.DiffArrayByIdentity(path, idProp.Name(), oldA, newA,
				func(pfx string, o, n map[string]any) (opspec.Spec, error) {
					return diffObject(nested, pfx, o, n)
				})
			if err != nil {
				return nil, err
			}
			res = append(res, sub...)

		case schema.KindMap:
			oldM, ok1 := oldV.(map[string]any)
			newM, ok2 := newV.(map[string]any)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("%w: expected maps at %q", errs.ErrData, path)
			}
			sub, err := diffMap(prop, path, oldM, newM)
			if err != nil {
				return nil, err
			}
			res = append(res, sub...)
		}
	}
	return res, nil
}

// diffMap diffs a keyed map per key: removed keys, added keys, and changed
// values (recursing for nested-object values).
// sortedKeys returns the keys of m in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func diffMap(prop schema.Property, path string, oldM, newM map[string]any) (opspec.Spec, error) {
	var res opspec.Spec
	keys := make(map[string]struct{}, len(oldM)+len(newM))
	for k := range oldM {
		keys[k] = struct{}{}
	}
	for k := range newM {
		keys[k] = struct{}{}
	}
	for _, k := range sortedKeys(keys) {
		kp := path + "/" + pointer.EscapeToken(k)
		oldV, oldOK := oldM[k]
		newV, newOK := newM[k]
		switch {
		case !newOK || newV == nil:
			if oldOK && oldV != nil {
				res = append(res, opspec.Op{Op: opspec.OpRemove, Path: kp})
			}
		case !oldOK || oldV == nil:
			res = append(res, opspec.Op{Op: opspec.OpAdd, Path: kp, Value: newV})
		case prop.Scalar() == schema.ScalarObject:
			oldO, ok1 := oldV.(map[string]any)
			newO, ok2 := newV.(map[string]any)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("%w: expected objects at %q", errs.ErrData, kp)
			}
			sub, err := diffObject(prop.Schema(), kp, oldO, newO)
			if err != nil {
				return nil, err
			}
			res = append(res, sub...)
		default:
			if !libdiff.Equal(oldV, newV) {
				res = append(res, opspec.Op{Op: opspec.OpReplace, Path: kp, Value: newV})
			}
		}
	}
	return res, nil
}

// unknownPaths collects the dot-paths of newRec properties the schema does
// not declare, descending into declared nested objects.
func unknownPaths(desc schema.Descriptor, prefix string, rec map[string]any) []string {
	seen := make(map[string]struct{})
	collectUnknown(desc, prefix, rec, seen)
	return sortedKeys(seen)
}

func collectUnknown(desc schema.Descriptor, prefix string, rec map[string]any, seen map[string]struct{}) {
	for _, k := range sortedKeys(rec) {
		p := k
		if prefix != "" {
			p = prefix + "." + k
		}
		prop := desc.Property(k)
		if prop == nil {
			seen[p] = struct{}{}
			continue
		}
		if prop.Schema() == nil || rec[k] == nil {
			continue
		}
		switch prop.Kind() {
		case schema.KindObject:
			if m, ok := rec[k].(map[string]any); ok {
				collectUnknown(prop.Schema(), p, m, seen)
			}
		case schema.KindArray:
			arr, _ := rec[k].([]any)
			for _, el := range arr {
				if m, ok := el.(map[string]any); ok {
					collectUnknown(prop.Schema(), p, m, seen)
				}
			}
		case schema.KindMap:
			mm, _ := rec[k].(map[string]any)
			for _, el := range mm {
				if m, ok := el.(map[string]any); ok {
					collectUnknown(prop.Schema(), p, m, seen)
				}
			}
		}
	}
}
