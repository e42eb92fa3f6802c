package libdiff

import (
	"fmt"

	"github.com/openrec/patchkit/errs"
	"github.com/openrec/patchkit/opspec"
)

// DiffFunc recurses into a matched pair of nested objects, emitting
// operations relative to the given path prefix.
type DiffFunc func(prefix string, old, new map[string]any) (opspec.Spec, error)

// DiffArrayByIdentity aligns two arrays of identity-bearing nested objects.
// The skeleton is the same two-cursor scan as DiffScalarArray, but elements
// match on the value of their identity property idKey instead of full
// equality, and matched pairs are diffed recursively at their edited index.
// Unmatched old elements are removed; unmatched new elements are inserted at
// their edited index, or appended through "-" once old is exhausted.
func DiffArrayByIdentity(path, idKey string, old, new []any, df DiffFunc) (opspec.Spec, error) {
	var res opspec.Spec
	i, j, t := 0, 0, 0
	n, m := len(old), len(new)
	for i < n && j < m {
		oldEl, oid, err := identityOf(old[i], idKey, elemPath(path, t))
		if err != nil {
			return nil, err
		}
		newEl, nid, err := identityOf(new[j], idKey, elemPath(path, t))
		if err != nil {
			return nil, err
		}
		if oid != nil && nid != nil && scalarEqual(oid, nid) {
			sub, err := df(elemPath(path, t), oldEl, newEl)
			if err != nil {
				return nil, err
			}
			res = append(res, sub...)
			i++
			j++
			t++
			continue
		}
		if oid != nil {
			if d := scanIdentity(new, j, idKey, oid); d >= 0 {
				// new[j..d) are insertions ahead of the match
				for ; j < d; j++ {
					res = append(res, opspec.Op{Op: opspec.OpAdd, Path: elemPath(path, t), Value: new[j]})
					t++
				}
				newEl, _, err := identityOf(new[j], idKey, elemPath(path, t))
				if err != nil {
					return nil, err
				}
				sub, err := df(elemPath(path, t), oldEl, newEl)
				if err != nil {
					return nil, err
				}
				res = append(res, sub...)
				i++
				j++
				t++
				continue
			}
		}
		res = append(res, opspec.Op{Op: opspec.OpRemove, Path: elemPath(path, t)})
		i++
	}
	for ; i < n; i++ {
		res = append(res, opspec.Op{Op: opspec.OpRemove, Path: elemPath(path, t)})
	}
	for ; j < m; j++ {
		res = append(res, opspec.Op{Op: opspec.OpAdd, Path: path + "/-", Value: new[j]})
	}
	return res, nil
}

// identityOf returns the element as an object plus its identity value. A nil
// identity marks the element as unmatchable (it diffs as remove/add).
func identityOf(el any, idKey, at string) (map[string]any, any, error) {
	obj, ok := el.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("%w: expected nested object at %q", errs.ErrData, at)
	}
	return obj, obj[idKey], nil
}

func scanIdentity(vals []any, from int, idKey string, want any) int {
	for d := from; d < len(vals); d++ {
		obj, ok := vals[d].(map[string]any)
		if !ok {
			continue
		}
		if id := obj[idKey]; id != nil && scalarEqual(id, want) {
			return d
		}
	}
	return -1
}
