package libdiff

import (
	"strconv"

	"github.com/openrec/patchkit/opspec"
)

// DiffScalarArray aligns two scalar arrays with a greedy two-cursor scan and
// emits splice operations under path. i and j walk old and new; t counts the
// index in the array as already edited, so emitted indices stay valid when
// the ops run in order. On a mismatch the scan first looks for old[i] later
// in new (the gap becomes insertions), then for the next old element that
// still occurs in new (the gap becomes paired replacements with remove/add
// overflow). First match wins; the result is not globally minimal.
func DiffScalarArray(path string, old, new []any) opspec.Spec {
	var res opspec.Spec
	i, j, t := 0, 0, 0
	n, m := len(old), len(new)
	for i < n && j < m {
		if scalarEqual(old[i], new[j]) {
			i++
			j++
			t++
			continue
		}
		if d := scanScalar(new, j, old[i]); d >= 0 {
			for ; j < d; j++ {
				res = append(res, opspec.Op{Op: opspec.OpAdd, Path: elemPath(path, t), Value: new[j]})
				t++
			}
			i++
			j++
			t++
			continue
		}
		// old[i] never reappears; anchor on the next old element that does
		anchor, na := -1, 0
		for k := i + 1; k < n; k++ {
			if d := scanScalar(new, j, old[k]); d >= 0 {
				anchor, na = k, d
				break
			}
		}
		if anchor == -1 {
			break
		}
		oldRun, newRun := anchor-i, na-j
		r := min(oldRun, newRun)
		for x := 0; x < r; x++ {
			res = append(res, opspec.Op{Op: opspec.OpReplace, Path: elemPath(path, t), Value: new[j]})
			i++
			j++
			t++
		}
		for x := r; x < oldRun; x++ {
			res = append(res, opspec.Op{Op: opspec.OpRemove, Path: elemPath(path, t)})
			i++
		}
		for x := r; x < newRun; x++ {
			res = append(res, opspec.Op{Op: opspec.OpAdd, Path: elemPath(path, t), Value: new[j]})
			j++
			t++
		}
	}
	for ; i < n; i++ {
		res = append(res, opspec.Op{Op: opspec.OpRemove, Path: elemPath(path, t)})
	}
	for ; j < m; j++ {
		res = append(res, opspec.Op{Op: opspec.OpAdd, Path: path + "/-", Value: new[j]})
	}
	return res
}

func scanScalar(vals []any, from int, want any) int {
	for d := from; d < len(vals); d++ {
		if scalarEqual(vals[d], want) {
			return d
		}
	}
	return -1
}

func elemPath(path string, i int) string {
	return path + "/" + strconv.Itoa(i)
}
