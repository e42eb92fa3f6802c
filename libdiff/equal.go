// Package libdiff implements structural equality over decoded records and
// the greedy array-alignment algorithms the diff engine delegates to. The
// alignment is intentionally first-match-wins rather than globally minimal.
package libdiff

// Equal reports deep structural equality: scalars by value (numbers compared
// numerically across int/int64/float64), arrays by ordered element equality,
// objects and maps by keyed equality. A key holding null counts as absent,
// matching the engine's null-as-absence reading of whole properties.
func Equal(a, b any) bool {
	switch at := a.(type) {
	case map[string]any:
		bt, ok := b.(map[string]any)
		if !ok {
			return false
		}
		for k, av := range at {
			if av == nil {
				continue
			}
			bv, ok := bt[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		for k, bv := range bt {
			if bv == nil {
				continue
			}
			if av, ok := at[k]; !ok || av == nil {
				return false
			}
		}
		return true
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !Equal(at[i], bt[i]) {
				return false
			}
		}
		return true
	default:
		return scalarEqual(a, b)
	}
}

func scalarEqual(a, b any) bool {
	if an, ok := num(a); ok {
		bn, ok := num(b)
		return ok && an == bn
	}
	if _, ok := num(b); ok {
		return false
	}
	return a == b
}

func num(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

// Empty reports whether a value is null or an empty container.
func Empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
