package libdiff

// Clone makes a structural copy of a decoded record value. Scalars are
// shared; containers are rebuilt.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		res := make(map[string]any, len(t))
		for k, e := range t {
			res[k] = Clone(e)
		}
		return res
	case []any:
		res := make([]any, len(t))
		for i, e := range t {
			res[i] = Clone(e)
		}
		return res
	default:
		return v
	}
}
