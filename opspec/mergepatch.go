package opspec

import (
	"slices"

	"github.com/openrec/patchkit/pointer"
)

// FromMergePatch converts an RFC 7396 merge-patch document into an operation
// list: a null leaf removes its property, a scalar or array leaf replaces it,
// and a nested object becomes a merge op carrying both the sub-document and
// its own converted operation list. Keys are emitted in sorted order so the
// result is deterministic.
func FromMergePatch(doc map[string]any) Spec {
	res := make(Spec, 0, len(doc))
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		path := "/" + pointer.EscapeToken(k)
		switch v := doc[k].(type) {
		case nil:
			res = append(res, Op{Op: OpRemove, Path: path})
		case map[string]any:
			res = append(res, Op{
				Op:    OpMerge,
				Path:  path,
				Value: v,
				Patch: FromMergePatch(v),
			})
		default:
			res = append(res, Op{Op: OpReplace, Path: path, Value: v})
		}
	}
	return res
}
