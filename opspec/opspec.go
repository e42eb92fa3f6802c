// Package opspec holds the wire form of a patch specification: an ordered
// array of {op, path, value?, from?, patch?} records per RFC 6902, extended
// with a non-standard "merge" op carrying an RFC 7396 document plus its
// expansion as a nested operation list.
package opspec

// Operation names. Add/Remove/Replace/Move/Copy/Test are RFC 6902; Merge is
// the RFC 7396 extension.
const (
	OpAdd     = "add"
	OpRemove  = "remove"
	OpReplace = "replace"
	OpMove    = "move"
	OpCopy    = "copy"
	OpTest    = "test"
	OpMerge   = "merge"
)

// Op is one declarative edit. Path and From are RFC 6901 pointer strings; the
// paths of a merge op's nested Patch are relative to the merge target.
type Op struct {
	Op    string `json:"op" yaml:"op"`
	Path  string `json:"path" yaml:"path"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
	From  string `json:"from,omitempty" yaml:"from,omitempty"`
	Patch Spec   `json:"patch,omitempty" yaml:"patch,omitempty"`
}

// Spec is an ordered operation list.
type Spec []Op
