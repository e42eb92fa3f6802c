// Package patchkit is a structured patch engine over schema-described
// records. It resolves RFC 6901 paths into schema-validated pointers, builds
// and validates ordered edit operations from a declarative specification,
// applies them to records with optional change notification, and computes the
// edit sequence that turns one record into another.
//
// Records are plain decoded JSON values (map[string]any at the root). All
// validation happens at build time; applying a built Patch performs only the
// checks that depend on actual record data.
package patchkit

import (
	"fmt"

	"github.com/openrec/patchkit/opspec"
	"github.com/openrec/patchkit/pointer"
)

// OpKind tags the seven operation variants.
type OpKind int

const (
	OpAdd OpKind = iota
	OpRemove
	OpReplace
	OpMove
	OpCopy
	OpTest
	OpMerge
)

func (k OpKind) String() string {
	s, ok := map[OpKind]string{
		OpAdd:     opspec.OpAdd,
		OpRemove:  opspec.OpRemove,
		OpReplace: opspec.OpReplace,
		OpMove:    opspec.OpMove,
		OpCopy:    opspec.OpCopy,
		OpTest:    opspec.OpTest,
		OpMerge:   opspec.OpMerge,
	}[k]
	if ok {
		return s
	}
	return "<unknown op>"
}

func opKindOf(name string) (OpKind, bool) {
	k, ok := map[string]OpKind{
		opspec.OpAdd:     OpAdd,
		opspec.OpRemove:  OpRemove,
		opspec.OpReplace: OpReplace,
		opspec.OpMove:    OpMove,
		opspec.OpCopy:    OpCopy,
		opspec.OpTest:    OpTest,
		opspec.OpMerge:   OpMerge,
	}[name]
	return k, ok
}

// Operation is one validated edit. Operations are immutable after build and
// constructed only through Build.
type Operation struct {
	kind  OpKind
	ptr   *pointer.Pointer
	value any
	from  *pointer.Pointer
	sub   *Patch
}

func (op *Operation) Kind() OpKind           { return op.kind }
func (op *Operation) Ptr() *pointer.Pointer  { return op.ptr }
func (op *Operation) From() *pointer.Pointer { return op.from }
func (op *Operation) Value() any             { return op.value }

func (op *Operation) String() string {
	switch op.kind {
	case OpMove, OpCopy:
		return fmt.Sprintf("%s %s -> %s", op.kind, op.from, op.ptr)
	default:
		return fmt.Sprintf("%s %s", op.kind, op.ptr)
	}
}

// Observer receives change events during Apply. All members are optional and
// a nil Observer is inert. Events are transient: the engine never retains
// them.
type Observer struct {
	OnInsert func(op OpKind, ptr *pointer.Pointer, newValue, oldValue any)
	OnRemove func(op OpKind, ptr *pointer.Pointer, oldValue any)
	OnSet    func(op OpKind, ptr *pointer.Pointer, newValue, oldValue any)
	OnTest   func(ptr *pointer.Pointer, value any, passed bool)
}

func (o *Observer) insert(op OpKind, ptr *pointer.Pointer, newValue, oldValue any) {
	if o == nil || o.OnInsert == nil {
		return
	}
	o.OnInsert(op, ptr, newValue, oldValue)
}

func (o *Observer) remove(op OpKind, ptr *pointer.Pointer, oldValue any) {
	if o == nil || o.OnRemove == nil {
		return
	}
	o.OnRemove(op, ptr, oldValue)
}

func (o *Observer) set(op OpKind, ptr *pointer.Pointer, newValue, oldValue any) {
	if o == nil || o.OnSet == nil {
		return
	}
	o.OnSet(op, ptr, newValue, oldValue)
}

func (o *Observer) test(ptr *pointer.Pointer, value any, passed bool) {
	if o == nil || o.OnTest == nil {
		return
	}
	o.OnTest(ptr, value, passed)
}
