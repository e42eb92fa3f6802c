package patchkit

import (
	"fmt"

	"github.com/openrec/patchkit/debug"
	"github.com/openrec/patchkit/errs"
	"github.com/openrec/patchkit/libdiff"
)

// apply evaluates one operation against a record. The bool result is the
// test outcome; every other kind reports true. Mutation is skipped whenever
// the record already holds the target value (no-op suppression), in which
// case no event is emitted either.
func (op *Operation) apply(rec map[string]any, obs *Observer) (bool, error) {
	if debug.Op() {
		debug.Logf("op %s\n%s", op, debug.Dump(rec))
	}
	switch op.kind {
	case OpAdd:
		return true, op.applyAdd(rec, obs, op.value)
	case OpRemove:
		return true, op.applyRemove(rec, obs)
	case OpReplace:
		return true, op.applyReplace(rec, obs)
	case OpMove:
		return true, op.applyMove(rec, obs)
	case OpCopy:
		return true, op.applyCopy(rec, obs)
	case OpTest:
		return op.applyTest(rec, obs)
	case OpMerge:
		return op.applyMerge(rec, obs)
	}
	panic("op kind")
}

func (op *Operation) applyAdd(rec map[string]any, obs *Observer, value any) error {
	cur, defined, err := op.ptr.Read(rec)
	if err != nil {
		return err
	}
	if defined && libdiff.Equal(cur, value) {
		return nil
	}
	// the record must never alias the operation's literal
	value = libdiff.Clone(value)
	if err := op.ptr.Write(rec, value); err != nil {
		return err
	}
	if op.ptr.IsElement() {
		obs.insert(op.kind, op.ptr, value, cur)
	} else {
		obs.set(op.kind, op.ptr, value, cur)
	}
	return nil
}

func (op *Operation) applyRemove(rec map[string]any, obs *Observer) error {
	removed, existed, err := op.ptr.Erase(rec)
	if err != nil {
		return err
	}
	if op.ptr.IsElement() {
		if !existed {
			return fmt.Errorf("%w: nothing to remove at %q", errs.ErrData, op.ptr)
		}
		obs.remove(op.kind, op.ptr, removed)
		return nil
	}
	// nulling an already-empty property is suppressed
	if existed {
		obs.set(op.kind, op.ptr, nil, removed)
	}
	return nil
}

func (op *Operation) applyReplace(rec map[string]any, obs *Observer) error {
	cur, defined, err := op.ptr.Read(rec)
	if err != nil {
		return err
	}
	if defined && libdiff.Equal(cur, op.value) {
		return nil
	}
	next := libdiff.Clone(op.value)
	if err := op.ptr.Overwrite(rec, next); err != nil {
		return err
	}
	obs.set(op.kind, op.ptr, next, cur)
	return nil
}

func (op *Operation) applyMove(rec map[string]any, obs *Observer) error {
	// a self-move leaves the record untouched and emits nothing
	if op.from.Equal(op.ptr) {
		return nil
	}
	removed, existed, err := op.from.Erase(rec)
	if err != nil {
		return err
	}
	if op.from.IsElement() {
		if !existed {
			return fmt.Errorf("%w: nothing to move at %q", errs.ErrData, op.from)
		}
		obs.remove(op.kind, op.from, removed)
	} else if existed {
		obs.set(op.kind, op.from, nil, removed)
	}
	return op.applyAdd(rec, obs, removed)
}

func (op *Operation) applyCopy(rec map[string]any, obs *Observer) error {
	v, defined, err := op.from.Read(rec)
	if err != nil {
		return err
	}
	if !defined {
		return fmt.Errorf("%w: copy source %q undefined", errs.ErrData, op.from)
	}
	return op.applyAdd(rec, obs, v)
}

func (op *Operation) applyTest(rec map[string]any, obs *Observer) (bool, error) {
	cur, defined, err := op.ptr.Read(rec)
	if err != nil {
		return false, err
	}
	passed := libdiff.Equal(cur, op.value)
	if !defined {
		passed = false
	}
	obs.test(op.ptr, op.value, passed)
	return passed, nil
}

func (op *Operation) applyMerge(rec map[string]any, obs *Observer) (bool, error) {
	cur, defined, err := op.ptr.Read(rec)
	if err != nil {
		return false, err
	}
	if !defined || !truthy(cur) {
		return true, op.applyAdd(rec, obs, op.value)
	}
	target, ok := cur.(map[string]any)
	if !ok {
		return false, fmt.Errorf("%w: merge target %q is not an object", errs.ErrData, op.ptr)
	}
	return op.sub.Apply(target, obs)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) != 0
	case map[string]any:
		return len(t) != 0
	}
	return true
}
