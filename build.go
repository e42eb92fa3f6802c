package patchkit

import (
	"fmt"
	"strings"

	"github.com/openrec/patchkit/errs"
	"github.com/openrec/patchkit/opspec"
	"github.com/openrec/patchkit/pointer"
	"github.com/openrec/patchkit/schema"
)

// BuildType builds a patch for the named record type. A nil registry uses
// the process-global one.
func BuildType(reg schema.Registry, typeName string, spec opspec.Spec) (*Patch, error) {
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
	return Build(desc, spec)
}

// Build resolves, validates and assembles the given specification into a
// Patch. All validation happens here; a successful build means Apply can only
// fail on record-data mismatches.
func Build(desc schema.Descriptor, spec opspec.Spec) (*Patch, error) {
	bc := &buildContext{
		involved: make(map[string]struct{}),
		updated:  make(map[string]struct{}),
	}
	ops, err := buildOps(desc, spec, bc)
	if err != nil {
		return nil, err
	}
	specCopy := make(opspec.Spec, len(spec))
	copy(specCopy, spec)
	return &Patch{
		desc:     desc,
		ops:      ops,
		involved: sortedKeys(bc.involved),
		updated:  sortedKeys(bc.updated),
		spec:     specCopy,
	}, nil
}

// buildContext accumulates the derived path sets while the recursive build
// walks the operation tree. prefix carries the dot-path of the enclosing
// merge target during nested builds.
type buildContext struct {
	involved map[string]struct{}
	updated  map[string]struct{}
	prefix   string
}

func (bc *buildContext) dotPath(ptr *pointer.Pointer) string {
	pp := ptr.PropPath()
	switch {
	case bc.prefix == "":
		return pp
	case pp == "":
		return bc.prefix
	default:
		return bc.prefix + "." + pp
	}
}

// involve records a read of the property and its ancestors.
func (bc *buildContext) involve(ptr *pointer.Pointer) {
	addWithAncestors(bc.involved, bc.dotPath(ptr))
}

// update records a possible value change of the property and its ancestors.
func (bc *buildContext) update(ptr *pointer.Pointer) {
	dp := bc.dotPath(ptr)
	addWithAncestors(bc.involved, dp)
	addWithAncestors(bc.updated, dp)
}

func addWithAncestors(set map[string]struct{}, dotPath string) {
	if dotPath == "" {
		return
	}
	for {
		set[dotPath] = struct{}{}
		i := strings.LastIndexByte(dotPath, '.')
		if i == -1 {
			return
		}
		dotPath = dotPath[:i]
	}
}

func buildOps(desc schema.Descriptor, spec opspec.Spec, bc *buildContext) ([]*Operation, error) {
	ops := make([]*Operation, 0, len(spec))
	for i := range spec {
		op, err := buildOp(desc, i+1, &spec[i], bc)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func buildOp(desc schema.Descriptor, index int, s *opspec.Op, bc *buildContext) (*Operation, error) {
	kind, ok := opKindOf(s.Op)
	if !ok {
		return nil, synErr(index, "unknown op %q", s.Op)
	}
	op := &Operation{kind: kind}

	switch kind {
	case OpAdd, OpReplace:
		var opts []pointer.ResolveOpt
		if kind == OpReplace {
			opts = append(opts, pointer.DisallowTrailingDash(true))
		}
		ptr, err := pointer.Resolve(desc, s.Path, opts...)
		if err != nil {
			return nil, opErr(index, err)
		}
		if err := checkSetTarget(index, ptr); err != nil {
			return nil, err
		}
		if err := checkLiteral(index, desc, ptr, s.Value, false); err != nil {
			return nil, err
		}
		op.ptr, op.value = ptr, s.Value
		bc.update(ptr)

	case OpRemove:
		ptr, err := pointer.Resolve(desc, s.Path, pointer.DisallowTrailingDash(true))
		if err != nil {
			return nil, opErr(index, err)
		}
		if err := checkEraseTarget(index, ptr); err != nil {
			return nil, err
		}
		op.ptr = ptr
		bc.update(ptr)

	case OpMove:
		from, err := pointer.Resolve(desc, s.From, pointer.DisallowTrailingDash(true))
		if err != nil {
			return nil, opErr(index, err)
		}
		ptr, err := pointer.Resolve(desc, s.Path)
		if err != nil {
			return nil, opErr(index, err)
		}
		if err := checkEraseTarget(index, from); err != nil {
			return nil, err
		}
		if err := checkSetTarget(index, ptr); err != nil {
			return nil, err
		}
		if err := checkCompatible(index, from, ptr); err != nil {
			return nil, err
		}
		if ptr.HasPrefix(from) && !ptr.Equal(from) {
			return nil, synErr(index, "move destination %q is inside its source %q", ptr, from)
		}
		op.ptr, op.from = ptr, from
		bc.update(from)
		bc.update(ptr)

	case OpCopy:
		from, err := pointer.Resolve(desc, s.From, pointer.DisallowTrailingDash(true))
		if err != nil {
			return nil, opErr(index, err)
		}
		ptr, err := pointer.Resolve(desc, s.Path)
		if err != nil {
			return nil, opErr(index, err)
		}
		if err := checkSetTarget(index, ptr); err != nil {
			return nil, err
		}
		if err := checkCompatible(index, from, ptr); err != nil {
			return nil, err
		}
		op.ptr, op.from = ptr, from
		bc.involve(from)
		bc.update(ptr)

	case OpTest:
		ptr, err := pointer.Resolve(desc, s.Path, pointer.DisallowTrailingDash(true))
		if err != nil {
			return nil, opErr(index, err)
		}
		if err := checkLiteral(index, desc, ptr, s.Value, true); err != nil {
			return nil, err
		}
		op.ptr, op.value = ptr, s.Value
		bc.involve(ptr)

	case OpMerge:
		ptr, err := pointer.Resolve(desc, s.Path, pointer.DisallowTrailingDash(true))
		if err != nil {
			return nil, opErr(index, err)
		}
		sub, add, err := buildMerge(desc, index, ptr, s, bc)
		if err != nil {
			return nil, err
		}
		op.ptr, op.value, op.sub = ptr, add, sub
	}
	return op, nil
}

// buildMerge validates a merge target, builds the nested sub-patch against
// the target's schema, and precomputes the add-fallback value (the merge
// document with null members stripped, per RFC 7396 for absent targets).
func buildMerge(desc schema.Descriptor, index int, ptr *pointer.Pointer, s *opspec.Op, bc *buildContext) (*Patch, any, error) {
	target := desc
	if !ptr.IsRoot() {
		prop := ptr.Prop()
		if prop.Scalar() != schema.ScalarObject {
			return nil, nil, synErr(index, "merge target %q is not a nested object", ptr)
		}
		if err := checkSetTarget(index, ptr); err != nil {
			return nil, nil, err
		}
		target = prop.Schema()
	}
	doc, ok := s.Value.(map[string]any)
	if !ok {
		return nil, nil, synErr(index, "merge value at %q must be an object", ptr)
	}
	bc.update(ptr)

	subSpec := s.Patch
	if subSpec == nil {
		subSpec = opspec.FromMergePatch(doc)
	}
	savedPrefix := bc.prefix
	bc.prefix = bc.dotPath(ptr)
	subOps, err := buildOps(target, subSpec, bc)
	bc.prefix = savedPrefix
	if err != nil {
		return nil, nil, err
	}
	sub := &Patch{desc: target, ops: subOps}
	return sub, stripNulls(doc), nil
}

// stripNulls removes null members recursively, the RFC 7396 result of
// merging into an absent target.
func stripNulls(doc map[string]any) map[string]any {
	res := make(map[string]any, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case nil:
			continue
		case map[string]any:
			res[k] = stripNulls(t)
		default:
			res[k] = v
		}
	}
	return res
}

func synErr(index int, format string, args ...any) error {
	return fmt.Errorf("%w: op %d: %s", errs.ErrSyntax, index, fmt.Sprintf(format, args...))
}

// opErr prefixes a resolver error with the 1-based operation index.
func opErr(index int, err error) error {
	return fmt.Errorf("op %d: %w", index, err)
}
