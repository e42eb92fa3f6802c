package patchkit

import (
	"fmt"

	"github.com/openrec/patchkit/debug"
	"github.com/openrec/patchkit/opspec"
	"github.com/openrec/patchkit/schema"
)

// Patch is a validated, ordered operation sequence bound to one record type.
// It is immutable after build and may be applied to any number of records of
// that type; concurrent Apply calls on distinct records are safe.
type Patch struct {
	desc     schema.Descriptor
	ops      []*Operation
	involved []string
	updated  []string
	spec     opspec.Spec
}

// Apply executes the operations in order, mutating rec in place. It returns
// false as soon as a test operation fails; no further operations run and the
// record is left as mutated so far. Atomicity, when needed, is the caller's
// copy-and-swap. A data error can likewise surface after partial mutation.
func (p *Patch) Apply(rec map[string]any, obs *Observer) (bool, error) {
	for i, op := range p.ops {
		if debug.Apply() {
			debug.Logf("apply %d/%d: %s\n", i+1, len(p.ops), op)
		}
		ok, err := op.apply(rec, obs)
		if err != nil {
			return false, fmt.Errorf("op %d (%s): %w", i+1, op.kind, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Type returns the descriptor the patch was built against.
func (p *Patch) Type() schema.Descriptor { return p.desc }

// Len returns the number of operations.
func (p *Patch) Len() int { return len(p.ops) }

// Operations returns the validated operations in order.
func (p *Patch) Operations() []*Operation {
	res := make([]*Operation, len(p.ops))
	copy(res, p.ops)
	return res
}

// InvolvedPropPaths returns the sorted dot-paths of every property the patch
// reads, erases or updates, including move/copy sources and test targets.
func (p *Patch) InvolvedPropPaths() []string {
	res := make([]string, len(p.involved))
	copy(res, p.involved)
	return res
}

// UpdatedPropPaths returns the sorted dot-paths of every property whose value
// may change, including ancestors of nested changes.
func (p *Patch) UpdatedPropPaths() []string {
	res := make([]string, len(p.updated))
	copy(res, p.updated)
	return res
}

// Spec returns the wire-form specification the patch was built from, so a
// validated patch can be serialized and shipped.
func (p *Patch) Spec() opspec.Spec {
	res := make(opspec.Spec, len(p.spec))
	copy(res, p.spec)
	return res
}
