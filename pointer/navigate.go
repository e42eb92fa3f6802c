package pointer

import (
	"fmt"

	"github.com/openrec/patchkit/errs"
	"github.com/openrec/patchkit/schema"
)

// Records are plain decoded JSON values: objects are map[string]any, arrays
// are []any, scalars are string/float64/int/int64/bool. The navigator mutates
// them in place; inserting into or erasing from an array stores the rebuilt
// slice back under its property key.

// Read returns the value the pointer addresses. defined is false for a
// missing collection element (out-of-range index, absent key, or "-"); a
// present-but-null whole property reads as (nil, true). A missing or null
// intermediate segment fails with a data error.
func (p *Pointer) Read(rec map[string]any) (value any, defined bool, err error) {
	if p.root {
		return rec, true, nil
	}
	parent, err := p.walk(rec)
	if err != nil {
		return nil, false, err
	}
	name := p.propToken()
	if !p.elem {
		return parent[name], true, nil
	}
	coll := parent[name]
	if coll == nil {
		return nil, false, fmt.Errorf("%w: collection %q missing at %q",
			errs.ErrData, name, p.String())
	}
	last := p.steps[len(p.steps)-1]
	if last.key {
		m, ok := coll.(map[string]any)
		if !ok {
			return nil, false, fmt.Errorf("%w: %q is not a map at %q",
				errs.ErrData, name, p.String())
		}
		v, ok := m[last.token]
		return v, ok, nil
	}
	arr, ok := coll.([]any)
	if !ok {
		return nil, false, fmt.Errorf("%w: %q is not an array at %q",
			errs.ErrData, name, p.String())
	}
	if last.dash || last.index >= len(arr) {
		return nil, false, nil
	}
	return arr[last.index], true, nil
}

// Write inserts before the addressed array index (appending for "-"), adds or
// replaces the addressed map key, or replaces the whole property.
func (p *Pointer) Write(rec map[string]any, value any) error {
	if err := p.checkValue(value); err != nil {
		return err
	}
	if p.root {
		return p.writeRoot(rec, value)
	}
	parent, err := p.walk(rec)
	if err != nil {
		return err
	}
	name := p.propToken()
	if !p.elem {
		parent[name] = value
		return nil
	}
	last := p.steps[len(p.steps)-1]
	if last.key {
		m, err := p.collMap(parent, name)
		if err != nil {
			return err
		}
		m[last.token] = value
		return nil
	}
	arr, err := p.collArray(parent, name)
	if err != nil {
		return err
	}
	if last.dash {
		parent[name] = append(arr, value)
		return nil
	}
	if last.index > len(arr) {
		return fmt.Errorf("%w: index %d out of bounds (len %d) at %q",
			errs.ErrData, last.index, len(arr), p.String())
	}
	next := make([]any, 0, len(arr)+1)
	next = append(next, arr[:last.index]...)
	next = append(next, value)
	next = append(next, arr[last.index:]...)
	parent[name] = next
	return nil
}

// Overwrite replaces an existing array element in place; for map keys and
// whole properties it behaves like Write without the insert semantics.
func (p *Pointer) Overwrite(rec map[string]any, value any) error {
	if err := p.checkValue(value); err != nil {
		return err
	}
	if p.root {
		return p.writeRoot(rec, value)
	}
	parent, err := p.walk(rec)
	if err != nil {
		return err
	}
	name := p.propToken()
	if !p.elem {
		parent[name] = value
		return nil
	}
	last := p.steps[len(p.steps)-1]
	if last.key {
		m, err := p.collMap(parent, name)
		if err != nil {
			return err
		}
		m[last.token] = value
		return nil
	}
	arr, err := p.collArray(parent, name)
	if err != nil {
		return err
	}
	if last.dash || last.index >= len(arr) {
		return fmt.Errorf("%w: no element to overwrite at %q", errs.ErrData, p.String())
	}
	arr[last.index] = value
	return nil
}

// Erase deletes an array element (left-shifting the tail) or map key, or
// nulls the whole property. existed is false when there was nothing to
// remove. Erasing the root is not supported.
func (p *Pointer) Erase(rec map[string]any) (removed any, existed bool, err error) {
	if p.root {
		return nil, false, fmt.Errorf("%w: cannot erase the record root", errs.ErrUsage)
	}
	parent, err := p.walk(rec)
	if err != nil {
		return nil, false, err
	}
	name := p.propToken()
	if !p.elem {
		old := parent[name]
		parent[name] = nil
		return old, !isEmpty(old), nil
	}
	last := p.steps[len(p.steps)-1]
	if last.key {
		m, err := p.collMap(parent, name)
		if err != nil {
			return nil, false, err
		}
		v, ok := m[last.token]
		if !ok {
			return nil, false, nil
		}
		delete(m, last.token)
		return v, true, nil
	}
	arr, err := p.collArray(parent, name)
	if err != nil {
		return nil, false, err
	}
	if last.dash || last.index >= len(arr) {
		return nil, false, nil
	}
	removed = arr[last.index]
	next := make([]any, 0, len(arr)-1)
	next = append(next, arr[:last.index]...)
	next = append(next, arr[last.index+1:]...)
	parent[name] = next
	return removed, true, nil
}

// walk descends all intermediate steps and returns the map holding the final
// property step. Missing or null intermediates fail with a data error.
func (p *Pointer) walk(rec map[string]any) (map[string]any, error) {
	stop := len(p.steps) - 1
	if p.elem {
		stop--
	}
	cur := any(rec)
	for i := 0; i < stop; i++ {
		s := p.steps[i]
		if s.prop != nil {
			m, ok := cur.(map[string]any)
			if !ok || m == nil {
				return nil, fmt.Errorf("%w: expected object before %q at %q",
					errs.ErrData, s.token, p.String())
			}
			v := m[s.token]
			if v == nil {
				return nil, fmt.Errorf("%w: missing intermediate %q at %q",
					errs.ErrData, s.token, p.String())
			}
			cur = v
			continue
		}
		if s.key {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: expected map before %q at %q",
					errs.ErrData, s.token, p.String())
			}
			v, present := m[s.token]
			if !present || v == nil {
				return nil, fmt.Errorf("%w: missing intermediate key %q at %q",
					errs.ErrData, s.token, p.String())
			}
			cur = v
			continue
		}
		arr, ok := cur.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected array before index %d at %q",
				errs.ErrData, s.index, p.String())
		}
		if s.dash || s.index >= len(arr) {
			return nil, fmt.Errorf("%w: missing intermediate index %d at %q",
				errs.ErrData, s.index, p.String())
		}
		if arr[s.index] == nil {
			return nil, fmt.Errorf("%w: null intermediate at index %d at %q",
				errs.ErrData, s.index, p.String())
		}
		cur = arr[s.index]
	}
	m, ok := cur.(map[string]any)
	if !ok || m == nil {
		return nil, fmt.Errorf("%w: expected object at %q", errs.ErrData, p.String())
	}
	return m, nil
}

func (p *Pointer) propToken() string {
	if p.elem {
		return p.steps[len(p.steps)-2].token
	}
	return p.steps[len(p.steps)-1].token
}

func (p *Pointer) collArray(parent map[string]any, name string) ([]any, error) {
	coll := parent[name]
	if coll == nil {
		return nil, fmt.Errorf("%w: collection %q missing at %q",
			errs.ErrData, name, p.String())
	}
	arr, ok := coll.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an array at %q",
			errs.ErrData, name, p.String())
	}
	return arr, nil
}

func (p *Pointer) collMap(parent map[string]any, name string) (map[string]any, error) {
	coll := parent[name]
	if coll == nil {
		return nil, fmt.Errorf("%w: collection %q missing at %q",
			errs.ErrData, name, p.String())
	}
	m, ok := coll.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a map at %q",
			errs.ErrData, name, p.String())
	}
	return m, nil
}

// checkValue rejects null writes except for non-nested-object collection
// elements; nested-object elements never accept null.
func (p *Pointer) checkValue(value any) error {
	if value != nil {
		return nil
	}
	if p.elem && p.prop.Scalar() != schema.ScalarObject {
		return nil
	}
	return fmt.Errorf("%w: null value not allowed at %q", errs.ErrData, p.String())
}

func (p *Pointer) writeRoot(rec map[string]any, value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: root value must be an object", errs.ErrData)
	}
	clear(rec)
	for k, v := range m {
		rec[k] = v
	}
	return nil
}

func isEmpty(v any) bool {
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
