// Package pointer resolves RFC 6901 path strings against a schema into
// Pointers and navigates concrete records through them. Resolution walks the
// schema only; it never inspects record data, so identical paths resolve
// identically regardless of data. Navigation is the only place records are
// read or mutated.
package pointer

import (
	"strings"

	"github.com/openrec/patchkit/schema"
)

// Pointer is a resolved, schema-validated location in a record. Pointers are
// immutable after resolution; equality is structural (string form).
type Pointer struct {
	steps []step
	prop  schema.Property
	elem  bool
	root  bool
}

// step is one resolved path token. Either prop is set (the token names a
// schema property) or the step addresses one collection element of the
// preceding property step.
type step struct {
	token string
	prop  schema.Property
	index int
	dash  bool
	key   bool
}

// Prop returns the property descriptor the pointer targets, nil for the root
// pointer. For a collection element the descriptor is that of the collection
// property.
func (p *Pointer) Prop() schema.Property { return p.prop }

// IsElement reports whether the pointer addresses one array/map element
// rather than the whole collection property.
func (p *Pointer) IsElement() bool { return p.elem }

// IsRoot reports whether the pointer addresses the whole record.
func (p *Pointer) IsRoot() bool { return p.root }

// Index returns the addressed array index. ok is false for non-array-element
// pointers and for the trailing dash.
func (p *Pointer) Index() (int, bool) {
	if !p.elem {
		return 0, false
	}
	last := p.steps[len(p.steps)-1]
	if last.dash || last.key {
		return 0, false
	}
	return last.index, true
}

// Dash reports whether the pointer ends in the append token "-".
func (p *Pointer) Dash() bool {
	if !p.elem {
		return false
	}
	return p.steps[len(p.steps)-1].dash
}

// Key returns the addressed map key. ok is false for non-map-element
// pointers.
func (p *Pointer) Key() (string, bool) {
	if !p.elem {
		return "", false
	}
	last := p.steps[len(p.steps)-1]
	if !last.key {
		return "", false
	}
	return last.token, true
}

// String renders the pointer back in RFC 6901 form. The root pointer renders
// as "".
func (p *Pointer) String() string {
	if p.root {
		return ""
	}
	var b strings.Builder
	for _, s := range p.steps {
		b.WriteByte('/')
		b.WriteString(EscapeToken(s.token))
	}
	return b.String()
}

// PropPath returns the dot-separated property path of the pointer, skipping
// collection-element tokens: "/items/3/v" has prop path "items.v".
func (p *Pointer) PropPath() string {
	var parts []string
	for _, s := range p.steps {
		if s.prop != nil {
			parts = append(parts, s.token)
		}
	}
	return strings.Join(parts, ".")
}

// Equal reports structural equality of two pointers.
func (p *Pointer) Equal(o *Pointer) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.String() == o.String()
}

// HasPrefix reports whether o addresses p itself or a location inside the
// subtree under p.
func (p *Pointer) HasPrefix(o *Pointer) bool {
	if o.root {
		return true
	}
	os, ps := o.String(), p.String()
	if !strings.HasPrefix(ps, os) {
		return false
	}
	return len(ps) == len(os) || ps[len(os)] == '/'
}

// UnescapeToken reverses RFC 6901 token escaping (~1 -> "/", ~0 -> "~").
func UnescapeToken(tok string) string {
	if !strings.Contains(tok, "~") {
		return tok
	}
	tok = strings.ReplaceAll(tok, "~1", "/")
	return strings.ReplaceAll(tok, "~0", "~")
}

// EscapeToken applies RFC 6901 token escaping ("~" -> ~0, "/" -> ~1).
func EscapeToken(tok string) string {
	if !strings.ContainsAny(tok, "~/") {
		return tok
	}
	tok = strings.ReplaceAll(tok, "~", "~0")
	return strings.ReplaceAll(tok, "/", "~1")
}
