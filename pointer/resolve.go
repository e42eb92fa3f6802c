package pointer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openrec/patchkit/debug"
	"github.com/openrec/patchkit/errs"
	"github.com/openrec/patchkit/schema"
)

type ResolveConfig struct {
	DisallowTrailingDash bool
}

type ResolveOpt func(*ResolveConfig)

// DisallowTrailingDash rejects the append token "-" during resolution. Erase
// targets use it: "-" never addresses an existing element.
func DisallowTrailingDash(v bool) ResolveOpt {
	return func(c *ResolveConfig) { c.DisallowTrailingDash = v }
}

// Resolve parses an RFC 6901 path against a schema into a Pointer. The empty
// path resolves to the root pointer. Resolution fails when the path does not
// start with '/', when a token does not name a declared property at the
// current schema level, when a token indexes a non-collection property, when
// a trailing "-" is used while disallowed, or when a token descends into a
// scalar.
func Resolve(desc schema.Descriptor, path string, opts ...ResolveOpt) (*Pointer, error) {
	cfg := &ResolveConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if path == "" {
		return &Pointer{root: true}, nil
	}
	if path[0] != '/' {
		return nil, fmt.Errorf("%w: path %q does not start with '/'", errs.ErrSyntax, path)
	}
	raw := strings.Split(path[1:], "/")
	toks := make([]string, len(raw))
	for i, t := range raw {
		toks[i] = UnescapeToken(t)
	}

	p := &Pointer{steps: make([]step, 0, len(toks))}
	cur := desc
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		last := i == len(toks)-1
		if cur == nil {
			return nil, fmt.Errorf("%w: path %q descends into scalar at token %q",
				errs.ErrSyntax, path, tok)
		}
		prop := cur.Property(tok)
		if prop == nil {
			return nil, fmt.Errorf("%w: path %q: no property %q in type %q",
				errs.ErrSyntax, path, tok, cur.Name())
		}
		p.steps = append(p.steps, step{token: tok, prop: prop})
		p.prop = prop
		p.elem = false

		switch {
		case prop.Kind().IsCollection():
			if last {
				break
			}
			// next token addresses one element
			i++
			etok := toks[i]
			es := step{token: etok}
			if prop.Kind() == schema.KindArray {
				if etok == "-" {
					if i != len(toks)-1 {
						return nil, fmt.Errorf("%w: path %q: \"-\" must be the final token",
							errs.ErrSyntax, path)
					}
					if cfg.DisallowTrailingDash {
						return nil, fmt.Errorf("%w: path %q: trailing \"-\" not allowed here",
							errs.ErrSyntax, path)
					}
					es.dash = true
				} else {
					idx, err := strconv.Atoi(etok)
					if err != nil || idx < 0 {
						return nil, fmt.Errorf("%w: path %q: bad array index %q",
							errs.ErrSyntax, path, etok)
					}
					es.index = idx
				}
			} else {
				es.key = true
			}
			p.steps = append(p.steps, es)
			p.elem = true
			if i == len(toks)-1 {
				break
			}
			// further descent only into nested-object elements
			if prop.Scalar() != schema.ScalarObject {
				return nil, fmt.Errorf("%w: path %q descends into scalar at token %q",
					errs.ErrSyntax, path, toks[i+1])
			}
			cur = prop.Schema()

		case prop.Kind() == schema.KindObject:
			cur = prop.Schema()

		default:
			if !last {
				return nil, fmt.Errorf("%w: path %q descends into scalar at token %q",
					errs.ErrSyntax, path, toks[i+1])
			}
		}
	}
	if debug.Resolve() {
		debug.Logf("resolve %q in %s: prop path %q\n", path, desc.Name(), p.PropPath())
	}
	return p, nil
}

// MustResolve is Resolve for statically known-good paths; it panics on error.
func MustResolve(desc schema.Descriptor, path string, opts ...ResolveOpt) *Pointer {
	p, err := Resolve(desc, path, opts...)
	if err != nil {
		panic(err)
	}
	return p
}
