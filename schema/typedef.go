package schema

import "fmt"

// TypeDef is the in-memory Descriptor implementation. Field order is
// declaration order. TypeDef values are treated as immutable once registered.
type TypeDef struct {
	TypeName string      `yaml:"name" json:"name"`
	Fields   []*FieldDef `yaml:"fields" json:"fields"`
}

// FieldDef is the in-memory Property implementation.
type FieldDef struct {
	FieldName string     `yaml:"name" json:"name"`
	FieldKind Kind       `yaml:"kind" json:"kind"`
	Value     ScalarKind `yaml:"scalar" json:"scalar"`

	IsOptional   bool `yaml:"optional" json:"optional"`
	IsModifiable bool `yaml:"modifiable" json:"modifiable"`
	IsIdentity   bool `yaml:"identity" json:"identity"`
	IsComputed   bool `yaml:"computed" json:"computed"`
	IsView       bool `yaml:"view" json:"view"`

	RefTarget string              `yaml:"ref" json:"ref"`
	Nested    *TypeDef            `yaml:"nested" json:"nested"`
	Subtypes  map[string]*TypeDef `yaml:"subtypes" json:"subtypes"`
}

func (t *TypeDef) Name() string { return t.TypeName }

func (t *TypeDef) Property(name string) Property {
	for _, f := range t.Fields {
		if f.FieldName == name {
			return f
		}
	}
	return nil
}

func (t *TypeDef) Properties() []Property {
	res := make([]Property, len(t.Fields))
	for i, f := range t.Fields {
		res[i] = f
	}
	return res
}

func (t *TypeDef) Identity() Property {
	for _, f := range t.Fields {
		if f.IsIdentity {
			return f
		}
	}
	return nil
}

// Validate checks the internal consistency of a type definition before it is
// registered or used.
func (t *TypeDef) Validate() error {
	if t.TypeName == "" {
		return fmt.Errorf("type must have a name")
	}
	seen := make(map[string]bool, len(t.Fields))
	idCount := 0
	for _, f := range t.Fields {
		if f.FieldName == "" {
			return fmt.Errorf("type %q: field must have a name", t.TypeName)
		}
		if seen[f.FieldName] {
			return fmt.Errorf("type %q: duplicate field %q", t.TypeName, f.FieldName)
		}
		seen[f.FieldName] = true
		if f.IsIdentity {
			idCount++
			if f.IsModifiable {
				return fmt.Errorf("type %q: identity field %q cannot be modifiable",
					t.TypeName, f.FieldName)
			}
		}
		if f.Value == ScalarObject && f.Nested == nil {
			return fmt.Errorf("type %q: nested-object field %q has no nested schema",
				t.TypeName, f.FieldName)
		}
		if f.Value != ScalarObject && f.Nested != nil {
			return fmt.Errorf("type %q: field %q has a nested schema but scalar kind %s",
				t.TypeName, f.FieldName, f.Value)
		}
		if f.Value == ScalarRef && f.RefTarget == "" {
			return fmt.Errorf("type %q: reference field %q has no target",
				t.TypeName, f.FieldName)
		}
		if f.Nested != nil {
			if err := f.Nested.Validate(); err != nil {
				return err
			}
		}
		for disc, sub := range f.Subtypes {
			if disc == "" {
				return fmt.Errorf("type %q: field %q has an empty subtype discriminator",
					t.TypeName, f.FieldName)
			}
			if err := sub.Validate(); err != nil {
				return err
			}
		}
	}
	if idCount > 1 {
		return fmt.Errorf("type %q: more than one identity field", t.TypeName)
	}
	return nil
}

func (f *FieldDef) Name() string       { return f.FieldName }
func (f *FieldDef) Kind() Kind         { return f.FieldKind }
func (f *FieldDef) Scalar() ScalarKind { return f.Value }
func (f *FieldDef) Optional() bool     { return f.IsOptional }
func (f *FieldDef) Modifiable() bool   { return f.IsModifiable }
func (f *FieldDef) Identity() bool     { return f.IsIdentity }
func (f *FieldDef) Computed() bool     { return f.IsComputed }
func (f *FieldDef) View() bool         { return f.IsView }
func (f *FieldDef) Ref() string        { return f.RefTarget }

func (f *FieldDef) Schema() Descriptor {
	if f.Nested == nil {
		return nil
	}
	return f.Nested
}

func (f *FieldDef) Subtype(discriminator string) Descriptor {
	sub := f.Subtypes[discriminator]
	if sub == nil {
		return nil
	}
	return sub
}
