package pointer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openrec/patchkit/errs"
	"github.com/openrec/patchkit/pointer"
	"github.com/openrec/patchkit/schema"
)

func testType() *schema.TypeDef {
	item := &schema.TypeDef{
		TypeName: "task.item",
		Fields: []*schema.FieldDef{
			{FieldName: "id", FieldKind: schema.KindScalar, Value: schema.ScalarNumber, IsIdentity: true},
			{FieldName: "v", FieldKind: schema.KindScalar, Value: schema.ScalarString, IsModifiable: true},
			{FieldName: "qty", FieldKind: schema.KindScalar, Value: schema.ScalarNumber, IsOptional: true, IsModifiable: true},
		},
	}
	spec := &schema.TypeDef{
		TypeName: "task.spec",
		Fields: []*schema.FieldDef{
			{FieldName: "priority", FieldKind: schema.KindScalar, Value: schema.ScalarNumber, IsModifiable: true},
			{FieldName: "note", FieldKind: schema.KindScalar, Value: schema.ScalarString, IsOptional: true, IsModifiable: true},
		},
	}
	return &schema.TypeDef{
		TypeName: "task",
		Fields: []*schema.FieldDef{
			{FieldName: "id", FieldKind: schema.KindScalar, Value: schema.ScalarNumber, IsIdentity: true},
			{FieldName: "title", FieldKind: schema.KindScalar, Value: schema.ScalarString, IsModifiable: true},
			{FieldName: "done", FieldKind: schema.KindScalar, Value: schema.ScalarBool, IsOptional: true, IsModifiable: true},
			{FieldName: "tags", FieldKind: schema.KindArray, Value: schema.ScalarString, IsOptional: true, IsModifiable: true},
			{FieldName: "labels", FieldKind: schema.KindMap, Value: schema.ScalarString, IsOptional: true, IsModifiable: true},
			{FieldName: "spec", FieldKind: schema.KindObject, Value: schema.ScalarObject, Nested: spec, IsOptional: true, IsModifiable: true},
			{FieldName: "items", FieldKind: schema.KindArray, Value: schema.ScalarObject, Nested: item, IsOptional: true, IsModifiable: true},
			{FieldName: "a/b~c", FieldKind: schema.KindScalar, Value: schema.ScalarString, IsOptional: true, IsModifiable: true},
		},
	}
}

type resolveTest struct {
	path     string
	noDash   bool
	elem     bool
	propPath string
	err      bool
}

func TestResolve(t *testing.T) {
	tests := []resolveTest{
		{path: "", propPath: ""},
		{path: "/title", propPath: "title"},
		{path: "/tags", propPath: "tags"},
		{path: "/tags/0", elem: true, propPath: "tags"},
		{path: "/tags/-", elem: true, propPath: "tags"},
		{path: "/labels/team", elem: true, propPath: "labels"},
		{path: "/spec/note", propPath: "spec.note"},
		{path: "/items/3/qty", propPath: "items.qty"},
		{path: "/a~1b~0c", propPath: "a/b~c"},

		{path: "title", err: true},
		{path: "/nope", err: true},
		{path: "/title/0", err: true},
		{path: "/title/x", err: true},
		{path: "/tags/x", err: true},
		{path: "/tags/-1", err: true},
		{path: "/tags/-", noDash: true, err: true},
		{path: "/tags/-/x", err: true},
		{path: "/tags/0/x", err: true},
		{path: "/spec/nope", err: true},
		{path: "/items/0/v/x", err: true},
	}
	desc := testType()
	for _, test := range tests {
		var opts []pointer.ResolveOpt
		if test.noDash {
			opts = append(opts, pointer.DisallowTrailingDash(true))
		}
		ptr, err := pointer.Resolve(desc, test.path, opts...)
		if test.err {
			if err == nil {
				t.Errorf("resolve %q: expected error, got %q", test.path, ptr)
			} else if !errors.Is(err, errs.ErrSyntax) {
				t.Errorf("resolve %q: error %v is not a syntax error", test.path, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("resolve %q: %v", test.path, err)
			continue
		}
		if got := ptr.String(); got != test.path {
			t.Errorf("resolve %q: round-trips to %q", test.path, got)
		}
		if ptr.IsElement() != test.elem {
			t.Errorf("resolve %q: element = %v, want %v", test.path, ptr.IsElement(), test.elem)
		}
		if got := ptr.PropPath(); got != test.propPath {
			t.Errorf("resolve %q: prop path %q, want %q", test.path, got, test.propPath)
		}
	}
}

func TestResolveRoundTripEqual(t *testing.T) {
	desc := testType()
	for _, path := range []string{"", "/title", "/tags/2", "/items/0/v", "/labels/x", "/a~1b~0c"} {
		ptr, err := pointer.Resolve(desc, path)
		require.NoError(t, err)
		again, err := pointer.Resolve(desc, ptr.String())
		require.NoError(t, err)
		require.True(t, ptr.Equal(again), "pointer %q round-trip", path)
	}
}

func TestHasPrefix(t *testing.T) {
	desc := testType()
	spec := pointer.MustResolve(desc, "/spec")
	note := pointer.MustResolve(desc, "/spec/note")
	title := pointer.MustResolve(desc, "/title")

	if !note.HasPrefix(spec) {
		t.Errorf("%q should be under %q", note, spec)
	}
	if !spec.HasPrefix(spec) {
		t.Errorf("%q should be under itself", spec)
	}
	if title.HasPrefix(spec) {
		t.Errorf("%q should not be under %q", title, spec)
	}
}
