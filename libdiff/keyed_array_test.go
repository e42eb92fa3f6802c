package libdiff

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openrec/patchkit/errs"
	"github.com/openrec/patchkit/opspec"
)

func item(id any, v string) map[string]any {
	return map[string]any{"id": id, "v": v}
}

// diffV is a DiffFunc that only looks at the "v" property.
func diffV(prefix string, old, new map[string]any) (opspec.Spec, error) {
	if scalarEqual(old["v"], new["v"]) {
		return nil, nil
	}
	return opspec.Spec{{Op: opspec.OpReplace, Path: prefix + "/v", Value: new["v"]}}, nil
}

func TestDiffArrayByIdentity(t *testing.T) {
	tests := []struct {
		name string
		old  []any
		new  []any
		want opspec.Spec
	}{
		{
			name: "equal",
			old:  []any{item(1, "A"), item(2, "B")},
			new:  []any{item(1, "A"), item(2, "B")},
			want: nil,
		},
		{
			name: "insert then update then remove",
			old:  []any{item(1, "A"), item(3, "C")},
			new:  []any{item(2, "B"), item(1, "X")},
			want: opspec.Spec{
				{Op: opspec.OpAdd, Path: "/items/0", Value: item(2, "B")},
				{Op: opspec.OpReplace, Path: "/items/1/v", Value: "X"},
				{Op: opspec.OpRemove, Path: "/items/2"},
			},
		},
		{
			name: "in-place update keeps index",
			old:  []any{item(1, "A"), item(2, "B")},
			new:  []any{item(1, "A"), item(2, "Z")},
			want: opspec.Spec{
				{Op: opspec.OpReplace, Path: "/items/1/v", Value: "Z"},
			},
		},
		{
			name: "append new identity",
			old:  []any{item(1, "A")},
			new:  []any{item(1, "A"), item(2, "B")},
			want: opspec.Spec{
				{Op: opspec.OpAdd, Path: "/items/-", Value: item(2, "B")},
			},
		},
		{
			name: "vanished identity is removed not replaced",
			old:  []any{item(1, "A"), item(2, "B")},
			new:  []any{item(2, "B")},
			want: opspec.Spec{
				{Op: opspec.OpRemove, Path: "/items/0"},
			},
		},
		{
			name: "identity match across numeric widths",
			old:  []any{item(int64(7), "A")},
			new:  []any{item(float64(7), "A")},
			want: nil,
		},
		{
			name: "nil identity never matches",
			old:  []any{item(nil, "A")},
			new:  []any{item(nil, "A")},
			want: opspec.Spec{
				{Op: opspec.OpRemove, Path: "/items/0"},
				{Op: opspec.OpAdd, Path: "/items/-", Value: item(nil, "A")},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := DiffArrayByIdentity("/items", "id", test.old, test.new, diffV)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiffArrayByIdentityRejectsScalars(t *testing.T) {
	_, err := DiffArrayByIdentity("/items", "id", []any{"not-an-object"}, []any{item(1, "A")}, diffV)
	if !errors.Is(err, errs.ErrData) {
		t.Errorf("got %v, want ErrData", err)
	}
}
