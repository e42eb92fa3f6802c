package patchkit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openrec/patchkit"
	"github.com/openrec/patchkit/debug"
	"github.com/openrec/patchkit/libdiff"
)

// The diff/apply contract: building the diff of two records and applying it
// to a copy of the first must reproduce the second, up to null properties
// reading as absent.
func TestDiffApplyRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rec map[string]any)
	}{
		{
			"scalar edits",
			func(rec map[string]any) {
				rec["title"] = "rt"
				rec["done"] = true
				rec["due"] = "2026-09-01T10:00:00Z"
			},
		},
		{
			"scalar removal",
			func(rec map[string]any) {
				rec["done"] = nil
			},
		},
		{
			"tag splices",
			func(rec map[string]any) {
				rec["tags"] = []any{"b", "q", "c", "z"}
			},
		},
		{
			"tag reversal",
			func(rec map[string]any) {
				rec["tags"] = []any{"c", "b", "a"}
			},
		},
		{
			"label churn",
			func(rec map[string]any) {
				rec["labels"] = map[string]any{"tier": "gold", "env": "stage"}
			},
		},
		{
			"item identity reorder",
			func(rec map[string]any) {
				rec["items"] = []any{
					map[string]any{"id": 2, "v": "B"},
					map[string]any{"id": 1, "v": "X"},
				}
			},
		},
		{
			"nested object edit",
			func(rec map[string]any) {
				rec["spec"].(map[string]any)["note"] = "rt"
				rec["spec"].(map[string]any)["priority"] = 9
			},
		},
		{
			"container emptied and grown",
			func(rec map[string]any) {
				rec["tags"] = []any{}
				rec["items"] = append(rec["items"].([]any), map[string]any{"id": 9, "v": "Z", "qty": 4})
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			oldRec := taskRecord()
			newRec := taskRecord()
			test.mutate(newRec)

			spec, err := patchkit.Diff(taskType(), oldRec, newRec)
			require.NoError(t, err)

			p, err := patchkit.Build(taskType(), spec)
			require.NoError(t, err)

			got := libdiff.Clone(oldRec).(map[string]any)
			ok, err := p.Apply(got, nil)
			require.NoError(t, err)
			require.True(t, ok)

			if !libdiff.Equal(got, newRec) {
				t.Errorf("round trip diverged\nops: %v\n%s", spec,
					debug.TextDiff(debug.Dump(newRec), debug.Dump(got)))
			}
			if !libdiff.Equal(oldRec, taskRecord()) {
				t.Errorf("apply mutated the diffed original")
			}
		})
	}
}

// Applying the same patch twice must change nothing the second time. This
// holds for property and map edits; positional array splices shift on every
// application and are excluded on purpose.
func TestApplyIdempotent(t *testing.T) {
	newRec := taskRecord()
	newRec["title"] = "idem"
	newRec["done"] = nil
	newRec["labels"] = map[string]any{"env": "stage", "tier": "gold"}

	spec, err := patchkit.Diff(taskType(), taskRecord(), newRec)
	require.NoError(t, err)
	p, err := patchkit.Build(taskType(), spec)
	require.NoError(t, err)

	rec := taskRecord()
	ok, err := p.Apply(rec, nil)
	require.NoError(t, err)
	require.True(t, ok)
	once := libdiff.Clone(rec).(map[string]any)

	ok, err = p.Apply(rec, nil)
	require.NoError(t, err)
	require.True(t, ok)
	if !libdiff.Equal(once, rec) {
		t.Errorf("second apply changed the record:\nonce:  %#v\ntwice: %#v", once, rec)
	}
}
