package patchkit_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrec/patchkit"
	"github.com/openrec/patchkit/errs"
	"github.com/openrec/patchkit/opspec"
	"github.com/openrec/patchkit/schema"
)

func TestDiffScalars(t *testing.T) {
	oldRec := taskRecord()
	newRec := taskRecord()
	newRec["title"] = "new title"
	newRec["done"] = nil
	delete(newRec, "id") // identity absence is never a removal

	got, err := patchkit.Diff(taskType(), oldRec, newRec)
	require.NoError(t, err)
	want := opspec.Spec{
		{Op: opspec.OpReplace, Path: "/title", Value: "new title"},
		{Op: opspec.OpRemove, Path: "/done"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestDiffSkipsComputedAndView(t *testing.T) {
	oldRec := taskRecord()
	newRec := taskRecord()
	newRec["version"] = 7
	newRec["summary"] = "derived"

	got, err := patchkit.Diff(taskType(), oldRec, newRec)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiffScalarArray(t *testing.T) {
	oldRec := taskRecord()
	oldRec["tags"] = []any{"A", "B", "C", "D", "E", "F", "G"}
	newRec := taskRecord()
	newRec["tags"] = []any{"A", "B", "E", "F", "G"}

	got, err := patchkit.Diff(taskType(), oldRec, newRec)
	require.NoError(t, err)
	want := opspec.Spec{
		{Op: opspec.OpRemove, Path: "/tags/2"},
		{Op: opspec.OpRemove, Path: "/tags/2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestDiffIdentityArray(t *testing.T) {
	oldRec := taskRecord()
	newRec := taskRecord()
	newRec["items"] = []any{
		map[string]any{"id": 2, "v": "B"},
		map[string]any{"id": 1, "v": "X"},
	}

	got, err := patchkit.Diff(taskType(), oldRec, newRec)
	require.NoError(t, err)
	want := opspec.Spec{
		{Op: opspec.OpAdd, Path: "/items/0", Value: map[string]any{"id": 2, "v": "B"}},
		{Op: opspec.OpReplace, Path: "/items/1/v", Value: "X"},
		{Op: opspec.OpRemove, Path: "/items/2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestDiffMap(t *testing.T) {
	oldRec := taskRecord()
	oldRec["labels"] = map[string]any{"env": "prod", "team": "core", "tier": "gold"}
	newRec := taskRecord()
	newRec["labels"] = map[string]any{"env": "stage", "region": "eu", "tier": "gold"}

	got, err := patchkit.Diff(taskType(), oldRec, newRec)
	require.NoError(t, err)
	want := opspec.Spec{
		{Op: opspec.OpReplace, Path: "/labels/env", Value: "stage"},
		{Op: opspec.OpAdd, Path: "/labels/region", Value: "eu"},
		{Op: opspec.OpRemove, Path: "/labels/team"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestDiffNestedObject(t *testing.T) {
	oldRec := taskRecord()
	newRec := taskRecord()
	newRec["spec"] = map[string]any{"priority": 1, "note": "edited"}

	got, err := patchkit.Diff(taskType(), oldRec, newRec)
	require.NoError(t, err)
	want := opspec.Spec{
		{Op: opspec.OpReplace, Path: "/spec/note", Value: "edited"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestDiffContainerEmptiness(t *testing.T) {
	oldRec := taskRecord()
	newRec := taskRecord()
	newRec["tags"] = []any{}

	got, err := patchkit.Diff(taskType(), oldRec, newRec)
	require.NoError(t, err)
	want := opspec.Spec{{Op: opspec.OpRemove, Path: "/tags"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("emptied (-want +got):\n%s", diff)
	}

	oldRec = taskRecord()
	oldRec["labels"] = nil
	newRec = taskRecord()

	got, err = patchkit.Diff(taskType(), oldRec, newRec)
	require.NoError(t, err)
	want = opspec.Spec{{Op: opspec.OpReplace, Path: "/labels", Value: map[string]any{"env": "prod"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("populated (-want +got):\n%s", diff)
	}
}

func TestDiffEqualRecords(t *testing.T) {
	got, err := patchkit.Diff(taskType(), taskRecord(), taskRecord())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiffRejectsUnknownProperties(t *testing.T) {
	newRec := taskRecord()
	newRec["bogus"] = 1
	newRec["spec"].(map[string]any)["mystery"] = true

	_, err := patchkit.Diff(taskType(), taskRecord(), newRec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSyntax), "got %v", err)
	assert.Contains(t, err.Error(), "bogus")
	assert.Contains(t, err.Error(), "spec.mystery")
}

func TestDiffType(t *testing.T) {
	reg := schema.MapRegistry{"task": taskType()}

	_, err := patchkit.DiffType(reg, "unknown", nil, nil)
	assert.True(t, errors.Is(err, errs.ErrUsage), "got %v", err)

	newRec := taskRecord()
	newRec["title"] = "x"
	got, err := patchkit.DiffType(reg, "task", taskRecord(), newRec)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
