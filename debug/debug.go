// Package debug provides env-gated trace logging for the patch engine.
// Gates are read once at init from PATCHKIT_DEBUG_* boolean variables.
package debug

import (
	"fmt"
	"os"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type debug struct {
	Resolve bool
	Apply   bool
	Op      bool
	Diff    bool
}

var d *debug

func init() {
	d = &debug{}
	d.Resolve = boolEnv("PATCHKIT_DEBUG_RESOLVE")
	d.Apply = boolEnv("PATCHKIT_DEBUG_APPLY")
	d.Op = boolEnv("PATCHKIT_DEBUG_OP")
	d.Diff = boolEnv("PATCHKIT_DEBUG_DIFF")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Resolve() bool {
	return d.Resolve
}
func Apply() bool {
	return d.Apply
}
func Op() bool {
	return d.Op
}
func Diff() bool {
	return d.Diff
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}

// Dump renders a record or value for trace output.
func Dump(v any) string {
	return dumper.Sdump(v)
}

// TextDiff renders a readable character diff between two renderings, for
// trace output and test failure messages.
func TextDiff(a, b string) string {
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(a, b, true)
	return dmp.DiffPrettyText(diffs)
}
