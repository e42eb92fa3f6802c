// Package errs declares the three failure kinds the engine distinguishes.
//
// ErrUsage covers unusable caller arguments: an unknown record type, a patch
// specification that is not an array, a diff over nested objects that declare
// no identity. ErrSyntax covers specifications that are invalid against the
// schema; it is raised entirely at build/resolve/diff time, before any record
// is touched. ErrData covers the case where a validated pointer's assumption
// does not hold against an actual record; it can surface mid-apply, after
// partial mutation.
//
// All three are sentinels meant to be wrapped with fmt.Errorf("%w: ...") and
// tested with errors.Is.
package errs

import "errors"

var (
	ErrUsage  = errors.New("usage error")
	ErrSyntax = errors.New("syntax error")
	ErrData   = errors.New("data error")
)
