package opspec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/openrec/patchkit/errs"
)

// ParseJSON decodes a JSON patch specification. The top-level value must be
// an array.
func ParseJSON(data []byte) (Spec, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: patch spec must be an array", errs.ErrUsage)
	}
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: decoding patch spec: %v", errs.ErrSyntax, err)
	}
	return s, nil
}

// ParseYAML decodes a YAML patch specification. The top-level value must be
// a sequence.
func ParseYAML(data []byte) (Spec, error) {
	var probe any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: decoding patch spec: %v", errs.ErrSyntax, err)
	}
	if _, ok := probe.([]any); !ok {
		return nil, fmt.Errorf("%w: patch spec must be an array", errs.ErrUsage)
	}
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: decoding patch spec: %v", errs.ErrSyntax, err)
	}
	return s, nil
}

// JSON serializes the spec in RFC 6902 wire form.
func (s Spec) JSON() ([]byte, error) {
	return json.Marshal(s)
}

// valueCarrying lists the ops whose wire form always has a value member.
var valueCarrying = map[string]bool{
	OpAdd:     true,
	OpReplace: true,
	OpTest:    true,
	OpMerge:   true,
}

// MarshalJSON keeps the value member of value-carrying ops even when it is
// null. RFC 6902 distinguishes a null value from an absent one.
func (o Op) MarshalJSON() ([]byte, error) {
	type wireOp struct {
		Op    string `json:"op"`
		Path  string `json:"path"`
		Value *any   `json:"value,omitempty"`
		From  string `json:"from,omitempty"`
		Patch Spec   `json:"patch,omitempty"`
	}
	w := wireOp{Op: o.Op, Path: o.Path, From: o.From, Patch: o.Patch}
	if o.Value != nil || valueCarrying[o.Op] {
		v := o.Value
		w.Value = &v
	}
	return json.Marshal(w)
}
