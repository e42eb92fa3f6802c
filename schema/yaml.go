package schema

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// ParseYAML decodes a type definition from YAML (or JSON, which is a subset)
// and validates it. It does not register the result.
func ParseYAML(data []byte) (*TypeDef, error) {
	t := &TypeDef{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("decoding type definition: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
