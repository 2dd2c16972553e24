// Package dump renders request and response objects for diagnostics.
//
// Objects are normalised through JSON first, so struct tags decide field
// names and only exported data appears, then printed as YAML.
package dump

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Representation returns a YAML rendering of v.
func Representation(v any) (string, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("normalise: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("normalise: %w", err)
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("render yaml: %w", err)
	}
	return string(out), nil
}
