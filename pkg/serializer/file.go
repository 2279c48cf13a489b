package serializer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FromFile reads a YAML or JSON document from path and unmarshals it into T.
// JSON parses as a YAML subset, so both encodings share one path.
func FromFile[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return FromBytes[T](data)
}

// FromBytes unmarshals a YAML or JSON document into T.
func FromBytes[T any](data []byte) (*T, error) {
	var out T
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &out, nil
}
