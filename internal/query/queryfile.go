// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// WriteSpecFile saves a QuerySpec as YAML so a built query can be reloaded
// later without rebuilding it from interest text.
func WriteSpecFile(path string, spec types.QuerySpec) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("encoding query file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing query file: %w", err)
	}
	return nil
}

// ReadSpecFile loads a QuerySpec saved by WriteSpecFile. The resolved query
// is re-validated on load.
func ReadSpecFile(path string) (types.QuerySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.QuerySpec{}, fmt.Errorf("reading query file: %w", err)
	}
	var spec types.QuerySpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return types.QuerySpec{}, fmt.Errorf("parsing query file %s: %w", path, err)
	}
	if err := ValidateSyntax(spec.ResolvedQuery); err != nil {
		return types.QuerySpec{}, err
	}
	return spec, nil
}
