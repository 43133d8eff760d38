package spec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadToolSpecs reads tool specifications from a YAML file and validates
// their structural invariants.
func LoadToolSpecs(path string) ([]ToolSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tool spec file: %w", err)
	}
	var specs []ToolSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse tool spec file %s: %w", path, err)
	}
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// LoadProviderSpecs reads provider configurations from a YAML file.
func LoadProviderSpecs(path string) ([]ProviderSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read provider spec file: %w", err)
	}
	var providers []ProviderSpec
	if err := yaml.Unmarshal(data, &providers); err != nil {
		return nil, fmt.Errorf("parse provider spec file %s: %w", path, err)
	}
	for _, p := range providers {
		if p.Name == "" || p.BaseURL == "" {
			return nil, fmt.Errorf("provider entry missing name or base_url")
		}
	}
	return providers, nil
}
