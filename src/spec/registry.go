package spec

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaRegistry resolves nested object schemas by (provider, type name). It
// is populated once at startup and treated as immutable afterwards; spec
// changes take effect on redeploy, not via runtime reload.
type SchemaRegistry struct {
	schemas map[string]ObjectSchema
}

// NewSchemaRegistry builds a registry from the provided schemas.
func NewSchemaRegistry(schemas []ObjectSchema) *SchemaRegistry {
	r := &SchemaRegistry{schemas: make(map[string]ObjectSchema, len(schemas))}
	for _, s := range schemas {
		r.schemas[schemaKey(s.Provider, s.Name)] = s
	}
	return r
}

// LoadSchemaRegistry reads nested object schemas from a YAML file. A missing
// file yields an empty registry: hosts without structured tools don't need one.
func LoadSchemaRegistry(path string) (*SchemaRegistry, error) {
	if strings.TrimSpace(path) == "" {
		return NewSchemaRegistry(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSchemaRegistry(nil), nil
		}
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	var schemas []ObjectSchema
	if err := yaml.Unmarshal(data, &schemas); err != nil {
		return nil, fmt.Errorf("parse schema file %s: %w", path, err)
	}
	return NewSchemaRegistry(schemas), nil
}

// Resolve returns the schema registered for (provider, name).
func (r *SchemaRegistry) Resolve(provider, name string) (ObjectSchema, bool) {
	if r == nil {
		return ObjectSchema{}, false
	}
	s, ok := r.schemas[schemaKey(provider, name)]
	return s, ok
}

// Len returns the number of registered schemas.
func (r *SchemaRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.schemas)
}

func schemaKey(provider, name string) string {
	return strings.ToLower(strings.TrimSpace(provider)) + "/" + strings.TrimSpace(name)
}
