package spec

import (
	"fmt"
	"regexp"
	"strings"
)

// ToolSpec is the declarative description of one remote tool, as published by
// the registry service. Specs are immutable once loaded.
type ToolSpec struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Endpoint    string     `json:"endpoint" yaml:"endpoint"`
	Method      string     `json:"method" yaml:"method"`
	Provider    string     `json:"provider" yaml:"provider"`
	ArgsSchema  ArgsSchema `json:"args_schema" yaml:"args_schema"`
}

// ProviderSpec names a leaf service and where it lives.
type ProviderSpec struct {
	Name    string `json:"name" yaml:"name"`
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// ArgsSchema declares the arguments a tool accepts.
type ArgsSchema struct {
	Properties map[string]ParamSpec `json:"properties" yaml:"properties"`
	Required   []string             `json:"required" yaml:"required"`
}

// ParamSpec is a tagged variant: a simple scalar parameter (Type/Enum/Default)
// or a structured parameter referencing a nested schema by name
// (SchemasName). A structured parameter is carried as the request body.
type ParamSpec struct {
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Enum        []any  `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	SchemasName string `json:"schemas_name,omitempty" yaml:"schemas_name,omitempty"`
}

// Structured reports whether the parameter references a nested object schema.
func (p ParamSpec) Structured() bool {
	return strings.TrimSpace(p.SchemasName) != ""
}

// ObjectSchema is a nested object schema resolved by (provider, name).
type ObjectSchema struct {
	Name       string               `json:"name" yaml:"name"`
	Provider   string               `json:"provider" yaml:"provider"`
	Properties map[string]ParamSpec `json:"properties" yaml:"properties"`
	Required   []string             `json:"required" yaml:"required"`
}

var httpMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true, "PATCH": true,
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Placeholders returns the {param} names in the endpoint template, in order.
func (t ToolSpec) Placeholders() []string {
	matches := placeholderPattern.FindAllStringSubmatch(t.Endpoint, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Validate checks the structural invariants of a tool spec: a usable name and
// method, and every endpoint placeholder backed by a declared parameter.
func (t ToolSpec) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("tool spec has no name")
	}
	if !httpMethods[strings.ToUpper(strings.TrimSpace(t.Method))] {
		return fmt.Errorf("tool %s: unsupported method %q", t.Name, t.Method)
	}
	for _, ph := range t.Placeholders() {
		if _, ok := t.ArgsSchema.Properties[ph]; !ok {
			return fmt.Errorf("tool %s: endpoint placeholder {%s} has no matching parameter", t.Name, ph)
		}
	}
	return nil
}

// IsRequired reports whether name appears in the required set.
func (s ArgsSchema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// IsRequired reports whether name appears in the nested schema's required set.
func (s ObjectSchema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}
