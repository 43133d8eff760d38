// Package schema turns the declarative argument schema of a tool spec into a
// runtime validation contract. No code generation happens at call time: the
// schema is interpreted by a generic validate pass over a tagged-variant
// field representation.
package schema

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/itapia/agent-host/src/spec"
)

// ArgValidator validates raw tool arguments against a synthesized contract.
// Validators are immutable and safe for concurrent use.
type ArgValidator struct {
	toolName  string
	fields    map[string]field
	required  map[string]bool
	bodyParam string
}

// field is the interpreted form of one ParamSpec.
type field struct {
	name       string
	typ        string // string | integer | number | boolean
	enum       []any
	def        any
	hasDefault bool
	structured bool
	nested     *objectValidator // nil when the nested schema could not be resolved
}

type objectValidator struct {
	schemaName string
	fields     map[string]field
	required   map[string]bool
}

// Build synthesizes an ArgValidator from a tool spec. Structured parameters
// are resolved against the schema registry; an unresolvable reference
// degrades that field to an open-ended mapping with a logged warning so one
// bad spec never takes down the whole tool set. Build is idempotent and free
// of side effects beyond logging.
func Build(ts spec.ToolSpec, schemas *spec.SchemaRegistry) (*ArgValidator, error) {
	v := &ArgValidator{
		toolName: ts.Name,
		fields:   make(map[string]field, len(ts.ArgsSchema.Properties)),
		required: make(map[string]bool, len(ts.ArgsSchema.Required)),
	}
	for _, r := range ts.ArgsSchema.Required {
		v.required[r] = true
	}

	for name, ps := range ts.ArgsSchema.Properties {
		f, err := buildField(ts, name, ps, schemas)
		if err != nil {
			return nil, err
		}
		if f.structured {
			if v.bodyParam != "" {
				return nil, &SchemaError{Tool: ts.Name, Msg: fmt.Sprintf(
					"parameters %q and %q are both structured; at most one body carrier is allowed", v.bodyParam, name)}
			}
			v.bodyParam = name
		}
		v.fields[name] = f
	}
	return v, nil
}

func buildField(ts spec.ToolSpec, name string, ps spec.ParamSpec, schemas *spec.SchemaRegistry) (field, error) {
	f := field{name: name}
	if ps.Structured() {
		f.structured = true
		nested, ok := schemas.Resolve(ts.Provider, ps.SchemasName)
		if !ok {
			log.Printf("schema: tool %s: cannot resolve nested schema %q for provider %q; treating %q as an open mapping",
				ts.Name, ps.SchemasName, ts.Provider, name)
			return f, nil
		}
		ov, err := buildObjectValidator(ts, nested, schemas)
		if err != nil {
			return field{}, err
		}
		f.nested = ov
		return f, nil
	}

	f.typ = normalizeType(ps.Type)
	f.enum = ps.Enum
	if ps.Default != nil {
		f.def = ps.Default
		f.hasDefault = true
	}
	return f, nil
}

func buildObjectValidator(ts spec.ToolSpec, os spec.ObjectSchema, schemas *spec.SchemaRegistry) (*objectValidator, error) {
	ov := &objectValidator{
		schemaName: os.Name,
		fields:     make(map[string]field, len(os.Properties)),
		required:   make(map[string]bool, len(os.Required)),
	}
	for _, r := range os.Required {
		ov.required[r] = true
	}
	for name, ps := range os.Properties {
		f, err := buildField(ts, name, ps, schemas)
		if err != nil {
			return nil, err
		}
		ov.fields[name] = f
	}
	return ov, nil
}

func normalizeType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "integer", "int":
		return "integer"
	case "number", "float", "double":
		return "number"
	case "boolean", "bool":
		return "boolean"
	default:
		// Absent or unrecognized types fall back to string.
		return "string"
	}
}

// BodyParam returns the name of the structured body-carrier parameter, or ""
// when the tool has none.
func (v *ArgValidator) BodyParam() string { return v.bodyParam }

// Validate checks raw arguments against the contract and returns the
// normalized argument map: simple fields coerced to their native type,
// structured fields recursively validated, optional absences filled with the
// declared default. Unknown top-level arguments are dropped; unknown nested
// fields are rejected to catch spec drift early.
func (v *ArgValidator) Validate(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(v.fields))
	for name, f := range v.fields {
		val, present := raw[name]
		if !present || val == nil {
			if v.required[name] {
				return nil, &ValidationError{Tool: v.toolName, Field: name, Msg: "required argument is missing"}
			}
			if f.hasDefault {
				out[name] = f.def
			} else if !f.structured {
				out[name] = nil
			}
			continue
		}
		normalized, err := v.validateField(f, val)
		if err != nil {
			return nil, err
		}
		out[name] = normalized
	}
	return out, nil
}

func (v *ArgValidator) validateField(f field, val any) (any, error) {
	if f.structured {
		obj, ok := val.(map[string]any)
		if !ok {
			return nil, &ValidationError{Tool: v.toolName, Field: f.name, Msg: "expected an object"}
		}
		if f.nested == nil {
			// Unresolved nested schema: pass the mapping through untouched.
			return obj, nil
		}
		return v.validateObject(f.name, f.nested, obj)
	}

	if len(f.enum) > 0 {
		for _, allowed := range f.enum {
			if literalEqual(allowed, val) {
				return allowed, nil
			}
		}
		return nil, &ValidationError{Tool: v.toolName, Field: f.name,
			Msg: fmt.Sprintf("value %v is not one of the allowed values %v", val, f.enum)}
	}

	coerced, err := coerce(f.typ, val)
	if err != nil {
		return nil, &ValidationError{Tool: v.toolName, Field: f.name, Msg: err.Error()}
	}
	return coerced, nil
}

func (v *ArgValidator) validateObject(fieldName string, ov *objectValidator, obj map[string]any) (map[string]any, error) {
	for key := range obj {
		if _, declared := ov.fields[key]; !declared {
			return nil, &ValidationError{Tool: v.toolName, Field: fieldName,
				Msg: fmt.Sprintf("unknown field %q in %s", key, ov.schemaName)}
		}
	}
	out := make(map[string]any, len(ov.fields))
	for name, f := range ov.fields {
		val, present := obj[name]
		if !present || val == nil {
			if ov.required[name] {
				return nil, &ValidationError{Tool: v.toolName, Field: fieldName,
					Msg: fmt.Sprintf("required field %q is missing in %s", name, ov.schemaName)}
			}
			if f.hasDefault {
				out[name] = f.def
			}
			continue
		}
		normalized, err := v.validateField(f, val)
		if err != nil {
			return nil, err
		}
		out[name] = normalized
	}
	return out, nil
}

// literalEqual compares an enum literal with a supplied value, tolerating the
// numeric type differences between YAML-loaded specs and JSON-parsed args.
func literalEqual(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	return aok && bok && as == bs
}

func coerce(typ string, val any) (any, error) {
	switch typ {
	case "string":
		if s, ok := val.(string); ok {
			return s, nil
		}
		return fmt.Sprint(val), nil
	case "integer":
		if f, ok := toFloat(val); ok {
			if f != math.Trunc(f) {
				return nil, fmt.Errorf("expected an integer, got %v", val)
			}
			return int(f), nil
		}
		if s, ok := val.(string); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return n, nil
			}
		}
		return nil, fmt.Errorf("expected an integer, got %T", val)
	case "number":
		if f, ok := toFloat(val); ok {
			return f, nil
		}
		if s, ok := val.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f, nil
			}
		}
		return nil, fmt.Errorf("expected a number, got %T", val)
	case "boolean":
		if b, ok := val.(bool); ok {
			return b, nil
		}
		if s, ok := val.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return b, nil
			}
		}
		return nil, fmt.Errorf("expected a boolean, got %T", val)
	}
	return val, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
