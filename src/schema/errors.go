package schema

import "fmt"

// SchemaError reports a tool argument schema that cannot be synthesized at
// all (as opposed to one that degrades to a permissive validator).
type SchemaError struct {
	Tool string
	Msg  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema for tool %s: %s", e.Tool, e.Msg)
}

// ValidationError reports caller-supplied arguments that fail the synthesized
// contract. It is surfaced to the agent loop as an observation, never a crash.
type ValidationError struct {
	Tool  string
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid arguments for tool %s: %s", e.Tool, e.Msg)
	}
	return fmt.Sprintf("invalid argument %q for tool %s: %s", e.Field, e.Tool, e.Msg)
}
