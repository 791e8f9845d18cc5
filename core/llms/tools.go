package llms

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ToolError wraps a failure inside one tool invocation. The backend client
// substitutes it with an error string in the conversation instead of
// aborting the turn.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Tool is a function exposed to the reasoning backend. Parameters is the
// JSON schema describing the argument payload, reflected from the handler's
// typed parameter struct.
type Tool struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema

	execute func(arguments string) (string, error)
}

// NewTool builds a tool from a typed handler. The parameter schema is
// reflected from T; the handler receives the backend's JSON arguments
// already unmarshalled.
func NewTool[T any](name, description string, handler func(parameters T) (string, error)) Tool {
	reflector := jsonschema.Reflector{DoNotReference: true}
	var parameters T
	schema := reflector.Reflect(&parameters)
	schema.Version = ""

	return Tool{
		Name:        name,
		Description: description,
		Parameters:  schema,
		execute: func(arguments string) (string, error) {
			if arguments == "" {
				arguments = "{}"
			}
			var parsed T
			if err := json.Unmarshal([]byte(arguments), &parsed); err != nil {
				return "", &ToolError{Tool: name, Err: fmt.Errorf("malformed arguments: %w", err)}
			}
			result, err := handler(parsed)
			if err != nil {
				return "", &ToolError{Tool: name, Err: err}
			}
			return result, nil
		},
	}
}

// Execute runs the tool against the raw JSON arguments.
func (t Tool) Execute(arguments string) (string, error) {
	if t.execute == nil {
		return "", fmt.Errorf("tool %q has no handler", t.Name)
	}
	return t.execute(arguments)
}
