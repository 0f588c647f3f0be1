package agenttool

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/saturnines/graphql-agent-tool/pkg/errors"
)

// ExecuteInput is the only data supplied per invocation.
type ExecuteInput struct {
	Variables map[string]any `json:"variables" jsonschema_description:"Variables for the GraphQL operation, keyed by variable name without the leading $."`
}

var executeInputSchema = GenerateSchema[ExecuteInput]()

// GenerateSchema reflects a JSON schema for T with every definition inlined.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// DecodeInput parses raw tool-call arguments as produced by a model.
// The payload must be an object carrying a "variables" object.
func DecodeInput(raw json.RawMessage) (ExecuteInput, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return ExecuteInput{}, &errors.ValidationError{Field: "input", Message: "Expected object"}
	}

	vars, ok := fields["variables"]
	if !ok {
		return ExecuteInput{}, &errors.ValidationError{Field: "variables", Message: "Required"}
	}
	if trimmed := bytes.TrimSpace(vars); len(trimmed) == 0 || trimmed[0] != '{' {
		return ExecuteInput{}, &errors.ValidationError{Field: "variables", Message: "Expected object"}
	}

	var in ExecuteInput
	if err := json.Unmarshal(vars, &in.Variables); err != nil {
		return ExecuteInput{}, &errors.ValidationError{Field: "variables", Message: fmt.Sprintf("Invalid object: %v", err)}
	}
	return in, nil
}
