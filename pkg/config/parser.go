package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/saturnines/graphql-agent-tool/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Validator checks a parsed toolset and reports every problem it finds
type Validator interface {
	Validate(toolset *Toolset) []*errors.ValidationError
}

// DefaultValueSetter fills in unset fields after parsing
type DefaultValueSetter interface {
	SetDefaults(toolset *Toolset)
}

// VariableExpander defines the interface for expanding variables
type VariableExpander interface {
	Expand(data []byte) []byte
}

// EnvExpander implements VariableExpander using environment variables
type EnvExpander struct{}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expand replaces ${VAR} references with the process environment.
// Bare $name is left alone since GraphQL uses it for operation variables.
func (e *EnvExpander) Expand(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		return []byte(os.Getenv(string(ref[2 : len(ref)-1])))
	})
}

// ToolsetLoader reads toolset YAML files
type ToolsetLoader struct {
	expander      VariableExpander
	validators    []Validator
	defaultSetter DefaultValueSetter
}

// NewToolsetLoader creates a new ToolsetLoader with the given components
func NewToolsetLoader(
	expander VariableExpander,
	defaultSetter DefaultValueSetter,
	validators ...Validator,
) *ToolsetLoader {
	return &ToolsetLoader{
		expander:      expander,
		validators:    validators,
		defaultSetter: defaultSetter,
	}
}

// NewDefaultLoader wires the env expander, defaults and all built-in validators
func NewDefaultLoader() *ToolsetLoader {
	return NewToolsetLoader(
		&EnvExpander{},
		&ToolsetDefaults{},
		&RequiredFieldValidator{},
		&UniqueNameValidator{},
		&AuthValidator{},
		&ResponseValidator{},
	)
}

// Load a toolset config from a YAML file
func (l *ToolsetLoader) Load(path string) (*Toolset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrConfiguration, "read toolset file")
	}

	return l.Parse(data)
}

// Parse parses a yaml toolset
func (l *ToolsetLoader) Parse(data []byte) (*Toolset, error) {
	if l.expander != nil {
		data = l.expander.Expand(data)
	}

	var toolset Toolset
	if err := yaml.Unmarshal(data, &toolset); err != nil {
		return nil, errors.WrapError(err, errors.ErrConfiguration, "parse YAML")
	}

	if l.defaultSetter != nil {
		l.defaultSetter.SetDefaults(&toolset)
	}

	var allErrors []*errors.ValidationError
	for _, validator := range l.validators {
		allErrors = append(allErrors, validator.Validate(&toolset)...)
	}

	if len(allErrors) > 0 {
		return nil, errors.WrapError(fmt.Errorf("%v", allErrors), errors.ErrValidation, "validate toolset")
	}

	return &toolset, nil
}

// ToolsetDefaults copies the toolset-level defaults into each tool
type ToolsetDefaults struct{}

// SetDefaults fills endpoint, timeout and auth from defaults and merges headers
// with the tool's own headers taking precedence.
func (d *ToolsetDefaults) SetDefaults(toolset *Toolset) {
	if toolset.Defaults == nil {
		return
	}
	def := toolset.Defaults

	for i := range toolset.Tools {
		tool := &toolset.Tools[i]
		if tool.Endpoint == "" {
			tool.Endpoint = def.Endpoint
		}
		if tool.Timeout == 0 {
			tool.Timeout = def.Timeout
		}
		if tool.Auth == nil && def.Auth != nil {
			a := *def.Auth
			tool.Auth = &a
		}
		if len(def.Headers) > 0 {
			merged := make(map[string]string, len(def.Headers)+len(tool.Headers))
			for k, v := range def.Headers {
				merged[k] = v
			}
			for k, v := range tool.Headers {
				merged[k] = v
			}
			tool.Headers = merged
		}
	}
}

// RequiredFieldValidator validates required fields of every tool
type RequiredFieldValidator struct{}

// Validate checks that each tool names its purpose, endpoint and query
func (v *RequiredFieldValidator) Validate(toolset *Toolset) []*errors.ValidationError {
	var errs []*errors.ValidationError

	if len(toolset.Tools) == 0 {
		return append(errs, &errors.ValidationError{Field: "tools", Message: "at least one tool is required"})
	}

	for i, tool := range toolset.Tools {
		prefix := fmt.Sprintf("tools[%d]", i)
		if tool.Name == "" {
			errs = append(errs, &errors.ValidationError{Field: prefix + ".name", Message: "is required"})
		}
		if tool.Purpose == "" {
			errs = append(errs, &errors.ValidationError{Field: prefix + ".purpose", Message: "is required"})
		}
		if tool.Endpoint == "" {
			errs = append(errs, &errors.ValidationError{Field: prefix + ".endpoint", Message: "is required"})
		}
		if tool.Query == "" {
			errs = append(errs, &errors.ValidationError{Field: prefix + ".query", Message: "is required"})
		}
	}

	return errs
}

// UniqueNameValidator rejects toolsets that reuse a tool name
type UniqueNameValidator struct{}

// Validate checks tool names are unique
func (v *UniqueNameValidator) Validate(toolset *Toolset) []*errors.ValidationError {
	var errs []*errors.ValidationError
	seen := make(map[string]int, len(toolset.Tools))

	for i, tool := range toolset.Tools {
		if tool.Name == "" {
			continue
		}
		if first, ok := seen[tool.Name]; ok {
			errs = append(errs, &errors.ValidationError{
				Field:   fmt.Sprintf("tools[%d].name", i),
				Message: fmt.Sprintf("duplicates tools[%d].name %q", first, tool.Name),
			})
			continue
		}
		seen[tool.Name] = i
	}

	return errs
}

// AuthValidator handles authentication validation
type AuthValidator struct{}

// Validate checks that authentication configuration is valid
func (v *AuthValidator) Validate(toolset *Toolset) []*errors.ValidationError {
	var errs []*errors.ValidationError

	for i, tool := range toolset.Tools {
		if tool.Auth == nil {
			continue
		}
		prefix := fmt.Sprintf("tools[%d].auth", i)

		switch tool.Auth.Type {
		case AuthTypeBasic:
			if tool.Auth.Basic == nil {
				errs = append(errs, &errors.ValidationError{Field: prefix + ".basic", Message: "is required for basic auth"})
			} else if tool.Auth.Basic.Username == "" {
				errs = append(errs, &errors.ValidationError{Field: prefix + ".basic.username", Message: "is required for basic auth"})
			}
		case AuthTypeAPIKey:
			if tool.Auth.APIKey == nil {
				errs = append(errs, &errors.ValidationError{Field: prefix + ".api_key", Message: "is required for api_key auth"})
			} else {
				if tool.Auth.APIKey.Value == "" {
					errs = append(errs, &errors.ValidationError{Field: prefix + ".api_key.value", Message: "is required for api_key auth"})
				}
				if tool.Auth.APIKey.Header == "" && tool.Auth.APIKey.QueryParam == "" {
					errs = append(errs, &errors.ValidationError{Field: prefix + ".api_key", Message: "either header or query_param must be specified for api_key auth"})
				}
			}
		case AuthTypeBearer:
			if tool.Auth.Bearer == nil || tool.Auth.Bearer.Token == "" {
				errs = append(errs, &errors.ValidationError{Field: prefix + ".bearer.token", Message: "is required for bearer auth"})
			}
		default:
			errs = append(errs, &errors.ValidationError{Field: prefix + ".type", Message: fmt.Sprintf("unknown auth type: %s", tool.Auth.Type)})
		}
	}

	return errs
}

// ResponseValidator checks response mappings
type ResponseValidator struct{}

// Validate checks that every response mapping has a path
func (v *ResponseValidator) Validate(toolset *Toolset) []*errors.ValidationError {
	var errs []*errors.ValidationError

	for i, tool := range toolset.Tools {
		if tool.Response != nil && tool.Response.Path == "" {
			errs = append(errs, &errors.ValidationError{Field: fmt.Sprintf("tools[%d].response.path", i), Message: "is required when response is set"})
		}
	}

	return errs
}
