package config

import "time"

// Toolset is the full config for a set of GraphQL tools
type Toolset struct {
	Version  string        `yaml:"version,omitempty"`  // Optional version
	Defaults *ToolDefaults `yaml:"defaults,omitempty"` // Applied to every tool that leaves a field unset
	Tools    []Tool        `yaml:"tools"`              // Required: at least one tool
}

// ToolDefaults holds settings shared by all tools in a toolset
type ToolDefaults struct {
	Endpoint string            `yaml:"endpoint,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	Timeout  time.Duration     `yaml:"timeout,omitempty"`
	Auth     *Auth             `yaml:"auth,omitempty"`
}

// Tool describes one pre-defined GraphQL operation
type Tool struct {
	Name     string            `yaml:"name"`               // Required: base name of the tool
	Purpose  string            `yaml:"purpose"`            // Required: what the tool does, for the model
	Endpoint string            `yaml:"endpoint"`           // Required: GraphQL endpoint URL
	Query    string            `yaml:"query"`              // Required: query or mutation document
	Headers  map[string]string `yaml:"headers,omitempty"`  // Extra HTTP headers
	Timeout  time.Duration     `yaml:"timeout,omitempty"`  // Per-invocation timeout, 0 means none
	Auth     *Auth             `yaml:"auth,omitempty"`     // Optional authentication
	Response *ResponseMapping  `yaml:"response,omitempty"` // Optional response post-processing
}

// Auth defines auth methods.
type Auth struct {
	Type   AuthType    `yaml:"type"`              // Required authentication type
	Basic  *BasicAuth  `yaml:"basic,omitempty"`   // Basic authentication
	APIKey *APIKeyAuth `yaml:"api_key,omitempty"` // API key authentication
	Bearer *BearerAuth `yaml:"bearer,omitempty"`  // Bearer token authentication
}

// AuthType defines current supported authentication types
type AuthType string

const (
	AuthTypeBasic  AuthType = "basic"
	AuthTypeAPIKey AuthType = "api_key"
	AuthTypeBearer AuthType = "bearer"
)

// BasicAuth contains auth credentials for the api
type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// APIKeyAuth contains API details
type APIKeyAuth struct {
	Header     string `yaml:"header,omitempty"`      // Header name
	QueryParam string `yaml:"query_param,omitempty"` // Query parameter name
	Value      string `yaml:"value"`                 // API key value
}

// BearerAuth contains a static bearer token
type BearerAuth struct {
	Token string `yaml:"token"`
}

// ResponseMapping selects and converts part of the GraphQL response
type ResponseMapping struct {
	Path      string   `yaml:"path"`                // gjson path into the response, e.g. data.country.capital
	Transform []string `yaml:"transform,omitempty"` // Transformer names applied in order
}
