package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/saturnines/graphql-agent-tool/pkg/auth"
)

// ContentTypeJSON is sent unless the caller overrides Content-Type
const ContentTypeJSON = "application/json"

// Request is the JSON body of a GraphQL POST.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Builder constructs GraphQL requests.
type Builder struct {
	Endpoint    string
	Query       string
	Variables   map[string]any
	Headers     map[string]string
	AuthHandler auth.Handler
}

// NewBuilder sets up a GraphQL Builder.
// Endpoint is the full URL of your GraphQL endpoint.
func NewBuilder(endpoint, query string, opts ...BuilderOption) *Builder {
	b := &Builder{
		Endpoint: endpoint,
		Query:    query,
	}
	b.ApplyOptions(opts...)
	return b
}

// Body returns the request payload. Nil variables are sent as an empty object.
func (b *Builder) Body() Request {
	vars := b.Variables
	if vars == nil {
		vars = map[string]any{}
	}
	return Request{Query: b.Query, Variables: vars}
}

// Build creates the *http.Request with JSON body.
func (b *Builder) Build(ctx context.Context) (*http.Request, error) {
	buf, err := json.Marshal(b.Body())
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.Endpoint, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", ContentTypeJSON)
	for k, v := range b.Headers {
		req.Header.Set(k, v)
	}
	if b.AuthHandler != nil {
		if err := b.AuthHandler.ApplyAuth(req); err != nil {
			return nil, err
		}
	}
	return req, nil
}
