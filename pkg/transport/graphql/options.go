package graphql

import (
	"github.com/saturnines/graphql-agent-tool/pkg/auth"
)

// BuilderOption configures the Builder.
type BuilderOption func(*Builder)

// WithHeader adds a header to every GraphQL request.
func WithHeader(key, value string) BuilderOption {
	return func(b *Builder) {
		if b.Headers == nil {
			b.Headers = make(map[string]string)
		}
		b.Headers[key] = value
	}
}

// WithHeaders adds multiple headers to every GraphQL request.
func WithHeaders(headers map[string]string) BuilderOption {
	return func(b *Builder) {
		if b.Headers == nil {
			b.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			b.Headers[k] = v
		}
	}
}

// WithAuthHandler sets a custom auth handler.
func WithAuthHandler(h auth.Handler) BuilderOption {
	return func(b *Builder) {
		b.AuthHandler = h
	}
}

// WithVariables replaces the operation variables.
func WithVariables(variables map[string]any) BuilderOption {
	return func(b *Builder) {
		b.Variables = variables
	}
}

// ApplyOptions applies BuilderOption functions in order.
func (b *Builder) ApplyOptions(opts ...BuilderOption) {
	for _, opt := range opts {
		opt(b)
	}
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPDoer swaps the underlying HTTPDoer.
func WithHTTPDoer(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		if doer != nil {
			c.doer = doer
		}
	}
}

// ApplyOptions applies ClientOption functions in order.
func (c *Client) ApplyOptions(opts ...ClientOption) {
	for _, opt := range opts {
		opt(c)
	}
}
