package agenttool

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/saturnines/graphql-agent-tool/pkg/auth"
	"github.com/saturnines/graphql-agent-tool/pkg/errors"
	"github.com/saturnines/graphql-agent-tool/pkg/transport/graphql"
)

// ResponseParser turns the decoded GraphQL response into the value handed
// back to the agent. Returning an error fails the invocation with a ParseError.
type ResponseParser func(response any) (any, error)

// HTTPConfig holds the transport settings used for every invocation.
type HTTPConfig struct {
	// Headers are merged key by key over the default Content-Type header.
	Headers map[string]string
	// Timeout bounds a single invocation. Zero means no extra deadline.
	Timeout time.Duration
	// Auth is applied to each request after headers are set.
	Auth auth.Handler
	// Client performs the request. Defaults to http.DefaultClient.
	Client graphql.HTTPDoer
}

// Options describe a GraphQL tool. Name, Purpose, URL and Query are required.
type Options struct {
	// Name is the base name; the tool is exposed as graphql-{kind}-{name}-tool.
	Name string
	// Purpose tells the model what the tool does and when to use it.
	Purpose string
	// URL of the GraphQL endpoint.
	URL string
	// Query is the query or mutation document sent on every call.
	Query string

	HTTPConfig     *HTTPConfig
	ResponseParser ResponseParser
	Logger         *slog.Logger
}

// Validate checks the required options in order and reports the first failure.
func (o Options) Validate() error {
	if o.Name == "" {
		return &errors.ValidationError{Field: "name", Message: "Name is required"}
	}
	if o.Purpose == "" {
		return &errors.ValidationError{Field: "purpose", Message: "Purpose is required"}
	}
	if !isAbsoluteURL(o.URL) {
		return &errors.ValidationError{Field: "url", Message: "Invalid URL"}
	}
	if o.Query == "" {
		return &errors.ValidationError{Field: "query", Message: "Query is required"}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

func defaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Headers: map[string]string{
			"Content-Type": graphql.ContentTypeJSON,
		},
		Client: http.DefaultClient,
	}
}

// mergeHTTPConfig layers user settings over the defaults. Scalar fields are
// replaced when set; headers are merged with user keys winning. Keys are
// canonicalized so "content-type" overrides "Content-Type".
func mergeHTTPConfig(base HTTPConfig, user *HTTPConfig) HTTPConfig {
	merged := base
	merged.Headers = make(map[string]string, len(base.Headers))
	for k, v := range base.Headers {
		merged.Headers[http.CanonicalHeaderKey(k)] = v
	}

	if user == nil {
		return merged
	}

	for k, v := range user.Headers {
		merged.Headers[http.CanonicalHeaderKey(k)] = v
	}
	if user.Timeout > 0 {
		merged.Timeout = user.Timeout
	}
	if user.Auth != nil {
		merged.Auth = user.Auth
	}
	if user.Client != nil {
		merged.Client = user.Client
	}
	return merged
}
