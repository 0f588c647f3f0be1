package auth

import (
	"fmt"
	"net/http"

	"github.com/saturnines/graphql-agent-tool/pkg/errors"
)

// Handler decorates an outgoing GraphQL request with credentials
type Handler interface {
	ApplyAuth(req *http.Request) error
}

// APIKeyAuth sends a static API key as a header, a query parameter or both
type APIKeyAuth struct {
	HeaderName string // e.g. "X-API-Key"
	QueryParam string // e.g. "api_key"
	Value      string
}

// NewAPIKeyAuth creates a new API key authentication handler
func NewAPIKeyAuth(headerName, queryParam, value string) *APIKeyAuth {
	return &APIKeyAuth{
		HeaderName: headerName,
		QueryParam: queryParam,
		Value:      value,
	}
}

// ApplyAuth adds the API key to the request
func (a *APIKeyAuth) ApplyAuth(req *http.Request) error {
	if a.Value == "" {
		return errors.WrapError(fmt.Errorf("API key value is required"), errors.ErrConfiguration, "apply api key auth")
	}
	if a.HeaderName == "" && a.QueryParam == "" {
		return errors.WrapError(
			fmt.Errorf("API key auth requires either header name or query parameter name"),
			errors.ErrConfiguration,
			"apply api key auth",
		)
	}

	if a.HeaderName != "" {
		req.Header.Set(a.HeaderName, a.Value)
	}
	if a.QueryParam != "" {
		query := req.URL.Query()
		query.Set(a.QueryParam, a.Value)
		req.URL.RawQuery = query.Encode()
	}

	return nil
}

// String never includes the key itself
func (a *APIKeyAuth) String() string {
	if a.HeaderName != "" {
		return fmt.Sprintf("APIKeyAuth(header: %s)", a.HeaderName)
	}
	return fmt.Sprintf("APIKeyAuth(query: %s)", a.QueryParam)
}
