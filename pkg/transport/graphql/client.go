package graphql

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/saturnines/graphql-agent-tool/pkg/errors"
)

// HTTPDoer is satisfied by *http.Client and test doubles.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client executes GraphQL operations.
type Client struct {
	doer HTTPDoer
}

// NewClient wraps an HTTPDoer. A nil doer falls back to http.DefaultClient.
func NewClient(doer HTTPDoer, opts ...ClientOption) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	c := &Client{doer: doer}
	c.ApplyOptions(opts...)
	return c
}

// Execute sends a built request.
func (c *Client) Execute(req *http.Request) (*http.Response, error) {
	return c.doer.Do(req)
}

// Send builds the request, performs exactly one round trip and returns the raw
// body of a 2xx response. Every failure is a *errors.TransportError.
func (c *Client) Send(ctx context.Context, b *Builder) ([]byte, error) {
	req, err := b.Build(ctx)
	if err != nil {
		return nil, &errors.TransportError{URL: b.Endpoint, Err: fmt.Errorf("build request: %w", err)}
	}

	resp, err := c.Execute(req)
	if err != nil {
		return nil, &errors.TransportError{URL: b.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.TransportError{
			URL:        b.Endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        fmt.Errorf("read response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errors.TransportError{
			URL:        b.Endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		}
	}

	return body, nil
}
