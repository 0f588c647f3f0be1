package agenttool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/saturnines/graphql-agent-tool/pkg/errors"
	"github.com/saturnines/graphql-agent-tool/pkg/transport/graphql"
)

// Callable is the surface an agent framework binds: a name, a description,
// an input schema and a handler.
type Callable interface {
	Name() string
	Description() string
	InputSchema() *jsonschema.Schema
	Invoke(ctx context.Context, input ExecuteInput) (any, error)
}

// Tool runs one pre-defined GraphQL operation. It is immutable after New and
// safe for concurrent use.
type Tool struct {
	name        string
	description string
	kind        OperationKind
	url         string
	query       string
	httpConfig  HTTPConfig
	client      *graphql.Client
	parser      ResponseParser
	logger      *slog.Logger
}

var _ Callable = (*Tool)(nil)

// New validates opts and builds the tool. Name and description are computed
// once here and never change.
func New(opts Options) (*Tool, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	kind := DetectOperation(opts.Query)
	cfg := mergeHTTPConfig(defaultHTTPConfig(), opts.HTTPConfig)

	parser := opts.ResponseParser
	if parser == nil {
		parser = Identity
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	name := ToolName(kind, opts.Name)
	return &Tool{
		name:        name,
		description: Describe(kind, opts.Purpose, opts.URL),
		kind:        kind,
		url:         opts.URL,
		query:       opts.Query,
		httpConfig:  cfg,
		client:      graphql.NewClient(cfg.Client),
		parser:      parser,
		logger:      logger.With("tool", name),
	}, nil
}

// Identity returns the response unchanged.
func Identity(response any) (any, error) {
	return response, nil
}

// Name returns graphql-{kind}-{name}-tool.
func (t *Tool) Name() string {
	return t.name
}

// Description returns the generated natural-language description.
func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Kind() OperationKind {
	return t.kind
}

func (t *Tool) URL() string {
	return t.url
}

func (t *Tool) Query() string {
	return t.query
}

// InputSchema describes ExecuteInput. The schema is shared; do not modify it.
func (t *Tool) InputSchema() *jsonschema.Schema {
	return executeInputSchema
}

// HTTPConfig returns a copy of the merged transport configuration.
func (t *Tool) HTTPConfig() HTTPConfig {
	cfg := t.httpConfig
	cfg.Headers = make(map[string]string, len(t.httpConfig.Headers))
	for k, v := range t.httpConfig.Headers {
		cfg.Headers[k] = v
	}
	return cfg
}

// Invoke sends the operation with the given variables and returns the parsed
// response. It makes exactly one request; there is no retry and no caching.
func (t *Tool) Invoke(ctx context.Context, input ExecuteInput) (any, error) {
	if t.httpConfig.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.httpConfig.Timeout)
		defer cancel()
	}

	b := graphql.NewBuilder(t.url, t.query,
		graphql.WithVariables(input.Variables),
		graphql.WithHeaders(t.httpConfig.Headers),
		graphql.WithAuthHandler(t.httpConfig.Auth),
	)

	start := time.Now()
	body, err := t.client.Send(ctx, b)
	t.logger.Debug("graphql tool invoked",
		"kind", t.kind,
		"duration", time.Since(start),
		"ok", err == nil,
	)
	if err != nil {
		return nil, err
	}

	var response any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, &errors.TransportError{URL: t.url, Body: body, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	return t.parse(response)
}

func (t *Tool) parse(response any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, &errors.ParseError{Err: fmt.Errorf("response parser panicked: %v", r)}
		}
	}()

	result, err = t.parser(response)
	if err != nil {
		if errors.Is(err, errors.ErrParse) {
			return nil, err
		}
		return nil, &errors.ParseError{Err: err}
	}
	return result, nil
}

// ResultText renders an invocation result for a text-only tool channel.
// Strings pass through; anything else is encoded as JSON.
func ResultText(result any) (string, error) {
	if s, ok := result.(string); ok {
		return s, nil
	}
	buf, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(buf), nil
}
