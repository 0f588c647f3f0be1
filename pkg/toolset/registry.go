// Package toolset builds GraphQL agent tools from a YAML toolset and serves
// them by name.
package toolset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/saturnines/graphql-agent-tool/pkg/agenttool"
	"github.com/saturnines/graphql-agent-tool/pkg/auth"
	"github.com/saturnines/graphql-agent-tool/pkg/config"
	"github.com/saturnines/graphql-agent-tool/pkg/errors"
	"github.com/saturnines/graphql-agent-tool/pkg/transport/graphql"
)

// ErrUnknownTool is returned when a name is not registered
var ErrUnknownTool = errors.New("unknown tool")

// Registry holds tools keyed by their computed name
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]agenttool.Callable
	logger *slog.Logger
	doer   graphql.HTTPDoer
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger handed to every tool the registry builds
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHTTPDoer sets the client used by every tool the registry builds
func WithHTTPDoer(doer graphql.HTTPDoer) Option {
	return func(r *Registry) {
		r.doer = doer
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		tools:  make(map[string]agenttool.Callable),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build creates a registry holding one tool per entry in ts
func Build(ts *config.Toolset, opts ...Option) (*Registry, error) {
	r := NewRegistry(opts...)
	for i := range ts.Tools {
		tool, err := r.newTool(&ts.Tools[i])
		if err != nil {
			return nil, fmt.Errorf("tools[%d] %q: %w", i, ts.Tools[i].Name, err)
		}
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	r.logger.Debug("toolset built", "tools", len(r.tools))
	return r, nil
}

// Load reads a toolset file with the default loader and builds it
func Load(path string, opts ...Option) (*Registry, error) {
	ts, err := config.NewDefaultLoader().Load(path)
	if err != nil {
		return nil, err
	}
	return Build(ts, opts...)
}

func (r *Registry) newTool(tc *config.Tool) (*agenttool.Tool, error) {
	handler, err := auth.CreateHandler(tc.Auth)
	if err != nil {
		return nil, err
	}

	var parser agenttool.ResponseParser
	if tc.Response != nil {
		parser, err = agenttool.PathParserFromSpecs(tc.Response.Path, tc.Response.Transform...)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrConfiguration, "response mapping")
		}
	}

	return agenttool.New(agenttool.Options{
		Name:    tc.Name,
		Purpose: tc.Purpose,
		URL:     tc.Endpoint,
		Query:   tc.Query,
		HTTPConfig: &agenttool.HTTPConfig{
			Headers: tc.Headers,
			Timeout: tc.Timeout,
			Auth:    handler,
			Client:  r.doer,
		},
		ResponseParser: parser,
		Logger:         r.logger,
	})
}

// Register adds a tool under its Name. Names must be unique.
func (r *Registry) Register(tool agenttool.Callable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return errors.WrapError(fmt.Errorf("tool %q already registered", name), errors.ErrConfiguration, "register tool")
	}
	r.tools[name] = tool
	return nil
}

// Get returns the tool registered under name
func (r *Registry) Get(name string) (agenttool.Callable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns registered tool names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tools returns every registered tool ordered by name
func (r *Registry) Tools() []agenttool.Callable {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]agenttool.Callable, 0, len(names))
	for _, name := range names {
		if tool, ok := r.tools[name]; ok {
			tools = append(tools, tool)
		}
	}
	return tools
}

// Invoke decodes raw tool-call arguments and runs the named tool
func (r *Registry) Invoke(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	tool, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	input, err := agenttool.DecodeInput(raw)
	if err != nil {
		return nil, err
	}
	return tool.Invoke(ctx, input)
}
