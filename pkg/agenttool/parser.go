package agenttool

import (
	"encoding/json"
	"fmt"

	"github.com/saturnines/graphql-agent-tool/pkg/transform"
	"github.com/tidwall/gjson"
)

// PathParser returns a ResponseParser that selects the value at a gjson path
// (for example "data.country.capital") and runs it through the transformers.
// A path that matches nothing is an error.
func PathParser(path string, transformers ...transform.Transformer) ResponseParser {
	chain := transform.NewChainTransform(transformers...)

	return func(response any) (any, error) {
		raw, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("encode response: %w", err)
		}

		res := gjson.GetBytes(raw, path)
		if !res.Exists() {
			return nil, fmt.Errorf("path %q not found in response", path)
		}
		return chain.Transform(res.Value())
	}
}

// PathParserFromSpecs builds a PathParser whose transformers are looked up in
// the default transform registry, e.g. PathParserFromSpecs("data.tags", "join:, ").
func PathParserFromSpecs(path string, specs ...string) (ResponseParser, error) {
	if path == "" {
		return nil, fmt.Errorf("response path is required")
	}
	chain, err := transform.DefaultRegistry.Chain(specs...)
	if err != nil {
		return nil, err
	}
	return PathParser(path, chain), nil
}
