package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/saturnines/graphql-agent-tool/pkg/agenttool"
	"github.com/saturnines/graphql-agent-tool/pkg/toolset"
)

const (
	countriesURL = "https://countries.trevorblades.com"
	capitalQuery = `
    query GetCountryCapital($countryCode: ID!) {
      country(code: $countryCode) {
        capital
      }
    }`
	capitalPurpose = "Retrieves the capital city of a country using its ISO country code. " +
		"The tool expects a country code in ISO format (e.g., 'IN' for India, 'US' for United States). " +
		"Input should be provided in the format {variables: {countryCode: <countryCode>}}."
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not loaded:", err)
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	input := agenttool.ExecuteInput{Variables: map[string]any{"countryCode": "IN"}}

	// Direct call: the raw GraphQL response comes back untouched
	raw, err := agenttool.New(agenttool.Options{
		Name:    "getCountryCapital",
		Purpose: capitalPurpose,
		URL:     countriesURL,
		Query:   capitalQuery,
		Logger:  logger,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(raw.Name())
	fmt.Println(raw.Description())

	response, err := raw.Invoke(ctx, input)
	if err != nil {
		log.Fatal(err)
	}
	out, _ := json.Marshal(response)
	fmt.Printf("Direct call: %s\n", out)

	// Response parser: only the capital is handed back
	parsed, err := agenttool.New(agenttool.Options{
		Name:    "getCountryCapital",
		Purpose: capitalPurpose,
		URL:     countriesURL,
		Query:   capitalQuery,
		ResponseParser: func(response any) (any, error) {
			data, _ := response.(map[string]any)["data"].(map[string]any)
			country, _ := data["country"].(map[string]any)
			capital, ok := country["capital"].(string)
			if !ok {
				return nil, fmt.Errorf("no capital in response")
			}
			return capital, nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	capital, err := parsed.Invoke(ctx, input)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Response parser: %v\n", capital)

	// Same tools declared in YAML
	registry, err := toolset.Load("demo/countries/countries.yaml", toolset.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	for _, name := range registry.Names() {
		result, err := registry.Invoke(ctx, name, json.RawMessage(`{"variables":{"countryCode":"IN"}}`))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s: %v\n", name, result)
	}
}
