// Package agenttool turns a fixed GraphQL query or mutation into a tool an
// LLM agent can call.
//
// A tool is built once from Options and invoked with runtime variables:
//
//	capital, err := agenttool.New(agenttool.Options{
//		Name:    "getCountryCapital",
//		Purpose: "Retrieves the capital city of a country using its ISO country code",
//		URL:     "https://countries.trevorblades.com",
//		Query: `query GetCountryCapital($countryCode: ID!) {
//			country(code: $countryCode) { capital }
//		}`,
//		ResponseParser: agenttool.PathParser("data.country.capital"),
//	})
//	if err != nil {
//		return err
//	}
//	out, err := capital.Invoke(ctx, agenttool.ExecuteInput{
//		Variables: map[string]any{"countryCode": "IN"},
//	})
//
// The tool's Name, Description and InputSchema are what an agent framework
// binds; see the adapter packages for Anthropic and MCP.
package agenttool
