package agenttool

import (
	"fmt"
	"strings"
)

// OperationKind is the kind of GraphQL operation a tool runs.
type OperationKind string

const (
	OperationQuery    OperationKind = "query"
	OperationMutation OperationKind = "mutation"
)

const (
	querySentence    = "A query operation is used to fetch or read data from the GraphQL API without making any modifications."
	mutationSentence = "A mutation operation is used to modify, create, update, or delete data on the GraphQL API."
)

// DetectOperation reports OperationMutation when the trimmed, lower-cased
// document starts with "mutation", and OperationQuery otherwise.
//
// This is a prefix check, not a parse: a leading comment or fragment before a
// mutation makes it look like a query.
func DetectOperation(query string) OperationKind {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(query)), "mutation") {
		return OperationMutation
	}
	return OperationQuery
}

// Describe renders the description the model sees when choosing tools.
func Describe(kind OperationKind, purpose, url string) string {
	sentence := querySentence
	if kind == OperationMutation {
		sentence = mutationSentence
	}
	p := strings.ToLower(purpose)

	return fmt.Sprintf(
		"A GraphQL %s tool that %s. %s This tool executes a pre-defined GraphQL %s operation against the endpoint at %s. Use this tool when you need to %s",
		kind, p, sentence, kind, url, p,
	)
}

// ToolName builds graphql-{kind}-{name}-tool.
func ToolName(kind OperationKind, name string) string {
	return fmt.Sprintf("graphql-%s-%s-tool", kind, name)
}
