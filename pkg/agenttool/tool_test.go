package agenttool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/saturnines/graphql-agent-tool/pkg/auth"
	"github.com/saturnines/graphql-agent-tool/pkg/errors"
)

var validOptions = Options{
	Name:    "get-user",
	Purpose: "Fetch user details",
	URL:     "https://api.example.com/graphql",
	Query:   "query { user(id: $id) { name } }",
}

func assertValidationError(t *testing.T, err error, field, message string) {
	t.Helper()
	var verr *errors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if verr.Field != field {
		t.Errorf("Expected field '%s', got '%s'", field, verr.Field)
	}
	if !strings.Contains(err.Error(), message) {
		t.Errorf("Expected error containing '%s', got '%s'", message, err.Error())
	}
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

// graphQLServer records each request body and answers with response.
func graphQLServer(t *testing.T, response string) (*httptest.Server, *[]map[string]any, *sync.Mutex) {
	t.Helper()
	var mu sync.Mutex
	var bodies []map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, &bodies, &mu
}

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(o *Options)
		field   string
		message string
	}{
		{"EmptyName", func(o *Options) { o.Name = "" }, "name", "Name is required"},
		{"EmptyPurpose", func(o *Options) { o.Purpose = "" }, "purpose", "Purpose is required"},
		{"InvalidURL", func(o *Options) { o.URL = "not-a-url" }, "url", "Invalid URL"},
		{"RelativeURL", func(o *Options) { o.URL = "/graphql" }, "url", "Invalid URL"},
		{"EmptyURL", func(o *Options) { o.URL = "" }, "url", "Invalid URL"},
		{"EmptyQuery", func(o *Options) { o.Query = "" }, "query", "Query is required"},
		{"FirstRuleWins", func(o *Options) { o.Name = ""; o.URL = "bad"; o.Query = "" }, "name", "Name is required"},
		{"URLBeforeQuery", func(o *Options) { o.URL = "bad"; o.Query = "" }, "url", "Invalid URL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := validOptions
			tc.mutate(&opts)

			tool, err := New(opts)
			if tool != nil {
				t.Error("Expected nil tool on validation failure")
			}
			assertValidationError(t, err, tc.field, tc.message)
		})
	}

	t.Run("ValidOptions", func(t *testing.T) {
		if _, err := New(validOptions); err != nil {
			t.Fatalf("Expected valid options to succeed, got %v", err)
		}
	})
}

func TestNew_Initialization(t *testing.T) {
	tool, err := New(validOptions)
	if err != nil {
		t.Fatal(err)
	}

	if tool.Name() != "graphql-query-get-user-tool" {
		t.Errorf("Unexpected name: %s", tool.Name())
	}
	if tool.Kind() != OperationQuery {
		t.Errorf("Unexpected kind: %s", tool.Kind())
	}
	desc := tool.Description()
	for _, want := range []string{"query", strings.ToLower(validOptions.Purpose), validOptions.URL} {
		if !strings.Contains(desc, want) {
			t.Errorf("Description should contain %q, got %q", want, desc)
		}
	}
	if tool.URL() != validOptions.URL || tool.Query() != validOptions.Query {
		t.Error("URL and query should be kept verbatim")
	}

	t.Run("Mutation", func(t *testing.T) {
		opts := validOptions
		opts.Query = "mutation { createUser(input: $input) { id } }"
		tool, err := New(opts)
		if err != nil {
			t.Fatal(err)
		}
		if tool.Name() != "graphql-mutation-get-user-tool" {
			t.Errorf("Unexpected name: %s", tool.Name())
		}
		if !strings.Contains(tool.Description(), "mutation") {
			t.Errorf("Description should mention mutation: %s", tool.Description())
		}
	})
}

func TestNew_HTTPConfigMerge(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		tool, _ := New(validOptions)
		cfg := tool.HTTPConfig()
		if cfg.Headers["Content-Type"] != "application/json" {
			t.Errorf("Expected default Content-Type, got %v", cfg.Headers)
		}
		if cfg.Client != http.DefaultClient {
			t.Error("Expected default HTTP client")
		}
		if cfg.Timeout != 0 {
			t.Errorf("Expected no timeout, got %v", cfg.Timeout)
		}
	})

	t.Run("CustomHeaders", func(t *testing.T) {
		opts := validOptions
		bearer := auth.NewBearerAuth("t")
		opts.HTTPConfig = &HTTPConfig{
			Headers: map[string]string{"X-Custom-Header": "value"},
			Timeout: 5 * time.Second,
			Auth:    bearer,
		}
		tool, err := New(opts)
		if err != nil {
			t.Fatal(err)
		}

		cfg := tool.HTTPConfig()
		want := map[string]string{
			"Content-Type":    "application/json",
			"X-Custom-Header": "value",
		}
		if !reflect.DeepEqual(cfg.Headers, want) {
			t.Errorf("Headers = %v, want %v", cfg.Headers, want)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("Expected timeout 5s, got %v", cfg.Timeout)
		}
		if cfg.Auth != bearer {
			t.Error("Expected auth handler to be kept")
		}
	})

	t.Run("UserOverridesContentType", func(t *testing.T) {
		opts := validOptions
		opts.HTTPConfig = &HTTPConfig{Headers: map[string]string{"content-type": "application/graphql-response+json"}}
		tool, _ := New(opts)

		cfg := tool.HTTPConfig()
		if len(cfg.Headers) != 1 || cfg.Headers["Content-Type"] != "application/graphql-response+json" {
			t.Errorf("Expected user Content-Type to win, got %v", cfg.Headers)
		}
	})

	t.Run("ImmutableAfterConstruction", func(t *testing.T) {
		headers := map[string]string{"X-A": "1"}
		opts := validOptions
		opts.HTTPConfig = &HTTPConfig{Headers: headers}
		tool, _ := New(opts)

		headers["X-A"] = "changed"
		cfg := tool.HTTPConfig()
		cfg.Headers["X-B"] = "2"

		again := tool.HTTPConfig()
		if again.Headers["X-A"] != "1" {
			t.Errorf("Caller map mutation leaked into tool: %v", again.Headers)
		}
		if _, ok := again.Headers["X-B"]; ok {
			t.Errorf("HTTPConfig copy mutation leaked into tool: %v", again.Headers)
		}
	})
}

const userResponse = `{"data":{"user":{"name":"John Doe"}}}`

func TestInvoke(t *testing.T) {
	t.Run("SendsQueryAndVariables", func(t *testing.T) {
		server, bodies, _ := graphQLServer(t, userResponse)
		opts := validOptions
		opts.URL = server.URL
		tool, err := New(opts)
		if err != nil {
			t.Fatal(err)
		}

		result, err := tool.Invoke(context.Background(), ExecuteInput{Variables: map[string]any{"id": "123"}})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}

		if len(*bodies) != 1 {
			t.Fatalf("Expected exactly one request, got %d", len(*bodies))
		}
		wantBody := map[string]any{
			"query":     validOptions.Query,
			"variables": map[string]any{"id": "123"},
		}
		if !reflect.DeepEqual((*bodies)[0], wantBody) {
			t.Errorf("Request body = %v, want %v", (*bodies)[0], wantBody)
		}

		want := map[string]any{"data": map[string]any{"user": map[string]any{"name": "John Doe"}}}
		if !reflect.DeepEqual(result, want) {
			t.Errorf("Result = %v, want %v", result, want)
		}
	})

	t.Run("CustomParser", func(t *testing.T) {
		server, _, _ := graphQLServer(t, userResponse)
		opts := validOptions
		opts.URL = server.URL
		opts.ResponseParser = func(response any) (any, error) {
			data := response.(map[string]any)["data"].(map[string]any)
			return data["user"].(map[string]any)["name"], nil
		}
		tool, _ := New(opts)

		result, err := tool.Invoke(context.Background(), ExecuteInput{Variables: map[string]any{"id": "123"}})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if result != "John Doe" {
			t.Errorf("Expected 'John Doe', got %v", result)
		}
	})

	t.Run("PathParser", func(t *testing.T) {
		server, _, _ := graphQLServer(t, userResponse)
		opts := validOptions
		opts.URL = server.URL
		parser, err := PathParserFromSpecs("data.user.name", "upper")
		if err != nil {
			t.Fatal(err)
		}
		opts.ResponseParser = parser
		tool, _ := New(opts)

		result, err := tool.Invoke(context.Background(), ExecuteInput{Variables: map[string]any{"id": "123"}})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if result != "JOHN DOE" {
			t.Errorf("Expected 'JOHN DOE', got %v", result)
		}
	})

	t.Run("HeadersAndAuth", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", got)
			}
			if got := r.Header.Get("X-Custom-Header"); got != "value" {
				t.Errorf("Expected X-Custom-Header, got %s", got)
			}
			if got := r.Header.Get("X-API-Key"); got != "key" {
				t.Errorf("Expected X-API-Key, got %s", got)
			}
			w.Write([]byte(`{"data":{}}`))
		}))
		defer server.Close()

		opts := validOptions
		opts.URL = server.URL
		opts.HTTPConfig = &HTTPConfig{
			Headers: map[string]string{"X-Custom-Header": "value"},
			Auth:    auth.NewAPIKeyAuth("X-API-Key", "", "key"),
			Client:  server.Client(),
		}
		tool, _ := New(opts)

		if _, err := tool.Invoke(context.Background(), ExecuteInput{Variables: map[string]any{}}); err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
	})

	t.Run("NilVariables", func(t *testing.T) {
		server, bodies, _ := graphQLServer(t, `{"data":{}}`)
		opts := validOptions
		opts.URL = server.URL
		tool, _ := New(opts)

		if _, err := tool.Invoke(context.Background(), ExecuteInput{}); err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if vars, ok := (*bodies)[0]["variables"].(map[string]any); !ok || len(vars) != 0 {
			t.Errorf("Expected empty variables object, got %v", (*bodies)[0]["variables"])
		}
	})

	t.Run("GraphQLErrorsPassThrough", func(t *testing.T) {
		server, _, _ := graphQLServer(t, `{"data":null,"errors":[{"message":"not found"}]}`)
		opts := validOptions
		opts.URL = server.URL
		tool, _ := New(opts)

		result, err := tool.Invoke(context.Background(), ExecuteInput{Variables: map[string]any{"id": "x"}})
		if err != nil {
			t.Fatalf("GraphQL errors with status 200 should not fail, got %v", err)
		}
		if _, ok := result.(map[string]any)["errors"]; !ok {
			t.Errorf("Expected errors field in result, got %v", result)
		}
	})
}

func TestInvoke_TransportErrors(t *testing.T) {
	t.Run("ErrorStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		opts := validOptions
		opts.URL = server.URL
		tool, _ := New(opts)

		_, err := tool.Invoke(context.Background(), ExecuteInput{Variables: map[string]any{}})
		var terr *errors.TransportError
		if !errors.As(err, &terr) {
			t.Fatalf("Expected TransportError, got %v", err)
		}
		if terr.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", terr.StatusCode)
		}
	})

	t.Run("MalformedBody", func(t *testing.T) {
		server, _, _ := graphQLServer(t, `<html>oops</html>`)
		opts := validOptions
		opts.URL = server.URL
		tool, _ := New(opts)

		_, err := tool.Invoke(context.Background(), ExecuteInput{Variables: map[string]any{}})
		if !errors.Is(err, errors.ErrTransport) {
			t.Fatalf("Expected ErrTransport, got %v", err)
		}
		if !strings.Contains(err.Error(), "decode response") {
			t.Errorf("Expected decode failure, got %v", err)
		}
	})

	t.Run("Unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		opts := validOptions
		opts.URL = url
		tool, _ := New(opts)

		_, err := tool.Invoke(context.Background(), ExecuteInput{Variables: map[string]any{}})
		if !errors.Is(err, errors.ErrTransport) {
			t.Fatalf("Expected ErrTransport, got %v", err)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		opts := validOptions
		opts.URL = server.URL
		opts.HTTPConfig = &HTTPConfig{Timeout: 50 * time.Millisecond}
		tool, _ := New(opts)

		_, err := tool.Invoke(context.Background(), ExecuteInput{Variables: map[string]any{}})
		if !errors.Is(err, errors.ErrTransport) {
			t.Fatalf("Expected ErrTransport, got %v", err)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected deadline exceeded, got %v", err)
		}
	})

	t.Run("CallerCancellation", func(t *testing.T) {
		var calls atomic.Int32
		opts := validOptions
		opts.HTTPConfig = &HTTPConfig{Client: doerFunc(func(r *http.Request) (*http.Response, error) {
			calls.Add(1)
			return nil, r.Context().Err()
		})}
		tool, _ := New(opts)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := tool.Invoke(ctx, ExecuteInput{Variables: map[string]any{}})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("Expected one attempt and no retry, got %d", calls.Load())
		}
	})
}

func TestInvoke_ParseErrors(t *testing.T) {
	server, _, _ := graphQLServer(t, userResponse)

	testCases := []struct {
		name   string
		parser ResponseParser
		want   string
	}{
		{
			name:   "ReturnedError",
			parser: func(any) (any, error) { return nil, fmt.Errorf("unexpected shape") },
			want:   "unexpected shape",
		},
		{
			name: "Panic",
			parser: func(response any) (any, error) {
				return response.(map[string]any)["missing"].(map[string]any)["x"], nil
			},
			want: "panicked",
		},
		{
			name:   "PathNotFound",
			parser: PathParser("data.country.capital"),
			want:   `path "data.country.capital" not found`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := validOptions
			opts.URL = server.URL
			opts.ResponseParser = tc.parser
			tool, _ := New(opts)

			result, err := tool.Invoke(context.Background(), ExecuteInput{Variables: map[string]any{}})
			if result != nil {
				t.Errorf("Expected no partial result, got %v", result)
			}
			var perr *errors.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Expected ParseError, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Expected error containing %q, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestInvoke_Concurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Variables map[string]any `json:"variables"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"user": map[string]any{"id": body.Variables["id"]}},
		})
	}))
	defer server.Close()

	opts := validOptions
	opts.URL = server.URL
	opts.ResponseParser = PathParser("data.user.id")
	tool, _ := New(opts)

	const n = 20
	var wg sync.WaitGroup
	results := make([]any, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = tool.Invoke(context.Background(), ExecuteInput{
				Variables: map[string]any{"id": fmt.Sprintf("user-%d", i)},
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Errorf("Invoke %d failed: %v", i, errs[i])
			continue
		}
		if want := fmt.Sprintf("user-%d", i); results[i] != want {
			t.Errorf("Invoke %d returned %v, want %s", i, results[i], want)
		}
	}
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }
