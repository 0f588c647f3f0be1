// Package transform converts values extracted from GraphQL responses before
// they are handed back to the agent.
package transform

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Transformer defines the interface for value transformations
type Transformer interface {
	Transform(value any) (any, error)
}

// Func adapts a plain function to Transformer
type Func func(value any) (any, error)

func (f Func) Transform(value any) (any, error) {
	return f(value)
}

// TransformCreator builds a transformer from the optional argument in a spec
// such as "split:|" (argument "|").
type TransformCreator func(arg string) (Transformer, error)

// Registry holds all available transformers
type Registry struct {
	mu           sync.RWMutex
	transformers map[string]TransformCreator
}

// NewRegistry creates a new transformer registry with defaults
func NewRegistry() *Registry {
	r := &Registry{
		transformers: make(map[string]TransformCreator),
	}

	r.Register("string", fixed(toString))
	r.Register("int", fixed(toInt))
	r.Register("float", fixed(toFloat))
	r.Register("bool", fixed(toBool))
	r.Register("json", fixed(toJSON))
	r.Register("upper", fixed(stringOp("upper", strings.ToUpper)))
	r.Register("lower", fixed(stringOp("lower", strings.ToLower)))
	r.Register("trim", fixed(stringOp("trim", strings.TrimSpace)))
	r.Register("split", splitCreator)
	r.Register("join", joinCreator)

	return r
}

// Register adds a new transformer type
func (r *Registry) Register(name string, creator TransformCreator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transformers[name] = creator
}

// Create builds a transformer from a spec of the form "name" or "name:arg"
func (r *Registry) Create(spec string) (Transformer, error) {
	name, arg, _ := strings.Cut(spec, ":")

	r.mu.RLock()
	creator, ok := r.transformers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown transform type: %s", name)
	}
	return creator(arg)
}

// Chain builds every spec and returns a transformer applying them in order
func (r *Registry) Chain(specs ...string) (Transformer, error) {
	transforms := make([]Transformer, 0, len(specs))
	for _, spec := range specs {
		t, err := r.Create(spec)
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, t)
	}
	return NewChainTransform(transforms...), nil
}

func fixed(f Func) TransformCreator {
	return func(string) (Transformer, error) { return f, nil }
}

func toString(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func toInt(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

func toFloat(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return 0.0, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0.0, fmt.Errorf("cannot convert %T to float", value)
	}
}

func toBool(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}

// toJSON renders any value as compact JSON text, handy for models that only
// accept string tool results.
func toJSON(value any) (any, error) {
	buf, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

func stringOp(name string, op func(string) string) Func {
	return func(value any) (any, error) {
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s transform requires string input, got %T", name, value)
		}
		return op(str), nil
	}
}

func splitCreator(arg string) (Transformer, error) {
	delim := arg
	if delim == "" {
		delim = ","
	}
	return Func(func(value any) (any, error) {
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("split transform requires string input, got %T", value)
		}
		parts := strings.Split(str, delim)
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, nil
	}), nil
}

func joinCreator(arg string) (Transformer, error) {
	delim := arg
	if delim == "" {
		delim = ","
	}
	return Func(func(value any) (any, error) {
		arr, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("join transform requires array input, got %T", value)
		}
		strs := make([]string, len(arr))
		for i, v := range arr {
			strs[i] = fmt.Sprintf("%v", v)
		}
		return strings.Join(strs, delim), nil
	}), nil
}

// ChainTransform applies multiple transforms in sequence
type ChainTransform struct {
	transforms []Transformer
}

// NewChainTransform creates a transform that applies multiple transforms in order
func NewChainTransform(transforms ...Transformer) *ChainTransform {
	return &ChainTransform{transforms: transforms}
}

func (t *ChainTransform) Transform(value any) (any, error) {
	result := value
	for _, transform := range t.transforms {
		var err error
		result, err = transform.Transform(result)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// DefaultRegistry is the global transformer registry
var DefaultRegistry = NewRegistry()
