package auth

import (
	"fmt"
	"sync"

	"github.com/saturnines/graphql-agent-tool/pkg/config"
	"github.com/saturnines/graphql-agent-tool/pkg/errors"
)

// AuthCreator builds a handler from its config block
type AuthCreator func(*config.Auth) (Handler, error)

// AuthRegistry maps auth types to creators
type AuthRegistry struct {
	creators map[config.AuthType]AuthCreator
	mutex    sync.RWMutex
}

// NewAuthRegistry creates a registry with the built-in handlers
func NewAuthRegistry() *AuthRegistry {
	registry := &AuthRegistry{
		creators: make(map[config.AuthType]AuthCreator),
	}

	registry.Register(config.AuthTypeBasic, createBasicAuth)
	registry.Register(config.AuthTypeAPIKey, createAPIKeyAuth)
	registry.Register(config.AuthTypeBearer, createBearerAuth)
	return registry
}

// Register adds or replaces the creator for an auth type
func (r *AuthRegistry) Register(authType config.AuthType, creator AuthCreator) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.creators[authType] = creator
}

// Create creates an auth handler based on the config
func (r *AuthRegistry) Create(authConfig *config.Auth) (Handler, error) {
	if authConfig == nil {
		return nil, nil
	}

	r.mutex.RLock()
	creator, exists := r.creators[authConfig.Type]
	r.mutex.RUnlock()

	if !exists {
		return nil, errors.WrapError(
			fmt.Errorf("unsupported auth type: %s", authConfig.Type),
			errors.ErrConfiguration,
			"invalid auth type",
		)
	}

	return creator(authConfig)
}

var defaultRegistry = NewAuthRegistry()

// CreateHandler creates an auth handler using the default registry.
// A nil config yields a nil handler.
func CreateHandler(authConfig *config.Auth) (Handler, error) {
	return defaultRegistry.Create(authConfig)
}

// RegisterAuthHandler adds a custom creator to the default registry
func RegisterAuthHandler(authType config.AuthType, creator AuthCreator) {
	defaultRegistry.Register(authType, creator)
}
