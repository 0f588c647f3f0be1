package auth

import (
	"fmt"

	"github.com/saturnines/graphql-agent-tool/pkg/config"
	"github.com/saturnines/graphql-agent-tool/pkg/errors"
)

func createBasicAuth(authConfig *config.Auth) (Handler, error) {
	if authConfig.Basic == nil {
		return nil, errors.WrapError(
			fmt.Errorf("basic auth configuration is required"),
			errors.ErrConfiguration,
			"create basic auth",
		)
	}
	return NewBasicAuth(authConfig.Basic.Username, authConfig.Basic.Password), nil
}

func createAPIKeyAuth(authConfig *config.Auth) (Handler, error) {
	if authConfig.APIKey == nil {
		return nil, errors.WrapError(
			fmt.Errorf("api key configuration is required"),
			errors.ErrConfiguration,
			"create API key auth",
		)
	}
	return NewAPIKeyAuth(
		authConfig.APIKey.Header,
		authConfig.APIKey.QueryParam,
		authConfig.APIKey.Value,
	), nil
}

func createBearerAuth(authConfig *config.Auth) (Handler, error) {
	if authConfig.Bearer == nil {
		return nil, errors.WrapError(
			fmt.Errorf("bearer token configuration is required"),
			errors.ErrConfiguration,
			"create bearer auth",
		)
	}
	return NewBearerAuth(authConfig.Bearer.Token), nil
}
