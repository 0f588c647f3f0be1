package auth

import (
	"fmt"
	"net/http"

	"github.com/saturnines/graphql-agent-tool/pkg/errors"
)

// BearerAuth sends a static bearer token
type BearerAuth struct {
	Token string
}

// NewBearerAuth creates a new bearer token authentication handler
func NewBearerAuth(token string) *BearerAuth {
	return &BearerAuth{
		Token: token,
	}
}

// ApplyAuth adds the Bearer token to the Authorization header
func (b *BearerAuth) ApplyAuth(req *http.Request) error {
	if b.Token == "" {
		return errors.WrapError(
			fmt.Errorf("token is required"),
			errors.ErrConfiguration,
			"apply bearer auth",
		)
	}

	req.Header.Set("Authorization", "Bearer "+b.Token)

	return nil
}

func (b *BearerAuth) String() string {
	return "BearerAuth(token: [REDACTED])"
}
