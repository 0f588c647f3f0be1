package auth

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/saturnines/graphql-agent-tool/pkg/errors"
)

// BasicAuth implements HTTP basic authentication
type BasicAuth struct {
	Username string
	Password string
}

// NewBasicAuth creates a new basic authentication handler
func NewBasicAuth(username, password string) *BasicAuth {
	return &BasicAuth{
		Username: username,
		Password: password,
	}
}

// ApplyAuth sets the Authorization header. An empty password is allowed.
func (b *BasicAuth) ApplyAuth(req *http.Request) error {
	if b.Username == "" {
		return errors.WrapError(
			fmt.Errorf("username is required"),
			errors.ErrConfiguration,
			"apply basic auth",
		)
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(b.Username + ":" + b.Password))
	req.Header.Set("Authorization", "Basic "+encoded)

	return nil
}

func (b *BasicAuth) String() string {
	return fmt.Sprintf("BasicAuth(username: %s)", b.Username)
}
