package identity

import (
	"context"
	"errors"
	"time"

	"github.com/mcoot/gameofchests/internal/model"
)

// ErrIssueUnsupported is returned by providers whose identities come from elsewhere
var ErrIssueUnsupported = errors.New("identity provider does not issue identities")

// Credentials are an identity and the bearer token proving it
type Credentials struct {
	Identity  model.Identity
	Token     string
	ExpiresAt time.Time
}

// Provider resolves bearer tokens to anonymous participant identities
type Provider interface {
	// Issue creates a fresh anonymous identity
	Issue(ctx context.Context) (*Credentials, error)

	// Verify returns the identity behind token or model.ErrUnauthorized
	Verify(ctx context.Context, token string) (model.Identity, error)
}
