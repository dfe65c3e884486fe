package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/gameofchests/internal/dependencies/clock"
	"github.com/mcoot/gameofchests/internal/dependencies/ids"
	"github.com/mcoot/gameofchests/internal/model"
)

// Config holds configuration for signed session tokens
type Config struct {
	Secret   []byte
	Issuer   string
	TokenTTL time.Duration
}

// DefaultConfig returns default token configuration. Secret must be set.
func DefaultConfig() Config {
	return Config{
		Issuer:   "gameofchests",
		TokenTTL: 24 * time.Hour,
	}
}

// TokenProvider issues anonymous identities as HS256 signed tokens.
// Nothing is stored server side; the token carries the identity.
type TokenProvider struct {
	cfg   Config
	clock clock.Clock
	ids   ids.Generator
}

// NewTokenProvider creates a TokenProvider
func NewTokenProvider(cfg Config, clock clock.Clock, ids ids.Generator) (*TokenProvider, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("token secret must be set")
	}
	defaults := DefaultConfig()
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaults.Issuer
	}
	return &TokenProvider{cfg: cfg, clock: clock, ids: ids}, nil
}

// Ensure TokenProvider implements Provider
var _ Provider = (*TokenProvider)(nil)

// Issue creates a new identity and signs a token for it
func (p *TokenProvider) Issue(ctx context.Context) (*Credentials, error) {
	now := p.clock.Now()
	id := p.ids.Identity()
	expires := now.Add(p.cfg.TokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   string(id),
		Issuer:    p.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.cfg.Secret)
	if err != nil {
		return nil, err
	}

	return &Credentials{
		Identity:  id,
		Token:     signed,
		ExpiresAt: expires,
	}, nil
}

// Verify checks the signature, issuer and expiry of token
func (p *TokenProvider) Verify(ctx context.Context, token string) (model.Identity, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return p.cfg.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.clock.Now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", model.ErrUnauthorized)
	}
	return model.Identity(claims.Subject), nil
}
