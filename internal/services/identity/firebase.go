package identity

import (
	"context"
	"fmt"

	fb "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"google.golang.org/api/option"

	"github.com/mcoot/gameofchests/internal/model"
)

// FirebaseConfig holds settings for verifying Firebase ID tokens
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// TokenVerifier is the part of *auth.Client the provider needs
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseProvider accepts ID tokens from Firebase anonymous sign-in.
// Clients sign in with Firebase directly, so it never issues identities.
type FirebaseProvider struct {
	verifier TokenVerifier
}

// NewFirebaseProvider connects to Firebase Auth for the configured project
func NewFirebaseProvider(ctx context.Context, cfg FirebaseConfig) (*FirebaseProvider, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return NewFirebaseProviderWithVerifier(client), nil
}

// NewFirebaseProviderWithVerifier uses an existing verifier (for testing)
func NewFirebaseProviderWithVerifier(verifier TokenVerifier) *FirebaseProvider {
	return &FirebaseProvider{verifier: verifier}
}

// Ensure FirebaseProvider implements Provider
var _ Provider = (*FirebaseProvider)(nil)

// Issue is not supported; identities come from Firebase sign-in
func (p *FirebaseProvider) Issue(ctx context.Context) (*Credentials, error) {
	return nil, ErrIssueUnsupported
}

// Verify returns the Firebase UID behind an ID token
func (p *FirebaseProvider) Verify(ctx context.Context, token string) (model.Identity, error) {
	t, err := p.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrUnauthorized, err)
	}
	uid := t.UID
	if uid == "" {
		uid = t.Subject
	}
	if uid == "" {
		return "", fmt.Errorf("%w: token has no uid", model.ErrUnauthorized)
	}
	return model.Identity(uid), nil
}
