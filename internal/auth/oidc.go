package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCVerifier accepts tokens issued by an OpenID Connect provider and
// identifies the bearer by email.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider at issuer.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// Verify checks the token and extracts a verified email claim.
func (v *OIDCVerifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Email == "" || (claims.EmailVerified != nil && !*claims.EmailVerified) {
		return nil, ErrInvalidToken
	}
	return &Identity{Email: claims.Email}, nil
}
