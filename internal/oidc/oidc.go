// Package oidc verifies federated id_tokens against a discovered provider.
package oidc

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/codrift/codrift/backend/go-services/pkg/middleware"
)

// Verifier validates id_tokens issued by one OIDC provider for one client.
type Verifier struct {
	idTokens *oidc.IDTokenVerifier
}

// NewVerifier discovers the issuer's configuration and keys. Discovery hits
// the network, so this runs once at startup.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover OIDC provider %s: %w", issuer, err)
	}
	return &Verifier{idTokens: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// Verify checks the raw id_token's signature, issuer, audience, and expiry.
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	return v.idTokens.Verify(ctx, raw)
}
