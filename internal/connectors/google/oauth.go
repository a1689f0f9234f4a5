package google

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// ErrNoRefreshToken is returned when the provider grants access without a
// refresh token, usually because consent was not forced.
var ErrNoRefreshToken = errors.New("google: no refresh token returned")

// AuthFlow drives one authorisation code exchange with PKCE.
type AuthFlow struct {
	cfg      *oauth2.Config
	verifier string
	state    string
}

// NewAuthFlow starts an authorisation flow. state must match the value the
// callback server expects.
func NewAuthFlow(clientID, clientSecret, redirectURL, state string) *AuthFlow {
	return &AuthFlow{
		cfg:      OAuthConfig(clientID, clientSecret, redirectURL),
		verifier: oauth2.GenerateVerifier(),
		state:    state,
	}
}

// AuthURL returns the consent page URL to open in a browser.
// Offline access and forced consent make Google return a refresh token.
func (f *AuthFlow) AuthURL() string {
	return f.cfg.AuthCodeURL(f.state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(f.verifier),
	)
}

// Exchange trades the authorisation code for tokens.
func (f *AuthFlow) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := f.cfg.Exchange(ctx, code, oauth2.VerifierOption(f.verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	return tok, nil
}
