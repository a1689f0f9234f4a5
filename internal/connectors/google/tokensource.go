package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// Scopes requested for Drive access.
var Scopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/drive.readonly",
}

// OAuthConfig returns the oauth2 configuration for a Google OAuth client.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     googleoauth.Endpoint,
		Scopes:       Scopes,
	}
}

// refreshErrorSource marks token failures with domain.ErrTokenRefreshFailed
// so callers can tell bad credentials from an unreachable API.
type refreshErrorSource struct {
	src oauth2.TokenSource
}

// Token implements oauth2.TokenSource.
func (s *refreshErrorSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}
	return tok, nil
}

// NewRefreshTokenSource creates a caching oauth2.TokenSource that mints
// access tokens from a long-lived refresh token.
func NewRefreshTokenSource(ctx context.Context, clientID, clientSecret, refreshToken string) oauth2.TokenSource {
	cfg := OAuthConfig(clientID, clientSecret, "")
	base := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return oauth2.ReuseTokenSource(nil, &refreshErrorSource{src: base})
}
