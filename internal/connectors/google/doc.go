// Package google provides shared infrastructure for the Google Drive store.
//
// It contains:
//   - A refresh-token oauth2.TokenSource and the interactive OAuth flow
//     used to obtain the refresh token
//   - The Drive service factory
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
//	ts := google.NewRefreshTokenSource(ctx, clientID, clientSecret, refreshToken)
//	svc, err := google.NewDriveService(ctx, ts)
//
// # OAuth2 Scopes
//
// Drive access uses these scopes:
//   - https://www.googleapis.com/auth/userinfo.email (non-sensitive)
//   - https://www.googleapis.com/auth/drive.readonly (restricted)
//
// For user-created internal apps, restricted scopes don't require verification.
package google
