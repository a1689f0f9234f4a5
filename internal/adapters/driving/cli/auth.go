package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/adapters/driving/oauth"
	"github.com/custodia-labs/docask/internal/connectors/google"
	"github.com/custodia-labs/docask/internal/logger"
)

// authTimeout bounds the wait for the browser consent callback.
const authTimeout = 5 * time.Minute

var (
	authClientID     string
	authClientSecret string
	authPort         int
	authNoBrowser    bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorise access to remote document stores",
}

var authDriveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Authorise read-only Google Drive access",
	Long: `Opens the Google consent page and stores the resulting refresh token.

The OAuth client must be a "Desktop app" client from the Google Cloud
console. Its id and secret come from the flags, or from settings when
already saved.`,
	Args: cobra.NoArgs,
	RunE: runAuthDrive,
}

func init() {
	authDriveCmd.Flags().StringVar(&authClientID, "client-id", "", "OAuth client id")
	authDriveCmd.Flags().StringVar(&authClientSecret, "client-secret", "", "OAuth client secret")
	authDriveCmd.Flags().IntVar(&authPort, "port", 0, "local callback port (random when 0)")
	authDriveCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "print the consent URL instead of opening a browser")
	authCmd.AddCommand(authDriveCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthDrive(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	clientID, clientSecret := strings.TrimSpace(authClientID), strings.TrimSpace(authClientSecret)
	if clientID == "" || clientSecret == "" {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		if clientID == "" {
			clientID = settings.Drive.ClientID
		}
		if clientSecret == "" {
			clientSecret = settings.Drive.ClientSecret
		}
	}
	if clientID == "" || clientSecret == "" {
		return errors.New("OAuth client id and secret are required: pass --client-id and --client-secret")
	}

	state, err := oauth.GenerateState()
	if err != nil {
		return err
	}

	server := oauth.NewCallbackServer(authPort, state)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	defer func() {
		if err := server.Stop(); err != nil {
			logger.Debug("Stopping callback server: %v", err)
		}
	}()

	flow := google.NewAuthFlow(clientID, clientSecret, server.RedirectURI(), state)
	authURL := flow.AuthURL()

	if authNoBrowser {
		cmd.Println("Open this URL in your browser to authorise docask:")
		cmd.Println(authURL)
	} else {
		cmd.Println("Opening browser for Google authorisation...")
		if err := oauth.OpenBrowser(authURL); err != nil {
			cmd.Println("Could not open a browser. Open this URL instead:")
			cmd.Println(authURL)
		}
	}
	cmd.Println("Waiting for authorisation...")

	ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
	defer cancel()

	code, err := server.WaitForCode(ctx)
	if err != nil {
		return fmt.Errorf("authorisation failed: %w", err)
	}

	tok, err := flow.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("authorisation failed: %w", err)
	}

	if info, err := google.GetUserInfo(ctx, tok.AccessToken); err != nil {
		logger.Warn("Could not read account details: %v", err)
	} else if info.Email != "" {
		cmd.Printf("Authorised as %s\n", info.Email)
	}

	if err := settingsService.SetDriveCredentials(clientID, clientSecret, tok.RefreshToken); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	cmd.Println("Google Drive credentials saved.")
	return nil
}
