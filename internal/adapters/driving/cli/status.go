package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show source and language model status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	status := answerService.Status(cmd.Context())

	cmd.Printf("Google Drive:   %s\n", status.Remote)
	if status.LocalDir != "" {
		cmd.Printf("Local folder:   %s\n", status.LocalDir)
	} else {
		cmd.Println("Local folder:   (not configured)")
	}
	if status.AIEnabled {
		cmd.Printf("Language model: %s\n", status.Model)
	} else {
		cmd.Println("Language model: not configured (answers quote documents)")
	}
	cmd.Printf("Users:          %d\n", status.Users)

	if status.Remote == domain.RemoteAuthFailed {
		cmd.Println()
		cmd.Println("Run 'docask auth drive' to authorise Google Drive again.")
	}
	return nil
}
