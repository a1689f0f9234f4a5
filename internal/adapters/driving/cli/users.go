package cli

import (
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered users",
	Long:  `Lists the users in ~/.docask/registry.toml. Only these users may ask questions.`,
	Args:  cobra.NoArgs,
	RunE:  runUsers,
}

func init() {
	rootCmd.AddCommand(usersCmd)
}

func runUsers(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	users := answerService.Users()
	if len(users) == 0 {
		cmd.Println("No users registered.")
		return nil
	}
	for _, u := range users {
		cmd.Println(u)
	}
	return nil
}
