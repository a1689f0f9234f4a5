package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/core/domain"
)

var (
	profileRole  string
	profileFocus []string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage per-user answer personalisation",
	Long: `A profile gives the language model the user's role and focus areas.
Profiles saved here override those in registry.toml.`,
}

var profileSetCmd = &cobra.Command{
	Use:   "set [user]",
	Short: "Set a user's role and focus areas",
	Example: `  docask profile set Jeff --role "Regional sales manager" --focus pipeline,targets`,
	Args:    cobra.ExactArgs(1),
	RunE:    runProfileSet,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [user]",
	Short: "Show a user's stored profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

func init() {
	profileSetCmd.Flags().StringVar(&profileRole, "role", "", "the user's job, e.g. \"Regional sales manager\"")
	profileSetCmd.Flags().StringSliceVar(&profileFocus, "focus", nil, "comma-separated focus areas")
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

// canonicalUser resolves name against the registered users.
func canonicalUser(name string) (string, error) {
	users := answerService.Users()
	for _, u := range users {
		if strings.EqualFold(u, strings.TrimSpace(name)) {
			return u, nil
		}
	}
	return "", &domain.UnknownUserError{User: name, Valid: users}
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	user, err := canonicalUser(args[0])
	if err != nil {
		return err
	}

	profile := domain.UserProfile{Role: strings.TrimSpace(profileRole)}
	for _, f := range profileFocus {
		if f = strings.TrimSpace(f); f != "" {
			profile.FocusAreas = append(profile.FocusAreas, f)
		}
	}
	if profile.IsEmpty() {
		return errors.New("nothing to save: pass --role and/or --focus")
	}

	if err := profileStore.SaveProfile(cmd.Context(), user, profile); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	cmd.Printf("Saved profile for %s.\n", user)
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	user, err := canonicalUser(args[0])
	if err != nil {
		return err
	}

	profile, err := profileStore.GetProfile(cmd.Context(), user)
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Printf("No stored profile for %s.\n", user)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	cmd.Printf("User:  %s\n", user)
	cmd.Printf("Role:  %s\n", profile.Role)
	cmd.Printf("Focus: %s\n", strings.Join(profile.FocusAreas, ", "))
	return nil
}
