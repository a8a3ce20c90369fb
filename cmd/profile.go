package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/spf13/cobra"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage community profiles",
	}

	cmd.AddCommand(newProfileSetCmd(app), newProfileListCmd(app))

	return cmd
}

func newProfileSetCmd(app *app) *cobra.Command {
	var baseURL string
	var userID string
	var displayName string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update the selected profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name := app.profileName()

			profile, err := app.service.Get(cmd.Context(), name)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrProfileNotFound):
				profile = domain.Profile{Name: name}
			default:
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("base-url") {
				profile.BaseURL = baseURL
			}
			if flags.Changed("user-id") {
				profile.UserID = domain.PeerID(userID)
			}
			if flags.Changed("display-name") {
				profile.DisplayName = displayName
			}
			if profile.BaseURL == "" {
				return fmt.Errorf("profile %s: %w", name, errNoBaseURL)
			}

			if err := app.service.SaveProfile(cmd.Context(), profile); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "profile %s saved\n", name)
			return err
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Community API base URL, e.g. https://community.example.com/api")
	cmd.Flags().StringVar(&userID, "user-id", "", "Your user ID on the community server")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Name shown on messages you send")

	return cmd
}

func newProfileListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.service.List(cmd.Context())
			if err != nil {
				return err
			}

			for _, profile := range profiles {
				marker := " "
				if profile.Name == app.profileName() {
					marker = "*"
				}
				session := "no session"
				if profile.HasSession() {
					session = "signed in"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%s\n", marker, profile.Name, profile.BaseURL, session)
			}

			return nil
		},
	}
}
