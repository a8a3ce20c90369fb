package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the session token of the selected profile",
	}

	cmd.AddCommand(newAuthSetTokenCmd(app), newAuthRemoveCmd(app))

	return cmd
}

func newAuthSetTokenCmd(app *app) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "set-token",
		Short: "Store a bearer token for the selected profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "-" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token from stdin: %w", err)
				}
				token = strings.TrimSpace(line)
			}

			name := app.profileName()
			if err := app.service.SetSessionToken(cmd.Context(), name, token); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "session stored for profile %s\n", name)
			return err
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token, or - to read it from stdin")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newAuthRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Forget the session token of the selected profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.service.RemoveSession(cmd.Context(), app.profileName())
		},
	}
}
