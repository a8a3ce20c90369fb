package cmd

import (
	"fmt"

	inboxrender "github.com/bnema/community-inbox/internal/adapters/render/inbox"
	"github.com/spf13/cobra"
)

func newPeersCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "peers",
		Short: "List conversations with their unread counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, profile, err := app.openEngine(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.Refresh(cmd.Context()); err != nil {
				return err
			}

			snapshot := engine.Snapshot()
			if asJSON {
				return writeJSON(cmd, snapshot.Peers)
			}
			return writeSnapshot(cmd, app, snapshot, profile.UserID, inboxrender.SectionPeers)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}

func newMarkAllReadCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-all-read",
		Short: "Mark every conversation read",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, _, err := app.openEngine(cmd.Context(), false)
			if err != nil {
				return err
			}

			if err := engine.MarkAllRead(cmd.Context()); err != nil {
				engine.Close()
				return err
			}
			// Close waits for the mark-all-read request.
			engine.Close()

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "all conversations marked read")
			return err
		},
	}
}
