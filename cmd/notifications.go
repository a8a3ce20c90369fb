package cmd

import (
	"fmt"

	inboxrender "github.com/bnema/community-inbox/internal/adapters/render/inbox"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/spf13/cobra"
)

type notificationsOutput struct {
	Badge  int
	Counts domain.NotificationCounts
}

func newNotificationsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show unread notification counts",
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
				return writeJSON(cmd, notificationsOutput{Badge: snapshot.Badge, Counts: snapshot.Counts})
			}
			return writeSnapshot(cmd, app, snapshot, profile.UserID, inboxrender.SectionCounts)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.AddCommand(newNotificationsMarkReadCmd(app))

	return cmd
}

func newNotificationsMarkReadCmd(app *app) *cobra.Command {
	var rawCategory string

	cmd := &cobra.Command{
		Use:   "mark-read",
		Short: "Mark one notification category read",
		RunE: func(cmd *cobra.Command, _ []string) error {
			category, err := domain.ParseCategory(rawCategory)
			if err != nil {
				return err
			}

			engine, profile, err := app.openEngine(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := engine.MarkCategoryRead(cmd.Context(), category); err != nil {
				return err
			}

			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s notifications marked read\n", category); err != nil {
				return err
			}
			return writeSnapshot(cmd, app, engine.Snapshot(), profile.UserID, inboxrender.SectionCounts)
		},
	}

	cmd.Flags().StringVar(&rawCategory, "type", "", "Category (reply|mention|message|system)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}
