package cmd

import (
	"encoding/json"
	"fmt"

	inboxrender "github.com/bnema/community-inbox/internal/adapters/render/inbox"
	"github.com/bnema/community-inbox/internal/application"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/spf13/cobra"
)

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeSnapshot(cmd *cobra.Command, app *app, snapshot application.Snapshot, self domain.PeerID, sections inboxrender.Section) error {
	rendered, err := app.renderer(snapshot, inboxrender.RenderOptions{
		Now:      app.clock.Now(),
		Self:     self,
		Sections: sections,
	})
	if err != nil {
		return fmt.Errorf("render inbox: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
