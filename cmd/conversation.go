package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	inboxrender "github.com/bnema/community-inbox/internal/adapters/render/inbox"
	"github.com/bnema/community-inbox/internal/application"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/spf13/cobra"
)

func newReadCmd(app *app) *cobra.Command {
	var peerID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Show a conversation and mark it read",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, profile, err := app.openEngine(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := engine.SelectPeer(cmd.Context(), domain.PeerID(peerID)); err != nil {
				return err
			}

			snapshot := engine.Snapshot()
			if asJSON {
				return writeJSON(cmd, snapshot.Conversation)
			}
			return writeSnapshot(cmd, app, snapshot, profile.UserID, inboxrender.SectionConversation)
		},
	}

	cmd.Flags().StringVar(&peerID, "peer", "", "Peer ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	_ = cmd.MarkFlagRequired("peer")

	return cmd
}

func newSendCmd(app *app) *cobra.Command {
	var peerID string

	cmd := &cobra.Command{
		Use:   "send --peer ID <text>",
		Short: "Send a private message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.TrimSpace(strings.Join(args, " "))
			if content == "" {
				return domain.ErrEmptyMessage
			}

			engine, _, err := app.openEngine(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := activate(cmd.Context(), engine, domain.Peer{ID: domain.PeerID(peerID)}); err != nil {
				return err
			}

			if _, err := engine.Send(cmd.Context(), domain.PeerID(peerID), content); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "message sent to %s\n", peerID)
			return err
		},
	}

	cmd.Flags().StringVar(&peerID, "peer", "", "Peer ID")
	_ = cmd.MarkFlagRequired("peer")

	return cmd
}

func newOpenCmd(app *app) *cobra.Command {
	var peerID string
	var name string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a conversation with someone, listed or not",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, profile, err := app.openEngine(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.Refresh(cmd.Context()); err != nil {
				return err
			}
			peer := domain.Peer{ID: domain.PeerID(peerID), DisplayName: name}
			if err := engine.OpenChat(cmd.Context(), peer); err != nil {
				return err
			}

			return writeSnapshot(cmd, app, engine.Snapshot(), profile.UserID, inboxrender.SectionConversation)
		},
	}

	cmd.Flags().StringVar(&peerID, "peer", "", "Peer ID")
	cmd.Flags().StringVar(&name, "name", "", "Display name used until the server lists the peer")
	_ = cmd.MarkFlagRequired("peer")

	return cmd
}

// activate selects peer, opening a direct chat when the server does not list it.
func activate(ctx context.Context, engine *application.Engine, peer domain.Peer) error {
	err := engine.SelectPeer(ctx, peer.ID)
	if errors.Is(err, domain.ErrPeerNotFound) {
		return engine.OpenChat(ctx, peer)
	}
	return err
}
