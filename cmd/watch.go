package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/community-inbox/internal/adapters/publish"
	"github.com/bnema/community-inbox/internal/adapters/publish/amqpbus"
	"github.com/bnema/community-inbox/internal/adapters/publish/natsbus"
	"github.com/bnema/community-inbox/internal/adapters/publish/redismirror"
	inboxrender "github.com/bnema/community-inbox/internal/adapters/render/inbox"
	"github.com/bnema/community-inbox/internal/application"
	"github.com/bnema/community-inbox/internal/config"
	"github.com/bnema/community-inbox/internal/ports"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *app) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the inbox in sync and browse it live",
		Long:  "watch polls conversations and notification counts until interrupted. Unread changes are forwarded to the NATS, AMQP and Redis sinks configured under publish.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			engine, profile, err := app.openEngine(ctx, true)
			if err != nil {
				return err
			}
			defer engine.Close()

			publishers, closePublishers, err := openPublishers(app.cfg.Publish)
			if err != nil {
				return err
			}
			defer func() {
				if err := closePublishers(); err != nil {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "close publishers:", err)
				}
			}()
			if plain {
				out := zerolog.New(zerolog.ConsoleWriter{Out: cmd.OutOrStdout(), TimeFormat: "15:04:05", NoColor: true}).With().Timestamp().Logger()
				publishers = append(publishers, publish.NewLogSink(out))
			}

			forwarder := application.NewForwarder(profile.Name, app.clock, publishers...)
			unsubscribe := engine.Subscribe(forwarder.Observe)
			defer unsubscribe()

			forwarded := make(chan struct{})
			go func() {
				defer close(forwarded)
				_ = forwarder.Run(ctx)
			}()
			// Seed the forwarder; the first poll may not change anything.
			forwarder.Observe(engine.Snapshot())

			if plain {
				<-ctx.Done()
			} else {
				err = runWatchProgram(ctx, cmd, engine, inboxrender.WatchOptions{Self: profile.UserID, Clock: app.clock.Now})
			}

			cancel()
			<-forwarded
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Log unread changes instead of drawing the interactive view")

	return cmd
}

func runWatchProgram(ctx context.Context, cmd *cobra.Command, engine *application.Engine, opts inboxrender.WatchOptions) error {
	program := tea.NewProgram(
		inboxrender.NewWatchModel(engine, opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	unsubscribe := engine.Subscribe(func(snapshot application.Snapshot) {
		program.Send(inboxrender.SnapshotMsg(snapshot))
	})
	defer unsubscribe()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// openPublishers connects every configured sink. The returned func closes them all.
func openPublishers(cfg config.PublishConfig) ([]ports.EventPublisher, func() error, error) {
	var publishers []ports.EventPublisher
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	if cfg.NATS.URL != "" {
		publisher, err := natsbus.Connect(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return nil, nil, errors.Join(fmt.Errorf("connect nats publisher: %w", err), closeAll())
		}
		publishers = append(publishers, publisher)
		closers = append(closers, publisher.Close)
	}

	if cfg.AMQP.URL != "" {
		publisher, err := amqpbus.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
		if err != nil {
			return nil, nil, errors.Join(fmt.Errorf("dial amqp publisher: %w", err), closeAll())
		}
		publishers = append(publishers, publisher)
		closers = append(closers, publisher.Close)
	}

	if cfg.Redis.Addr != "" {
		mirror, err := redismirror.New(redismirror.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
			Channel:  cfg.Redis.Channel,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			return nil, nil, errors.Join(fmt.Errorf("open redis mirror: %w", err), closeAll())
		}
		publishers = append(publishers, mirror)
		closers = append(closers, mirror.Close)
	}

	return publishers, closeAll, nil
}
