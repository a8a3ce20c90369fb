package cmd

import "github.com/spf13/cobra"

// annotationSkipWire marks commands that run without configuration, profiles or secrets.
const annotationSkipWire = "inbox/skip-wire"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := newApp()

	rootCmd := &cobra.Command{
		Use:           "inbox",
		Short:         "Community inbox: private messages and notification counts in the terminal",
		Long:          "inbox keeps a community account's private conversations and notification counters in sync by polling its REST API, and lets you read, reply and clear unread state from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationSkipWire] != "" {
				return nil
			}
			return app.wire()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return app.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "Config file (default ~/.config/inbox/config.yaml)")
	flags.String("profile", "", "Profile to use (default from config, then \"default\")")
	flags.String("log-level", "", "Log level (trace|debug|info|warn|error)")
	_ = app.loader.Viper().BindPFlag("profile", flags.Lookup("profile"))
	_ = app.loader.Viper().BindPFlag("logging.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(app),
		newProfileCmd(app),
		newAuthCmd(app),
		newPeersCmd(app),
		newReadCmd(app),
		newSendCmd(app),
		newOpenCmd(app),
		newNotificationsCmd(app),
		newMarkAllReadCmd(app),
		newWatchCmd(app),
	)

	return rootCmd
}
