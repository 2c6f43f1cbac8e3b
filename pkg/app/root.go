package app

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/small-frappuccino/richpresence/pkg/controller"
	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
	"github.com/small-frappuccino/richpresence/pkg/log"
	"github.com/small-frappuccino/richpresence/pkg/tui"
	"github.com/small-frappuccino/richpresence/pkg/util"
)

// shutdownTimeout bounds the wait for the broadcaster's clear and close on exit.
const shutdownTimeout = 5 * time.Second

// NewRootCommand builds the command tree. Without a subcommand it opens the editor.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "richpresence",
		Short: "Edit and broadcast Discord Rich Presence profiles",
		Long: `richpresence keeps named Discord Rich Presence profiles in a JSON file and
broadcasts one of them to the local Discord client over IPC.

Run without arguments to open the terminal editor.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEditor(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "profiles file (default $"+EnvConfig+" or the per-user config dir)")
	flags.StringVar(&opts.logFile, "log-file", util.GetLogFilePath(), "log file path; empty disables file logging")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default $"+EnvLogLevel+" or info)")

	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newProfileCmd(opts))
	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI until it exits or the process is interrupted.
func Execute() error {
	ctx, stop := util.InterruptContext(context.Background())
	defer stop()
	defer func() { _ = log.GlobalLogger.Sync() }()
	return NewRootCommand().ExecuteContext(ctx)
}

func runEditor(ctx context.Context, opts *rootOptions) error {
	if err := opts.setupLogging(modeTUI); err != nil {
		return err
	}
	log.ApplicationLogger().Info("Starting editor", "version", util.Version, "profiles", opts.profilesPath())

	history, err := openHistory()
	if err != nil {
		log.ApplicationLogger().Warn("Run history disabled", "err", err)
	}
	if history != nil {
		defer history.Close()
	}
	applyTheme(history)

	store, err := opts.loadProfiles()
	if err != nil {
		return err
	}

	rpc := newBroadcaster(discordrpc.NewIPCClient(), history)
	model := tui.NewModel(tui.WithThemeChange(saveTheme(history)))
	ctrl := controller.New(store, rpc, model,
		controller.WithDefaultClientID(defaultClientID()),
		controller.WithContext(ctx),
	)
	model.Bind(ctrl)
	if err := ctrl.Init(); err != nil {
		return err
	}

	runErr := tui.Run(model)
	shutdown(rpc)
	return runErr
}

// shutdown stops the broadcaster and waits for it to clear the presence.
func shutdown(rpc *discordrpc.Broadcaster) {
	rpc.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rpc.Wait(ctx); err != nil {
		log.RPCLogger().Warn("Broadcaster did not stop in time", "err", err)
	}
}
