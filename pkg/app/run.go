package app

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/small-frappuccino/richpresence/pkg/control"
	"github.com/small-frappuccino/richpresence/pkg/controller"
	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
	"github.com/small-frappuccino/richpresence/pkg/errors"
	"github.com/small-frappuccino/richpresence/pkg/log"
	"github.com/small-frappuccino/richpresence/pkg/service"
	"github.com/small-frappuccino/richpresence/pkg/util"
	"github.com/small-frappuccino/richpresence/pkg/watch"
)

type runOptions struct {
	controlAddr string
	noWatch     bool
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	ro := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [profile]",
		Short: "Broadcast a profile without the editor",
		Long: `Broadcast a profile until interrupted. Without an argument the last
selected profile is used.

Edits to the profiles file are picked up while running; a change of client id
or interval restarts the connection.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := ""
			if len(args) == 1 {
				profile = args[0]
			}
			if err := opts.setupLogging(modeHeadless); err != nil {
				return err
			}
			return runHeadless(cmd.Context(), opts, ro, profile, cmd.OutOrStdout(), discordrpc.NewIPCClient())
		},
	}
	cmd.Flags().StringVar(&ro.controlAddr, "control-addr", util.EnvString(EnvControlAddr, ""), "serve the local control API on this address, e.g. 127.0.0.1:8765")
	cmd.Flags().BoolVar(&ro.noWatch, "no-watch", util.EnvBool(EnvNoWatch), "do not reload the profile when the file changes")
	return cmd
}

// runHeadless broadcasts one profile until ctx is done, the run fails or it is
// stopped through the control API.
func runHeadless(ctx context.Context, opts *rootOptions, ro *runOptions, profile string, out io.Writer, client discordrpc.Client) error {
	history, err := openHistory()
	if err != nil {
		log.ApplicationLogger().Warn("Run history disabled", "err", err)
	}
	if history != nil {
		defer history.Close()
	}

	store, err := opts.loadProfiles()
	if err != nil {
		return err
	}

	view := newConsoleView(out)
	rpc := newBroadcaster(client, history)
	ctrl := controller.New(store, rpc, view,
		controller.WithDefaultClientID(defaultClientID()),
		controller.WithContext(ctx),
	)
	if err := ctrl.Init(); err != nil {
		return err
	}
	if profile != "" {
		if err := ctrl.Select(profile); err != nil {
			return err
		}
	}
	if store.ActiveName() == "" {
		return errors.Validation("app", "run", "no profile to run; create one with 'profile new'")
	}

	if err := ctrl.Start(); err != nil {
		return err
	}
	defer shutdown(rpc)

	services := service.NewServiceManager()
	if srv := control.NewServer(ro.controlAddr, rpc); srv != nil {
		_ = services.Register(service.NewServiceWrapper("control", service.PriorityHigh,
			func(context.Context) error { return srv.Start() },
			srv.Stop,
		))
	}

	var events <-chan watch.Event
	if !ro.noWatch {
		w, err := watch.New(store.Path(), watch.DefaultDebounce)
		if err != nil {
			log.ApplicationLogger().Warn("Profile reload disabled", "err", err)
		} else {
			defer w.Stop()
			events = w.Events()
			_ = services.Register(service.NewServiceWrapper("watcher", service.PriorityNormal,
				func(context.Context) error { return w.Start() },
				func(context.Context) error { w.Stop(); return nil },
			))
		}
	}

	if err := services.StartAll(ctx); err != nil {
		return err
	}
	defer func() { _ = services.StopAll() }()

	return headlessLoop(ctx, ctrl, rpc, events)
}

// headlessLoop is the foreground loop of a headless run: it drains reports,
// applies file changes and returns when the run ends.
func headlessLoop(ctx context.Context, ctrl *controller.Controller, rpc *discordrpc.Broadcaster, events <-chan watch.Event) error {
	for {
		select {
		case <-ctx.Done():
			log.ApplicationLogger().Info("Interrupted; stopping broadcast")
			return nil

		case r := <-ctrl.Reports():
			ctrl.HandleReport(r)
			return r.Err

		case <-rpc.Done():
			select {
			case r := <-ctrl.Reports():
				ctrl.HandleReport(r)
				return r.Err
			default:
			}
			ctrl.ShowStatus()
			log.ApplicationLogger().Info("Broadcast stopped")
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Removed {
				log.ApplicationLogger().Warn("Profiles file removed; keeping current presence", "path", ev.Path)
				continue
			}
			restart, err := ctrl.Reload()
			if err != nil || !restart {
				continue
			}
			if err := restartRun(ctx, ctrl, rpc); err != nil {
				return err
			}
		}
	}
}

// restartRun stops the current run, waits for it to clean up and starts it
// again with the reloaded profile.
func restartRun(ctx context.Context, ctrl *controller.Controller, rpc *discordrpc.Broadcaster) error {
	ctrl.Stop()
	if rpc.Wait(ctx) != nil {
		// Interrupted while waiting.
		return nil
	}
	select {
	case r := <-ctrl.Reports():
		ctrl.HandleReport(r)
		return r.Err
	default:
	}
	return ctrl.Start()
}
