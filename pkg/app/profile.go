package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/small-frappuccino/richpresence/pkg/controller"
	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
	"github.com/small-frappuccino/richpresence/pkg/errors"
	"github.com/small-frappuccino/richpresence/pkg/files"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles"},
		Short:   "Manage presence profiles",
	}
	cmd.AddCommand(
		newProfileListCmd(opts),
		newProfileShowCmd(opts),
		newProfileNewCmd(opts),
		newProfileCopyCmd(opts),
		newProfileDeleteCmd(opts),
		newProfileUseCmd(opts),
		newProfileSetCmd(opts),
	)
	return cmd
}

// cliController loads the store behind a controller whose view prints notices,
// but not status, to out.
// The broadcaster is never started by these commands.
func (o *rootOptions) cliController(out io.Writer) (*controller.Controller, *consoleView, error) {
	if err := o.setupLogging(modeCommand); err != nil {
		return nil, nil, err
	}
	store := files.NewProfileManagerWithPath(o.profilesPath())
	view := newQuietConsoleView(out)
	ctrl := controller.New(store, discordrpc.NewBroadcaster(discordrpc.NewIPCClient()), view)
	if err := ctrl.Init(); err != nil {
		return nil, nil, err
	}
	return ctrl, view, nil
}

func newProfileListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List profiles; the last selected one is marked with *",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, view, err := opts.cliController(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(view.names) == 0 {
				fmt.Fprintln(out, "No profiles.")
				return nil
			}
			for _, name := range view.names {
				marker := " "
				if name == view.active {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, name)
			}
			return nil
		},
	}
}

func newProfileShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print a profile as JSON (default: the last selected one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := opts.cliController(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			store := ctrl.Store()
			name := store.ActiveName()
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				return errors.Validation("app", "show", "no profile selected")
			}
			p, ok := store.Get(name)
			if !ok {
				return errors.NotFound("app", "show", name)
			}
			data, err := json.MarshalIndent(map[string]files.Profile{name: p}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newProfileNewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty profile and select it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := opts.cliController(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := ctrl.NewProfile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created profile %q\n", strings.TrimSpace(args[0]))
			return nil
		},
	}
}

func newProfileCopyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "copy <source> <name>",
		Aliases: []string{"cp"},
		Short:   "Copy a profile under a new name and select the copy",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := opts.cliController(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := ctrl.Select(args[0]); err != nil {
				return err
			}
			if err := ctrl.CopyProfile(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %q to %q\n", args[0], strings.TrimSpace(args[1]))
			return nil
		},
	}
}

func newProfileDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := opts.cliController(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := ctrl.Select(args[0]); err != nil {
				return err
			}
			if err := ctrl.DeleteProfile(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %q\n", args[0])
			return nil
		},
	}
}

func newProfileUseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Select the profile opened and run by default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := opts.cliController(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			store := ctrl.Store()
			if err := store.Select(args[0]); err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected profile %q\n", args[0])
			return nil
		},
	}
}

type profileSetOptions struct {
	form    controller.Form
	buttons []string
}

func newProfileSetCmd(opts *rootOptions) *cobra.Command {
	so := &profileSetOptions{}
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Replace a profile with the given fields, creating it if needed",
		Long: `Replace every field of a profile. Fields not given are cleared, so the
result is exactly what the flags describe. The start timestamp is set to now.`,
		Example: `  richpresence profile set work --state "Reviewing PRs" --details "backend" \
    --large-image logo --button "Repo=https://example.com/repo"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := so.form
			buttons, err := parseButtons(so.buttons)
			if err != nil {
				return err
			}
			form.Buttons = buttons

			ctrl, view, err := opts.cliController(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			if _, ok := ctrl.Store().Get(name); ok {
				err = ctrl.Select(name)
			} else {
				err = ctrl.NewProfile(name)
			}
			if err != nil {
				return err
			}
			view.form = form
			return ctrl.Save()
		},
	}
	f := cmd.Flags()
	f.StringVar(&so.form.ClientID, "client-id", "", "Discord application id (default $"+EnvClientID+" at start)")
	f.StringVar(&so.form.State, "state", "", "first line of text")
	f.StringVar(&so.form.Details, "details", "", "second line of text")
	f.StringVar(&so.form.LargeImage, "large-image", "", "large asset key")
	f.StringVar(&so.form.LargeText, "large-text", "", "large asset hover text")
	f.StringVar(&so.form.SmallImage, "small-image", "", "small asset key")
	f.StringVar(&so.form.SmallText, "small-text", "", "small asset hover text")
	f.IntVar(&so.form.Interval, "interval", files.DefaultUpdateInterval, "seconds between updates (5-3600)")
	f.StringArrayVar(&so.buttons, "button", nil, "button as LABEL=URL; repeat for a second button")
	return cmd
}

// parseButtons reads LABEL=URL pairs. The first MaxButtons complete buttons
// are kept; buttons missing a label or url and any extras are dropped.
func parseButtons(specs []string) ([files.MaxButtons]files.Button, error) {
	var out [files.MaxButtons]files.Button
	n := 0
	for _, raw := range specs {
		label, url, ok := strings.Cut(raw, "=")
		if !ok {
			return out, errors.Validation("app", "set", fmt.Sprintf("button %q must be LABEL=URL", raw))
		}
		b := files.Button{Label: strings.TrimSpace(label), URL: strings.TrimSpace(url)}
		if !b.Complete() || n == files.MaxButtons {
			continue
		}
		out[n] = b
		n++
	}
	return out, nil
}
