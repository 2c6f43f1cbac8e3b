package app

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

type historyOptions struct {
	limit int
	stats bool
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	ho := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent broadcasts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.setupLogging(modeCommand); err != nil {
				return err
			}
			history, err := openHistory()
			if err != nil {
				return err
			}
			defer history.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()

			if ho.stats {
				stats, err := history.ProfileStats()
				if err != nil {
					return err
				}
				if len(stats) == 0 {
					fmt.Fprintln(w, "No runs recorded.")
					return nil
				}
				fmt.Fprintln(w, "PROFILE\tRUNS\tFAILED\tPUSHES\tLAST RUN")
				for _, st := range stats {
					fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
						st.Profile, st.Runs, st.Failures, st.Pushes, formatTime(st.LastRun))
				}
				return nil
			}

			runs, err := history.RecentRuns(ho.limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(w, "No runs recorded.")
				return nil
			}
			fmt.Fprintln(w, "STARTED\tPROFILE\tDURATION\tPUSHES\tRESULT")
			for _, r := range runs {
				result := "stopped"
				if r.Failed() {
					result = fmt.Sprintf("%s failed: %s", r.Stage, r.Error)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					formatTime(r.StartedAt), r.Profile, r.Duration().Round(time.Second), r.Pushes, result)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&ho.limit, "limit", "n", 20, "number of runs to show")
	cmd.Flags().BoolVar(&ho.stats, "stats", false, "show per-profile totals instead")
	return cmd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
