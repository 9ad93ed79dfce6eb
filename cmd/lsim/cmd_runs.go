package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) newRunsCmd() *cobra.Command {
	var (
		jsonOut bool
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			runs, err := st.ListRuns(limit)
			if err != nil {
				return fmt.Errorf("runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				printJSON(out, map[string]interface{}{"runs": runs, "count": len(runs)})
				return nil
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPROCS\tEVENTS\tSTARTED\tSTATUS")
			for _, r := range runs {
				status := "incomplete"
				if r.Finished() {
					status = r.FinishedAt.Sub(r.StartedAt).Round(time.Microsecond).String()
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
					r.ID, r.NumProcs, r.Events, r.StartedAt.Local().Format(time.DateTime), status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "JSON output")
	cmd.Flags().IntVar(&limit, "limit", 50, "max runs to list")
	return cmd
}
