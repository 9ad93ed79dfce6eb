package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/lamportsim/pkg/model"
	"github.com/daviddao/lamportsim/pkg/sim"
)

func (a *app) newLogCmd() *cobra.Command {
	var (
		jsonOut bool
		process int
	)
	cmd := &cobra.Command{
		Use:   "log <run-id>",
		Short: "Print the observations of a recorded run",
		Long: `Print a recorded run in Lamport total order (timestamp, then process id).
With --process, print only that process's observations in program order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			run, err := st.GetRun(args[0])
			if err != nil {
				return err
			}

			var obs []model.Observation
			if cmd.Flags().Changed("process") {
				if process < 0 || process >= run.NumProcs {
					return fmt.Errorf("process %d out of range (run has %d)", process, run.NumProcs)
				}
				obs, err = st.ListObservationsForProcess(run.ID, process)
			} else {
				obs, err = st.ListObservations(run.ID)
			}
			if err != nil {
				return fmt.Errorf("log: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				printJSON(out, map[string]interface{}{"run": run, "observations": obs, "count": len(obs)})
				return nil
			}
			if !run.Finished() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: run %s did not finish\n", run.ID)
			}
			if len(obs) == 0 {
				fmt.Fprintln(out, "no observations")
				return nil
			}
			for _, o := range obs {
				fmt.Fprintln(out, sim.FormatObservation(o))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "JSON output")
	cmd.Flags().IntVar(&process, "process", 0, "only this process, in program order")
	return cmd
}
